// Package cli implements the storelens command-line interface.
//
// Each Cobra command parses its flags and hands off to a *Command function;
// the work itself lives in the internal packages.
//
// # Command Structure
//
//	storelens dashboard  - Live TUI dashboard with store switching
//	storelens snapshot   - One settled refresh cycle, text or JSON
//	storelens chat       - Shopper chat (TUI, line mode, or --once)
//	storelens search     - Catalog keyword search
//	storelens serve      - View models over HTTP/WebSocket plus /metrics
//	storelens doctor     - Config and endpoint diagnostics
//	storelens init       - Create .storelens.yaml
//
// # Setup
//
// Dashboard commands share loadApp, which loads and validates config and
// builds the source registry and chart builder. Fetchers and controllers are
// built from it per command so serve can attach its metrics observer.
//
// # Flag Handling
//
// Global flags (--config, --verbose, --no-color, --json) live on the root
// command. With --json every command writes the JSONEnvelope, including
// failures, whose internal error codes are mapped to stable machine codes.
package cli
