package cli

import (
	"os"

	"github.com/rileyhilliard/storelens/internal/errors"
	"github.com/spf13/cobra"
)

// Command-specific flags
var (
	dashboardFlags dashboardOptions
	snapshotFlags  snapshotOptions
	chatFlags      chatOptions
	serveAddrFlag  string
	doctorStore    string
	initFlags      InitOptions
)

// dashboardCmd starts the TUI dashboard
var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"dash"},
	Short:   "Live analytics dashboard for a store",
	Long: `Open an interactive dashboard of a store's analytics.

Every widget loads independently: each one shows a spinner until its source
answers, then renders its chart, an "unavailable" note, or "no data". If
every source fails, a single banner replaces the widgets.

Keyboard shortcuts:
  q / Ctrl+C       Quit
  r                Refresh now
  tab / ]          Next store
  shift+tab / [    Previous store
  up/k, down/j     Select widget
  Enter            Widget details
  Esc              Back
  ?                Help

Examples:
  storelens dashboard
  storelens dashboard --store s2
  storelens dashboard --stores s1,s2,s3 --interval 1m
  storelens dashboard --log-file /tmp/storelens.log`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return dashboardCommand(cmd.Context(), dashboardFlags)
	},
}

// snapshotCmd prints one fully settled refresh cycle
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Print the dashboard once and exit",
	Long: `Fetch every metric source once, wait for all of them to settle, and print
the result. Exits non-zero when every widget is unavailable.

Examples:
  storelens snapshot
  storelens snapshot --store s2
  storelens snapshot --json | jq '.data.view.widgets[].state'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return snapshotCommand(cmd.Context(), snapshotFlags)
	},
}

// chatCmd opens the shopper chat
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the shopping assistant",
	Long: `Ask the shopping assistant for products. Recommendations are shown as
product cards with prices.

When stdin is not a terminal, each input line is sent as one message.

Examples:
  storelens chat
  storelens chat --user shopper42
  storelens chat --once "running shoes under 2000"
  echo "gift ideas" | storelens chat`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return chatCommand(cmd.Context(), chatFlags)
	},
}

// searchCmd queries the product catalog
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the product catalog",
	Long: `Search the product catalog by keyword.

Examples:
  storelens search shoes
  storelens search "yoga mat" --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return searchCommand(cmd.Context(), args)
	},
}

// serveCmd streams dashboard views to browser renderers
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve dashboard views over HTTP and WebSocket",
	Long: `Serve the dashboard's view models to browser renderers.

Endpoints:
  GET /api/dashboard?store=s1   One settled cycle as JSON
  GET /ws?store=s1              Live widget updates; send {"type":"refresh"}
                                or {"type":"store","store":"s2"}
  GET /metrics                  Prometheus metrics
  GET /healthz                  Liveness

Examples:
  storelens serve
  storelens serve --addr :8090`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCommand(cmd.Context(), serveAddrFlag)
	},
}

// doctorCmd diagnoses config and endpoint issues
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose config and endpoint issues",
	Long: `Run diagnostic checks to find common problems.

Checks:
  - Config file presence and validity
  - Each metric source answers and its payload parses
  - Catalog search answers

Examples:
  storelens doctor
  storelens doctor --store s2 --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return doctorCommand(cmd.Context(), doctorStore)
	},
}

// initCmd creates a new .storelens.yaml configuration
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create .storelens.yaml configuration",
	Long: `Create a .storelens.yaml file in the current directory.

Prompts for the analytics API URL and default store, then tests the
connection. Use --non-interactive (or set CI) to write from flags alone.

Examples:
  storelens init
  storelens init --base-url http://analytics:8000/api --store s2 --non-interactive
  storelens init --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return initCommand(initFlags)
	},
}

// completionCmd generates shell completion scripts
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion scripts for storelens.

Examples:
  # Bash
  storelens completion bash > /etc/bash_completion.d/storelens

  # Zsh
  storelens completion zsh > "${fpath[1]}/_storelens"

  # Fish
  storelens completion fish > ~/.config/fish/completions/storelens.fish`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(os.Stdout)
		case "zsh":
			return rootCmd.GenZshCompletion(os.Stdout)
		case "fish":
			return rootCmd.GenFishCompletion(os.Stdout, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(os.Stdout)
		default:
			return errors.New(errors.ErrExec,
				"Unknown shell: "+args[0],
				"Supported shells: bash, zsh, fish, powershell")
		}
	},
}

func init() {
	dashboardCmd.Flags().StringVar(&dashboardFlags.Store, "store", "", "store to show first (default: store.default)")
	dashboardCmd.Flags().StringVar(&dashboardFlags.Stores, "stores", "", "stores to switch between (comma-separated)")
	dashboardCmd.Flags().StringVar(&dashboardFlags.Interval, "interval", "", "auto refresh interval, 0 to disable (default: dashboard.interval)")
	dashboardCmd.Flags().StringVar(&dashboardFlags.LogFile, "log-file", "", "write JSON logs to this file")

	snapshotCmd.Flags().StringVar(&snapshotFlags.Store, "store", "", "store to fetch (default: store.default)")

	chatCmd.Flags().StringVar(&chatFlags.User, "user", "", "shopper id sent with each message (default: chat.user_id)")
	chatCmd.Flags().StringVar(&chatFlags.Once, "once", "", "send one message, print the reply and exit")

	serveCmd.Flags().StringVar(&serveAddrFlag, "addr", "", "listen address (default: serve.addr)")

	doctorCmd.Flags().StringVar(&doctorStore, "store", "", "store to probe (default: store.default)")

	initCmd.Flags().StringVar(&initFlags.BaseURL, "base-url", "", "analytics API base URL")
	initCmd.Flags().StringVar(&initFlags.Store, "store", "", "default store id")
	initCmd.Flags().BoolVarP(&initFlags.Overwrite, "force", "f", false, "overwrite existing config")
	initCmd.Flags().BoolVar(&initFlags.NonInteractive, "non-interactive", false, "skip prompts")

	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(completionCmd)
}
