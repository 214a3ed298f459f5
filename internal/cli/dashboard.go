package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/rileyhilliard/storelens/internal/dashboard"
	"github.com/rileyhilliard/storelens/internal/errors"
	"github.com/rileyhilliard/storelens/internal/logger"
	"github.com/rileyhilliard/storelens/internal/ui"
	"golang.org/x/term"
)

// dashboardOptions holds flags for the dashboard command.
type dashboardOptions struct {
	Store    string
	Stores   string
	Interval string
	LogFile  string
}

// dashboardCommand starts the TUI dashboard. Without a terminal it prints a
// single snapshot instead.
func dashboardCommand(ctx context.Context, opts dashboardOptions) error {
	if !isTerminal(os.Stdout) {
		ui.PrintWarning("stdout is not a terminal, printing a snapshot instead")
		return snapshotCommand(ctx, snapshotOptions{Store: opts.Store})
	}

	// The TUI owns the terminal, so logs go to a file or nowhere.
	log := logger.Noop()
	if opts.LogFile != "" {
		fl, closeLog, err := logger.NewFileLogger(opts.LogFile, verbose)
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				fmt.Sprintf("Couldn't open log file %s", opts.LogFile),
				"Check the directory exists and is writable")
		}
		defer closeLog()
		log = fl
	}

	a, err := loadApp(log)
	if err != nil {
		return err
	}

	interval, err := parseInterval(opts.Interval, a.cfg.RefreshInterval())
	if err != nil {
		return err
	}

	stores := dashboardStores(a.cfg.Stores(), opts.Store, opts.Stores)
	log.Info("dashboard starting: stores=%v interval=%s sources=%d", stores, interval, a.registry.Len())

	ctrl := a.controller(a.aggregator())
	return dashboard.Run(ctx, ctrl, stores, interval)
}

// dashboardStores resolves the store rotation: --stores replaces the
// configured list, --store picks the one shown first.
func dashboardStores(configured []string, store, storesFlag string) []string {
	list := storesFlag
	if list == "" {
		for i, s := range configured {
			if i > 0 {
				list += ","
			}
			list += s
		}
	}
	return parseStores(list, store)
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// terminalWidth returns the width of stdout, or def when it is not a terminal.
func terminalWidth(def int) int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return def
}
