package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rileyhilliard/storelens/internal/config"
	"github.com/rileyhilliard/storelens/internal/errors"
	"github.com/rileyhilliard/storelens/internal/ui"
	"github.com/rileyhilliard/storelens/internal/util"
	"github.com/spf13/cobra"
)

// Global flags
var (
	cfgFile string
	verbose bool
	noColor bool
)

var rootCmd = &cobra.Command{
	Use:   "storelens",
	Short: "storelens - store analytics dashboard and shopper chat",
	Long: `storelens pulls a store's analytics from the backend and renders them as a
live terminal dashboard. Every widget loads on its own: a slow or broken
source never holds up the rest.

It also ships a shopper chat client, a catalog search, and a small server
that streams the same dashboard views to browser renderers.

Get started:
  storelens init        Create .storelens.yaml
  storelens doctor      Check the backend is reachable
  storelens dashboard   Open the dashboard`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(); err != nil {
			return err
		}
		if noColor || os.Getenv("NO_COLOR") != "" {
			ui.DisableColors()
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .storelens.yaml in current or parent dirs)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&machineMode, "json", false, "machine-readable JSON output")
}

// Config returns the --config flag value.
func Config() string {
	return cfgFile
}

// Verbose reports whether --verbose was given.
func Verbose() bool {
	return verbose
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	if machineMode {
		_ = WriteJSONFromError(os.Stdout, err)
		return 1
	}

	if isUnknownCommandError(err) {
		if name := extractUnknownCommand(err); name != "" {
			fmt.Fprint(os.Stderr, unknownCommandMessage(name))
			return 1
		}
	}

	var e *errors.Error
	if errors.As(err, &e) {
		fmt.Fprintln(os.Stderr, e.Error())
	} else {
		fmt.Fprintf(os.Stderr, "%s %v\n", ui.ErrorStyle().Render(ui.SymbolFail), err)
	}
	return 1
}

// unknownCommandMessage names the bad command and suggests the closest real one.
func unknownCommandMessage(name string) string {
	var names []string
	for _, c := range rootCmd.Commands() {
		if c.IsAvailableCommand() {
			names = append(names, c.Name())
			names = append(names, c.Aliases...)
		}
	}

	msg := fmt.Sprintf("%s Unknown command %q\n\n", ui.ErrorStyle().Render(ui.SymbolFail), name)
	if similar := util.SuggestSimilar(name, names, 1); len(similar) > 0 {
		msg += fmt.Sprintf("  Did you mean 'storelens %s'?\n", similar[0])
	}
	return msg + "  Run 'storelens --help' to see what's available.\n"
}

// isUnknownCommandError reports whether err is cobra's unknown command or flag error.
func isUnknownCommandError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") || strings.HasPrefix(msg, "unknown flag")
}

// extractUnknownCommand pulls the command name out of
// `unknown command "foo" for "storelens"`.
func extractUnknownCommand(err error) string {
	msg := err.Error()
	start := strings.Index(msg, `"`)
	if start == -1 {
		return ""
	}
	end := strings.Index(msg[start+1:], `"`)
	if end == -1 {
		return ""
	}
	return msg[start+1 : start+1+end]
}
