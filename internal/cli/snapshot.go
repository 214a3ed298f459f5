package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rileyhilliard/storelens/internal/dashboard"
	"github.com/rileyhilliard/storelens/internal/errors"
	"github.com/rileyhilliard/storelens/internal/presenter"
	"github.com/rileyhilliard/storelens/internal/ui"
)

const defaultSnapshotWidth = 100

// snapshotOptions holds flags for the snapshot command.
type snapshotOptions struct {
	Store string
}

// SnapshotOutput is the --json payload of a snapshot.
type SnapshotOutput struct {
	Store string         `json:"store"`
	View  presenter.View `json:"view"`
}

// snapshotCommand runs one refresh cycle to completion and prints it.
func snapshotCommand(ctx context.Context, opts snapshotOptions) error {
	a, err := loadApp(nil)
	if err != nil {
		return err
	}

	store := opts.Store
	if store == "" {
		store = a.cfg.Store.Default
	}

	var progress func(presenter.View)
	var spinner *ui.Spinner
	if !machineMode && isTerminal(os.Stderr) {
		spinner = ui.NewSpinner(os.Stderr, "Fetching store "+store)
		spinner.Start()
		progress = func(v presenter.View) { spinner.Progress(v.Settled, v.Total) }
	}

	view := fetchSnapshot(ctx, a, store, progress)
	if spinner != nil {
		finishSpinner(spinner, view)
	}
	return writeSnapshot(os.Stdout, store, terminalWidth(defaultSnapshotWidth), view)
}

func finishSpinner(s *ui.Spinner, v presenter.View) {
	counts := v.Counts()
	switch {
	case v.Banner != nil && v.Banner.Kind == presenter.BannerTotalFailure:
		s.Finish(ui.SpinnerFailed, "every source unavailable")
	case counts[presenter.StateUnavailable] > 0:
		s.Finish(ui.SpinnerPartial, fmt.Sprintf("%d unavailable", counts[presenter.StateUnavailable]))
	default:
		s.Finish(ui.SpinnerDone, "")
	}
}

// runSnapshot fetches every source for store once and writes the settled view.
func runSnapshot(ctx context.Context, w io.Writer, a *app, store string, width int) error {
	return writeSnapshot(w, store, width, fetchSnapshot(ctx, a, store, nil))
}

// fetchSnapshot runs one cycle to completion. progress, if set, sees every
// intermediate view.
func fetchSnapshot(ctx context.Context, a *app, store string, progress func(presenter.View)) presenter.View {
	view := a.controller(a.aggregator()).Run(ctx, store, progress)

	counts := view.Counts()
	a.log.Debug("snapshot store=%s ready=%d empty=%d unavailable=%d",
		store, counts[presenter.StateReady], counts[presenter.StateEmpty], counts[presenter.StateUnavailable])
	return view
}

// writeSnapshot prints view. A total failure is returned as an error so the
// exit code reflects it.
func writeSnapshot(w io.Writer, store string, width int, view presenter.View) error {
	var failure *errors.Error
	if view.Banner != nil && view.Banner.Kind == presenter.BannerTotalFailure {
		failure = errors.New(errors.ErrTotalFailure,
			fmt.Sprintf("Every widget for store %s is unavailable", store),
			"Check that the analytics API is running, then try 'storelens doctor'")
	}

	if machineMode {
		if failure != nil {
			return &detailedError{err: failure, details: SnapshotOutput{Store: store, View: view}}
		}
		return WriteJSONSuccess(w, SnapshotOutput{Store: store, View: view})
	}

	fmt.Fprint(w, dashboard.RenderSnapshot(view, store, width))
	if failure != nil {
		return failure
	}
	return nil
}
