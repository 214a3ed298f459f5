package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rileyhilliard/storelens/internal/config"
	"github.com/rileyhilliard/storelens/internal/doctor"
	"github.com/rileyhilliard/storelens/internal/source"
	"github.com/rileyhilliard/storelens/internal/ui"
	"github.com/rileyhilliard/storelens/internal/viewmodel"
)

// DoctorOutput represents the JSON output for doctor command.
type DoctorOutput struct {
	Categories []CategoryOutput `json:"categories"`
	Summary    SummaryOutput    `json:"summary"`
}

// CategoryOutput represents a category of check results.
type CategoryOutput struct {
	Name    string               `json:"name"`
	Results []doctor.CheckResult `json:"results"`
}

// SummaryOutput summarizes the check results.
type SummaryOutput struct {
	Pass     int  `json:"pass"`
	Warn     int  `json:"warn"`
	Fail     int  `json:"fail"`
	AllClear bool `json:"all_clear"`
}

// doctorCommand implements the doctor command logic.
func doctorCommand(ctx context.Context, store string) error {
	checks := collectChecks(Config(), store)
	results := doctor.RunAllParallel(ctx, checks)

	if machineMode {
		return outputDoctorJSON(os.Stdout, results)
	}
	return outputDoctorText(os.Stdout, results)
}

// collectChecks gathers config checks, plus endpoint checks when the config
// loads cleanly enough to know where the endpoints are.
func collectChecks(cfgPath, store string) []doctor.Check {
	checks := doctor.NewConfigChecks(cfgPath)

	cfg, _, err := config.LoadOrDefault(cfgPath)
	if err != nil || config.Validate(cfg, source.TagStrings()...) != nil {
		return checks
	}
	reg, err := source.FromConfig(cfg)
	if err != nil {
		return checks
	}

	if store == "" {
		store = cfg.Store.Default
	}
	log := defaultLogger()
	a := &app{cfg: cfg, registry: reg, builder: viewmodel.NewBuilder(cfg.Output.Currency), log: log}

	checks = append(checks, doctor.NewSourceChecks(reg, store, a.aggregator(), a.builder)...)
	checks = append(checks, &doctor.CatalogCheck{Searcher: newChatClient(cfg, "", log)})
	return checks
}

// groupResults groups results by category in first-seen order.
func groupResults(results []doctor.CheckResult) []CategoryOutput {
	var out []CategoryOutput
	index := make(map[string]int)
	for _, r := range results {
		i, ok := index[r.Category]
		if !ok {
			i = len(out)
			index[r.Category] = i
			out = append(out, CategoryOutput{Name: r.Category})
		}
		out[i].Results = append(out[i].Results, r)
	}
	return out
}

// outputDoctorJSON outputs results in JSON format.
func outputDoctorJSON(w io.Writer, results []doctor.CheckResult) error {
	counts := doctor.CountByStatus(results)
	output := DoctorOutput{
		Categories: groupResults(results),
		Summary: SummaryOutput{
			Pass:     counts[doctor.StatusPass],
			Warn:     counts[doctor.StatusWarn],
			Fail:     counts[doctor.StatusFail],
			AllClear: !doctor.HasIssues(results),
		},
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

// outputDoctorText outputs results in human-readable format.
func outputDoctorText(w io.Writer, results []doctor.CheckResult) error {
	rows := make([]ui.DoctorCheckRow, 0, len(results))
	for _, r := range results {
		rows = append(rows, ui.DoctorCheckRow{
			Status:     r.Status.String(),
			Category:   r.Category,
			Message:    r.Message,
			Suggestion: r.Suggestion,
		})
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, ui.InfoStyle().Bold(true).Render("storelens diagnostic report"))
	fmt.Fprintln(w)
	fmt.Fprint(w, ui.RenderDoctorTable(rows))
	fmt.Fprintln(w, strings.Repeat("━", 60))

	symbol := ui.SuccessStyle().Render(ui.SymbolSuccess)
	if doctor.HasFailures(results) {
		symbol = ui.ErrorStyle().Render(ui.SymbolFail)
	} else if doctor.HasIssues(results) {
		symbol = ui.WarningStyle().Render(ui.SymbolWarning)
	}
	fmt.Fprintf(w, "%s %s\n\n", symbol, doctor.Summary(results))
	return nil
}
