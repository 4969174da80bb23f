package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/vvka-141/asdbload/internal/tui"
	"github.com/vvka-141/asdbload/pkg/asdb"
)

const historyTimeLayout = "2006-01-02 15:04:05"

// printBatchSummary writes the human summary of a finished or aborted batch.
func printBatchSummary(w io.Writer, r asdb.BatchResult, styled bool) {
	title := "Batch " + r.RunID
	fmt.Fprintln(w)
	fmt.Fprintln(w, tui.Render(tui.TitleStyle, title, styled))

	row := func(label string, value string) {
		fmt.Fprintf(w, "  %s %s\n", tui.Render(tui.LabelStyle, label, styled), value)
	}
	if r.Provisioned != asdb.ProvisionUnknown {
		row("database", r.Provisioned.String())
	}
	row("discovered", strconv.Itoa(r.Discovered))
	row("imported", tui.Render(tui.SuccessStyle, strconv.Itoa(len(r.Imported)), styled && len(r.Imported) > 0))
	row("failed", tui.Render(tui.ErrorStyle, strconv.Itoa(len(r.Failed)), styled && len(r.Failed) > 0))
	row("skipped", strconv.Itoa(r.Skipped))
	row("excluded", strconv.Itoa(r.Excluded))
	if d := r.Duration(); d > 0 {
		row("duration", d.Round(time.Millisecond).String())
	}

	if r.HasFailures() {
		fmt.Fprintln(w)
		fmt.Fprintln(w, tui.Render(tui.ErrorStyle, tui.SymbolCross+" Failed items are listed in "+r.FailedLog, styled))
	}
}

// printPlan writes one "<outcome>\t<path>" line per item to out and a summary to summary.
func printPlan(out, summary io.Writer, plan asdb.Plan, styled bool) {
	for _, it := range plan.Items {
		fmt.Fprintf(out, "%s\t%s\n", it.Outcome, it.Item.Path)
	}
	fmt.Fprintf(summary, "%s %d to import, %d already imported, %d excluded\n",
		tui.Render(tui.TitleStyle, "Plan:", styled),
		plan.Count(asdb.OutcomePending),
		plan.Count(asdb.OutcomeSkipped),
		plan.Count(asdb.OutcomeExcluded))
}

func runRows(runs []asdb.RunRecord) [][]string {
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			r.ID,
			r.StartedAt.Local().Format(historyTimeLayout),
			string(r.Status),
			strconv.Itoa(r.Discovered),
			strconv.Itoa(r.Imported),
			strconv.Itoa(r.Failed),
			strconv.Itoa(r.Skipped),
			strconv.Itoa(r.Excluded),
			r.InputDir,
		})
	}
	return rows
}

func itemRows(items []asdb.ItemRecord) [][]string {
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		rows = append(rows, []string{
			string(it.Outcome),
			strconv.Itoa(it.ExitCode),
			it.Duration.Round(time.Millisecond).String(),
			shortChecksum(it.Checksum),
			it.Path,
		})
	}
	return rows
}

var (
	runHeaders  = []string{"RUN", "STARTED", "STATUS", "FOUND", "IMPORTED", "FAILED", "SKIPPED", "EXCLUDED", "INPUT"}
	itemHeaders = []string{"OUTCOME", "EXIT", "DURATION", "SHA256", "PATH"}
)

// writeRows renders rows as a bordered table when styled, and as plain
// tab-separated lines without a header otherwise.
func writeRows(w io.Writer, headers []string, rows [][]string, styled bool) {
	if !styled {
		for _, r := range rows {
			fmt.Fprintln(w, strings.Join(r, "\t"))
		}
		return
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(tui.MutedStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tui.HeaderStyle
			}
			return tui.CellStyle
		})
	fmt.Fprintln(w, t.String())
}

func shortChecksum(sum string) string {
	if len(sum) > 12 {
		return sum[:12]
	}
	return sum
}
