package output

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/prolifel/ceker/internal/core"
)

// TableFormatter renders outcomes as an ASCII table.
type TableFormatter struct{}

// FormatOutcome renders one check outcome as a table plus the evidence
// list.
func (f *TableFormatter) FormatOutcome(outcome *core.CheckOutcome, url string) (string, error) {
	if outcome == nil {
		return "", nil
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)

	switch outcome.Status {
	case core.OutcomeRejected:
		t.AppendHeader(table.Row{"URL", "Status", "Reason"})
		t.AppendRow(table.Row{url, "REJECTED", outcome.Reason})
		return t.Render(), nil
	case core.OutcomeNotInDatabase:
		t.AppendHeader(table.Row{"URL", "Status", "Hostname"})
		t.AppendRow(table.Row{url, "NOT IN DATABASE", outcome.Hostname})
		rendered := t.Render()
		rendered += "\nDomain not found in our database. Re-run with --bypass to perform a full scan."
		return rendered, nil
	}

	t.AppendHeader(table.Row{"URL", "Risk Level", "Verdict"})
	t.AppendRow(table.Row{url, string(outcome.Risk), outcome.Message})

	rendered := t.Render()
	if len(outcome.Details) > 0 {
		rendered += "\n\nDetails:\n  " + strings.Join(outcome.Details, "\n  ")
	}
	if outcome.PreviewPath != "" {
		rendered += fmt.Sprintf("\n\nScreenshot: %s", outcome.PreviewPath)
	}
	if outcome.Signals.Registrar != "" {
		rendered += fmt.Sprintf("\nRegistrar: %s", outcome.Signals.Registrar)
	}

	return rendered, nil
}
