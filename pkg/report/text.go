/*
Copyright 2026 Nscale.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package report renders the outcome of a run for people and for machines.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/unikorn-cloud/issuetracker-apitest/pkg/runner"
)

// PrintSummary prints the scenario table followed by the final results.
func PrintSummary(w io.Writer, summary *runner.Summary) {
	PrintResultsTable(w, summary)
	PrintFinalResults(w, summary)
}

// PrintResultsTable prints one row per scenario.
func PrintResultsTable(w io.Writer, summary *runner.Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(fmt.Sprintf("Issue Tracker API Results (%s)", formatDuration(summary.Duration)))

	t.AppendHeader(table.Row{
		"Section", "Scenario", "Checks", "Duration", "Status",
	})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Section", AutoMerge: true},
		{Name: "Scenario", WidthMax: 50},
		{Name: "Checks", Align: text.AlignRight},
		{Name: "Duration", Align: text.AlignRight},
	})

	for _, scenario := range summary.Scenarios {
		t.AppendRow(table.Row{
			scenario.Section,
			scenario.Name,
			scenario.Checks,
			formatDuration(scenario.Duration),
			getResultString(scenario),
		})
	}

	t.AppendFooter(table.Row{
		"", "Total", summary.TestsRun, formatDuration(summary.Duration),
		fmt.Sprintf("%d/%d passed", summary.TestsPassed, summary.TestsRun),
	})

	t.Render()
}

// PrintFinalResults prints the pass counts, the success rate and the verdict.
func PrintFinalResults(w io.Writer, summary *runner.Summary) {
	fmt.Fprintln(w, "\n"+strings.Repeat("=", 50))
	fmt.Fprintln(w, "📊 FINAL RESULTS")
	fmt.Fprintf(w, "Tests passed: %d/%d\n", summary.TestsPassed, summary.TestsRun)
	fmt.Fprintf(w, "Success rate: %.1f%%\n", summary.SuccessRate)

	if summary.Succeeded() {
		fmt.Fprintln(w, "🎉 Backend API tests mostly successful!")
	} else {
		fmt.Fprintln(w, "⚠️  Backend API has significant issues")
	}
}

func getResultString(scenario runner.ScenarioResult) string {
	switch {
	case scenario.Passed:
		return "✓ pass"
	case scenario.PreconditionFailed:
		return "✗ fail (no issue)"
	default:
		return "✗ fail"
	}
}

// formatDuration formats a duration to seconds with 1 decimal place.
func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}
