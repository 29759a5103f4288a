package terminal

import (
	"fmt"
	"io"
	"time"

	"ui_flow_runner/domain/entities"
)

type runSummary struct {
	Passed  int
	Failed  int
	Errored int
}

func (s runSummary) Total() int {
	return s.Passed + s.Failed + s.Errored
}

// printResults - writes one line per scenario, the reason under every
// scenario that did not pass, and a closing tally
func printResults(w io.Writer, results []entities.RunResult) runSummary {
	var summary runSummary

	for _, result := range results {
		elapsed := result.Elapsed.Round(time.Millisecond)

		switch result.Outcome {
		case entities.OutcomePassed:
			summary.Passed++
			fmt.Fprintf(w, "PASS  %s (%s)\n", result.Scenario, elapsed)
		case entities.OutcomeFailed:
			summary.Failed++
			fmt.Fprintf(w, "FAIL  %s (%s)\n", result.Scenario, elapsed)
			fmt.Fprintf(w, "      %s\n", result.Summary())
		default:
			summary.Errored++
			fmt.Fprintf(w, "ERROR %s (%s)\n", result.Scenario, elapsed)
			fmt.Fprintf(w, "      %s\n", result.Summary())
		}
	}

	fmt.Fprintf(w, "\n%d passed, %d failed, %d errored\n", summary.Passed, summary.Failed, summary.Errored)
	return summary
}
