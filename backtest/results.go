package backtest

import (
	"fmt"
	"io"
)

// PrintSummary writes the human-readable run report.
func PrintSummary(w io.Writer, p *Portfolio) {
	st := p.Stats()

	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, " Backtest Result")
	fmt.Fprintln(w, "==================================================")

	fmt.Fprintf(w, "Initial Capital: %.2f\n", st.InitialCapital)
	fmt.Fprintf(w, "Final Capital:   %.2f\n", st.FinalCapital)
	fmt.Fprintf(w, "Net P/L:         %.2f\n", st.FinalCapital-st.InitialCapital)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Monthly P/L")
	fmt.Fprintln(w, "--------------------------------------------------")
	for _, m := range p.Months {
		fmt.Fprintf(w, "%s  %12.2f  (%.2f%%)\n", m, p.MonthlyPL[m], p.MonthlyReturn[m]*100)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Yearly P/L")
	fmt.Fprintln(w, "--------------------------------------------------")
	for _, y := range p.Years {
		fmt.Fprintf(w, "%s     %12.2f  (%.2f%%)\n", y, p.YearlyPL[y], p.YearlyReturn[y]*100)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Position Statistics")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Sessions:        %d\n", st.Sessions)
	fmt.Fprintf(w, "Closed:          %d\n", st.Closed)
	fmt.Fprintf(w, "Discarded:       %d\n", st.Discarded)
	fmt.Fprintf(w, "Unfilled:        %d\n", st.Unfilled)
	fmt.Fprintf(w, "Wins:            %d\n", st.Wins)
	fmt.Fprintf(w, "Losses:          %d\n", st.Losses)
	fmt.Fprintf(w, "Win Ratio:       %.2f%%\n", st.WinRatio*100)
	fmt.Fprintf(w, "Avg Profit Ratio: %.2f\n", st.AvgProfitRatio)
	fmt.Fprintf(w, "Max Losing Streak: %d\n", st.MaxLosingStreak)
	fmt.Fprintf(w, "Avg Risk/Trade:  %.2f%%\n", st.AvgRiskFraction*100)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Avg Monthly Return:    %.2f%%\n", st.AvgMonthlyReturn*100)
	fmt.Fprintf(w, "Avg Sessions/Month:    %.1f\n", st.AvgSessionsPerMonth)
	fmt.Fprintln(w)
}
