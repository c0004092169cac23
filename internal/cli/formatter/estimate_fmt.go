package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/mediantree/internal/service"
)

// FormatEstimate renders the completion time at each confidence level for
// a median. certainty, when non-nil, is the probability of finishing by at.
func FormatEstimate(report *service.EstimateReport, at float64, certainty *float64) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%s  %s\n\n", StyleDim.Render("MEDIAN"), Bold(FormatHours(report.Median))))

	headers := []string{"CONFIDENCE", "DONE WITHIN"}
	rows := make([][]string, 0, len(report.Levels))
	for _, l := range report.Levels {
		rows = append(rows, []string{
			FormatPercent(l.Confidence),
			ConfidenceStyle(l.Confidence).Render(FormatHours(l.Hours)),
		})
	}
	b.WriteString(RenderTable(headers, rows, 1))

	if certainty != nil {
		b.WriteString(fmt.Sprintf("\n%s %s %s\n",
			Dim("Chance of finishing within"),
			Bold(FormatHours(at)),
			StyleBlue.Render(fmt.Sprintf("%.1f%%", *certainty*100))))
	}

	return RenderBox("Estimate", strings.TrimRight(b.String(), "\n"))
}
