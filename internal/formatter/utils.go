package formatter

import (
	"fmt"

	"github.com/yildizm/go-termfmt"
)

// formatNumber formats numbers with commas for readability
func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return addCommas(fmt.Sprintf("%d", n))
}

// addCommas adds commas to number strings
func addCommas(s string) string {
	if len(s) <= 3 {
		return s
	}
	return addCommas(s[:len(s)-3]) + "," + s[len(s)-3:]
}

// percent is part as a share of total, zero when total is zero
func percent(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// severityEmoji returns the symbol for a severity name using go-termfmt
func severityEmoji(severity string, opts *termfmt.TerminalOptions) string {
	switch severity {
	case "ERROR", "FATAL", "CRITICAL":
		return termfmt.GetEmoji("error", opts)
	case "WARNING", "WARN":
		return termfmt.GetEmoji("warning", opts)
	default:
		return termfmt.GetEmoji("info", opts)
	}
}
