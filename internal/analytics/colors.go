package analytics

// FallbackColor is used for any category without an entry in categoryColors.
const FallbackColor = "#6B7280"

var categoryColors = map[string]string{
	"Food & Dining":         "#6366F1",
	"Transportation":        "#3B82F6",
	"Entertainment":         "#8B5CF6",
	"Utilities":             "#EC4899",
	"Shopping":              "#F59E0B",
	"Healthcare":            "#10B981",
	"Education":             "#14B8A6",
	"Travel":                "#EF4444",
	"Subscription":          "#8B5CF6",
	"Credit Card Repayment": "#64748B",
	"Loan EMI":              "#F97316",
	"Investment":            "#22C55E",
	"Others":                "#6B7280",
}

// CategoryColor is the single color lookup every report uses.
func CategoryColor(category string) string {
	if c, ok := categoryColors[category]; ok {
		return c
	}
	return FallbackColor
}
