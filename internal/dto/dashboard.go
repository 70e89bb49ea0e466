package dto

// MonthPoint is one month of the dense trend series; months without records
// carry a zero total so charts never see gaps.
type MonthPoint struct {
	Month string  `json:"month"`
	Total float64 `json:"total"`
	Level string  `json:"level"`
}

// CategoryShare is one slice of the category breakdown.
type CategoryShare struct {
	Category    string  `json:"category"`
	Total       float64 `json:"total"`
	RecordCount int     `json:"record_count"`
	Percentage  float64 `json:"percentage"`
}

// MonthComparison reports month-over-month movement. ChangePercent is null
// when the previous month has no emissions to compare against.
type MonthComparison struct {
	CurrentTotal  float64  `json:"current_total"`
	PreviousTotal float64  `json:"previous_total"`
	ChangePercent *float64 `json:"change_percent"`
	Trend         string   `json:"trend"`
}

// DashboardResponse is the per-user dashboard summary payload.
type DashboardResponse struct {
	TotalEmissions   float64         `json:"total_emissions"`
	CurrentMonth     float64         `json:"current_month"`
	CurrentLevel     string          `json:"current_level"`
	HighestCategory  string          `json:"highest_category"`
	Comparison       MonthComparison `json:"comparison"`
	Trend            []MonthPoint    `json:"trend"`
	Breakdown        []CategoryShare `json:"breakdown"`
	RecentRecords    []RecordSummary `json:"recent_records"`
	PersonalizedTips []TipItem       `json:"personalized_tips"`
}

// RecordSummary is a compact history row.
type RecordSummary struct {
	RecordID       string  `json:"record_id"`
	RecordDate     string  `json:"record_date"`
	Period         string  `json:"period"`
	TotalEmissions float64 `json:"total_emissions"`
	Level          string  `json:"level"`
}
