package dto

// AdminRecordRow is one row of the admin record listing.
type AdminRecordRow struct {
	RecordID       string  `json:"record_id"`
	RecordDate     string  `json:"record_date"`
	TotalEmissions float64 `json:"total_emissions"`
	Level          string  `json:"level"`
	UserID         string  `json:"user_id"`
	UserName       string  `json:"user_name"`
	Department     string  `json:"department"`
}

// AdminUserRow is one row of the admin user listing.
type AdminUserRow struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Department  string  `json:"department"`
	RecordCount int     `json:"record_count"`
	TotalToDate float64 `json:"total_to_date"`
	CreatedAt   string  `json:"created_at"`
}

// AdminUserDetail pairs a user with their aggregate stats.
type AdminUserDetail struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Email           string          `json:"email"`
	Department      string          `json:"department"`
	CreatedAt       string          `json:"created_at"`
	TotalEmissions  float64         `json:"total_emissions"`
	CurrentLevel    string          `json:"current_level"`
	HighestCategory string          `json:"highest_category"`
	Breakdown       []CategoryShare `json:"breakdown"`
	RecentRecords   []RecordSummary `json:"recent_records"`
}

// LevelBucket is one bucket of the level distribution.
type LevelBucket struct {
	Level string `json:"level"`
	Count int    `json:"count"`
}

// DepartmentRollup aggregates per-department activity.
type DepartmentRollup struct {
	Department     string  `json:"department"`
	UserCount      int     `json:"user_count"`
	RecordCount    int     `json:"record_count"`
	TotalEmissions float64 `json:"total_emissions"`
}

// AdminAnalyticsResponse is the aggregate analytics payload.
type AdminAnalyticsResponse struct {
	UserCount         int                `json:"user_count"`
	RecordCount       int                `json:"record_count"`
	TotalEmissions    float64            `json:"total_emissions"`
	MonthlyTrend      []MonthPoint       `json:"monthly_trend"`
	CategoryBreakdown []CategoryShare    `json:"category_breakdown"`
	Departments       []DepartmentRollup `json:"departments"`
	LevelDistribution []LevelBucket      `json:"level_distribution"`
}
