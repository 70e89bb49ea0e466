package models

import (
	"time"

	"github.com/noah-isme/carbon-tracker-api/internal/emissions"
)

// Period labels the reporting window a record was logged under.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

// ValidPeriod reports whether the string is a known period name.
func ValidPeriod(s string) bool {
	switch Period(s) {
	case PeriodDaily, PeriodWeekly, PeriodMonthly:
		return true
	default:
		return false
	}
}

// EmissionCategory is a reference row from the emission_categories table.
type EmissionCategory struct {
	ID   int    `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
	Slug string `db:"slug" json:"slug"`
	Unit string `db:"unit" json:"unit"`
}

// EmissionRecord is one submission event with a derived, persisted total.
// Records are immutable once written; only deletion is allowed.
type EmissionRecord struct {
	ID             string    `db:"id" json:"id"`
	UserID         string    `db:"user_id" json:"user_id"`
	RecordDate     time.Time `db:"record_date" json:"record_date"`
	Period         Period    `db:"period" json:"period"`
	TotalEmissions float64   `db:"total_emissions" json:"total_emissions"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// EmissionDetail is one category's line item within a record. The raw input is
// stored as a typed quantity plus subtype column, never an encoded composite.
type EmissionDetail struct {
	ID         string            `db:"id" json:"id"`
	RecordID   string            `db:"record_id" json:"record_id"`
	CategoryID int               `db:"category_id" json:"category_id"`
	Quantity   float64           `db:"quantity" json:"quantity"`
	Subtype    emissions.Subtype `db:"subtype" json:"subtype,omitempty"`
	Emissions  float64           `db:"emissions" json:"emissions"`
}

// DetailWithCategory joins a detail line with its category reference row.
type DetailWithCategory struct {
	EmissionDetail
	CategoryName string `db:"category_name" json:"category_name"`
	CategoryUnit string `db:"category_unit" json:"category_unit"`
}

// RecordWithUser joins a record with owner info for admin listings.
type RecordWithUser struct {
	EmissionRecord
	UserName   string `db:"user_name" json:"user_name"`
	Department string `db:"department" json:"department"`
}

// RecordFilter captures the conjunctive filters of the admin record listing.
// Absent (zero-valued) filters are no-ops.
type RecordFilter struct {
	UserID     string
	Department string
	DateFrom   *time.Time
	DateTo     *time.Time
	Level      emissions.Level
	Page       int
	PageSize   int
}

// CategoryTotal is one row of a category breakdown, ordered by total descending.
type CategoryTotal struct {
	CategoryID   int     `db:"category_id" json:"category_id"`
	CategoryName string  `db:"category_name" json:"category_name"`
	Total        float64 `db:"total" json:"total"`
	RecordCount  int     `db:"record_count" json:"record_count"`
}

// MonthlyTotal is one month's summed emissions, keyed YYYY-MM.
type MonthlyTotal struct {
	Month string  `db:"month" json:"month"`
	Total float64 `db:"total" json:"total"`
}

// DepartmentSummary aggregates activity per department for admin analytics.
type DepartmentSummary struct {
	Department     string  `db:"department" json:"department"`
	UserCount      int     `db:"user_count" json:"user_count"`
	RecordCount    int     `db:"record_count" json:"record_count"`
	TotalEmissions float64 `db:"total_emissions" json:"total_emissions"`
}

// LevelCount is one bucket of the global level distribution.
type LevelCount struct {
	Level emissions.Level `db:"level" json:"level"`
	Count int             `db:"count" json:"count"`
}
