package dto

// CategoryEntry is one typed consumption input: a quantity plus an optional
// subtype. It replaces the legacy encoded "12.5|diesel" composite strings.
type CategoryEntry struct {
	Quantity float64 `json:"quantity" validate:"gte=0,lte=1000000"`
	Subtype  string  `json:"subtype,omitempty"`
}

// CalculateRequest is the calculator submission payload. All six entries are
// optional, but at least one must be present.
type CalculateRequest struct {
	Electricity *CategoryEntry `json:"electricity,omitempty"`
	Fuel        *CategoryEntry `json:"fuel,omitempty"`
	Water       *CategoryEntry `json:"water,omitempty"`
	Waste       *CategoryEntry `json:"waste,omitempty"`
	Paper       *CategoryEntry `json:"paper,omitempty"`
	Food        *CategoryEntry `json:"food,omitempty"`
	Period      string         `json:"period" validate:"required,oneof=daily weekly monthly"`
	RecordDate  string         `json:"record_date,omitempty"`
}

// DetailResult echoes one computed line item back to the client.
type DetailResult struct {
	Category  string  `json:"category"`
	Quantity  float64 `json:"quantity"`
	Subtype   string  `json:"subtype,omitempty"`
	Emissions float64 `json:"emissions"`
}

// CalculateResponse returns the persisted record with its breakdown.
type CalculateResponse struct {
	RecordID       string         `json:"record_id"`
	RecordDate     string         `json:"record_date"`
	Period         string         `json:"period"`
	TotalEmissions float64        `json:"total_emissions"`
	Level          string         `json:"level"`
	Details        []DetailResult `json:"details"`
}
