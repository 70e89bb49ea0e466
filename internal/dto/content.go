package dto

// TipItem is the recommendation/report-facing projection of educational content.
type TipItem struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	ContentType  string `json:"content_type"`
	CategoryName string `json:"category_name,omitempty"`
}

// ContentItem is the public listing projection of educational content.
type ContentItem struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	ContentType    string `json:"content_type"`
	CategoryName   string `json:"category_name,omitempty"`
	EmissionsLevel string `json:"emissions_level,omitempty"`
	HasImage       bool   `json:"has_image"`
	CreatedAt      string `json:"created_at"`
}

// CreateContentRequest is the admin payload for new educational content.
// The image arrives as a separate multipart part, not in this body.
type CreateContentRequest struct {
	Title          string `json:"title" validate:"required,max=150"`
	Description    string `json:"description" validate:"required"`
	ContentType    string `json:"content_type" validate:"required,oneof=tip article guide"`
	CategoryID     *int   `json:"category_id,omitempty"`
	EmissionsLevel string `json:"emissions_level,omitempty" validate:"omitempty,oneof=Low Medium High"`
}

// UpdateContentRequest mutates an existing content entry.
type UpdateContentRequest struct {
	Title          string `json:"title" validate:"required,max=150"`
	Description    string `json:"description" validate:"required"`
	ContentType    string `json:"content_type" validate:"required,oneof=tip article guide"`
	CategoryID     *int   `json:"category_id,omitempty"`
	EmissionsLevel string `json:"emissions_level,omitempty" validate:"omitempty,oneof=Low Medium High"`
	RemoveImage    bool   `json:"remove_image,omitempty"`
}
