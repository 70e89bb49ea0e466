package models

import (
	"time"

	"github.com/noah-isme/carbon-tracker-api/internal/emissions"
)

// ContentType classifies an educational content entry.
type ContentType string

const (
	ContentTypeTip     ContentType = "tip"
	ContentTypeArticle ContentType = "article"
	ContentTypeGuide   ContentType = "guide"
)

// ValidContentType reports whether the string is a known content type.
func ValidContentType(s string) bool {
	switch ContentType(s) {
	case ContentTypeTip, ContentTypeArticle, ContentTypeGuide:
		return true
	default:
		return false
	}
}

// EducationalContent is an admin-authored tip, article or guide. Category and
// emissions level are optional tags used by the recommendation engine; the
// image is stored inline as a blob.
type EducationalContent struct {
	ID             string          `db:"id" json:"id"`
	AdminID        string          `db:"admin_id" json:"admin_id"`
	CategoryID     *int            `db:"category_id" json:"category_id,omitempty"`
	CategoryName   *string         `db:"category_name" json:"category_name,omitempty"`
	Title          string          `db:"title" json:"title"`
	Description    string          `db:"description" json:"description"`
	ContentType    ContentType     `db:"content_type" json:"content_type"`
	EmissionsLevel emissions.Level `db:"emissions_level" json:"emissions_level,omitempty"`
	Image          []byte          `db:"image" json:"-"`
	ImageMIME      string          `db:"image_mime" json:"-"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}

// ContentFilter captures the public content listing filters.
type ContentFilter struct {
	ContentType ContentType
	CategoryID  int
	Page        int
	PageSize    int
}
