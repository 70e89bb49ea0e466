package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/carbon-tracker-api/internal/dto"
	"github.com/noah-isme/carbon-tracker-api/internal/models"
	appErrors "github.com/noah-isme/carbon-tracker-api/pkg/errors"
)

type fakeContentRepo struct {
	content      *models.EducationalContent
	created      *models.EducationalContent
	updated      *models.EducationalContent
	clearedImage []string
	deletedIDs   []string
}

func (f *fakeContentRepo) Create(_ context.Context, content *models.EducationalContent) error {
	content.ID = "c1"
	f.created = content
	return nil
}

func (f *fakeContentRepo) FindByID(_ context.Context, id string) (*models.EducationalContent, error) {
	if f.content == nil || f.content.ID != id {
		return nil, sql.ErrNoRows
	}
	return f.content, nil
}

func (f *fakeContentRepo) FindImage(_ context.Context, id string) ([]byte, string, error) {
	if f.content == nil || f.content.ID != id {
		return nil, "", sql.ErrNoRows
	}
	return f.content.Image, f.content.ImageMIME, nil
}

func (f *fakeContentRepo) List(context.Context, models.ContentFilter) ([]models.EducationalContent, int, error) {
	if f.content == nil {
		return nil, 0, nil
	}
	return []models.EducationalContent{*f.content}, 1, nil
}

func (f *fakeContentRepo) Update(_ context.Context, content *models.EducationalContent) error {
	f.updated = content
	return nil
}

func (f *fakeContentRepo) ClearImage(_ context.Context, id string) error {
	f.clearedImage = append(f.clearedImage, id)
	return nil
}

func (f *fakeContentRepo) Delete(_ context.Context, id string) error {
	f.deletedIDs = append(f.deletedIDs, id)
	return nil
}

// pngBytes is a minimal valid PNG header followed by padding, enough for
// http.DetectContentType to sniff image/png.
func pngBytes() []byte {
	header := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}
	return append(header, make([]byte, 64)...)
}

func validCreateRequest() dto.CreateContentRequest {
	return dto.CreateContentRequest{
		Title:       "Switch to LED lighting",
		Description: "LED bulbs cut lighting electricity use by up to 80%.",
		ContentType: "tip",
	}
}

func TestContentCreateWithImage(t *testing.T) {
	repo := &fakeContentRepo{}
	svc := NewContentService(repo, nil, nil, 0)

	item, err := svc.Create(context.Background(), "admin-1", validCreateRequest(), pngBytes())
	require.NoError(t, err)
	assert.True(t, item.HasImage)
	require.NotNil(t, repo.created)
	assert.Equal(t, "image/png", repo.created.ImageMIME)
	assert.Equal(t, "admin-1", repo.created.AdminID)
}

func TestContentCreateRejectsNonImagePayload(t *testing.T) {
	svc := NewContentService(&fakeContentRepo{}, nil, nil, 0)

	_, err := svc.Create(context.Background(), "admin-1", validCreateRequest(), []byte("<script>alert(1)</script> padding padding"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestContentCreateRejectsOversizedImage(t *testing.T) {
	svc := NewContentService(&fakeContentRepo{}, nil, nil, 128)

	_, err := svc.Create(context.Background(), "admin-1", validCreateRequest(), make([]byte, 256))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestContentCreateRejectsBadContentType(t *testing.T) {
	svc := NewContentService(&fakeContentRepo{}, nil, nil, 0)

	req := validCreateRequest()
	req.ContentType = "advert"
	_, err := svc.Create(context.Background(), "admin-1", req, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestContentImageNotFoundWhenEmpty(t *testing.T) {
	repo := &fakeContentRepo{content: &models.EducationalContent{ID: "c1"}}
	svc := NewContentService(repo, nil, nil, 0)

	_, _, err := svc.Image(context.Background(), "c1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestContentUpdateRemovesImage(t *testing.T) {
	repo := &fakeContentRepo{content: &models.EducationalContent{
		ID:          "c1",
		Title:       "Old title",
		Description: "Old text",
		ContentType: models.ContentTypeTip,
		Image:       pngBytes(),
		ImageMIME:   "image/png",
	}}
	svc := NewContentService(repo, nil, nil, 0)

	item, err := svc.Update(context.Background(), "c1", dto.UpdateContentRequest{
		Title:       "New title",
		Description: "New text",
		ContentType: "article",
		RemoveImage: true,
	}, nil)
	require.NoError(t, err)
	assert.False(t, item.HasImage)
	assert.Equal(t, []string{"c1"}, repo.clearedImage)
	require.NotNil(t, repo.updated)
	assert.Equal(t, "New title", repo.updated.Title)
}

func TestContentListRejectsBadTypeFilter(t *testing.T) {
	svc := NewContentService(&fakeContentRepo{}, nil, nil, 0)

	_, _, err := svc.List(context.Background(), models.ContentFilter{ContentType: models.ContentType("advert")})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestContentDeleteMissing(t *testing.T) {
	repo := &fakeContentRepo{}
	svc := NewContentService(repo, nil, nil, 0)

	err := svc.Delete(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.deletedIDs)
}
