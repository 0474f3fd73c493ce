package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/review-bot-api/internal/dto"
	"github.com/noah-isme/review-bot-api/internal/models"
	appErrors "github.com/noah-isme/review-bot-api/pkg/errors"
)

func TestGenerateCSVExport(t *testing.T) {
	store := newModerationStoreStub(&models.Review{
		ID:          1,
		UserID:      100,
		DisplayName: "alice",
		Rating:      5,
		Text:        "a review worth exporting",
		Attachments: "photo:f1",
		Status:      models.StatusApproved,
		CreatedAt:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	})
	svc := NewExportService(store, nil, nil, nil)

	result, err := svc.Generate(context.Background(), dto.ExportCSV, 50)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.True(t, strings.HasSuffix(result.Filename, ".csv"))

	body := string(result.Payload)
	assert.Contains(t, body, "ID,Author,Rating,Text,Attachments,Status,Created At")
	assert.Contains(t, body, "1,alice,5,a review worth exporting,photo:f1,approved,2026-03-01T12:00:00Z")
}

func TestGenerateCSVAnonymousAuthor(t *testing.T) {
	store := newModerationStoreStub(&models.Review{ID: 2, UserID: 100, Rating: 3, Text: "left without a name on it", Status: models.StatusPending})
	svc := NewExportService(store, nil, nil, nil)

	result, err := svc.Generate(context.Background(), dto.ExportCSV, 50)
	require.NoError(t, err)
	assert.Contains(t, string(result.Payload), "Anonymous")
}

func TestGeneratePDFExport(t *testing.T) {
	store := newModerationStoreStub(&models.Review{ID: 1, UserID: 100, DisplayName: "bob", Rating: 4, Text: "pdf bound", Status: models.StatusApproved})
	svc := NewExportService(store, nil, nil, nil)

	result, err := svc.Generate(context.Background(), dto.ExportPDF, 50)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.NotEmpty(t, result.Payload)
}

func TestGenerateUnknownFormat(t *testing.T) {
	store := newModerationStoreStub()
	svc := NewExportService(store, nil, nil, nil)

	_, err := svc.Generate(context.Background(), dto.ExportFormat("xlsx"), 50)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
