package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/review-bot-api/internal/dto"
	"github.com/noah-isme/review-bot-api/internal/models"
	appErrors "github.com/noah-isme/review-bot-api/pkg/errors"
	"github.com/noah-isme/review-bot-api/pkg/export"
)

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type exportStore interface {
	ListRecent(ctx context.Context, limit int) ([]models.Review, error)
}

// ExportResult is a rendered moderation export ready to be served.
type ExportResult struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders review dumps for administrators.
type ExportService struct {
	repo   exportStore
	csv    csvRenderer
	pdf    pdfRenderer
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(repo exportStore, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{repo: repo, csv: csv, pdf: pdf, logger: logger, now: time.Now}
}

// Generate renders all stored reviews, any status, newest first.
func (s *ExportService) Generate(ctx context.Context, format dto.ExportFormat, limit int) (*ExportResult, error) {
	reviews, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load reviews for export")
	}

	dataset := s.buildDataset(reviews)
	stamp := s.now().UTC().Format("20060102-150405")

	switch format {
	case dto.ExportCSV:
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return &ExportResult{
			Filename:    fmt.Sprintf("reviews-%s.csv", stamp),
			ContentType: "text/csv",
			Payload:     payload,
		}, nil

	case dto.ExportPDF:
		payload, err := s.pdf.Render(dataset, "Reviews")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return &ExportResult{
			Filename:    fmt.Sprintf("reviews-%s.pdf", stamp),
			ContentType: "application/pdf",
			Payload:     payload,
		}, nil
	}

	return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format: "+string(format))
}

func (s *ExportService) buildDataset(reviews []models.Review) export.Dataset {
	dataset := export.Dataset{
		Headers: []string{"ID", "Author", "Rating", "Text", "Attachments", "Status", "Created At"},
	}
	for i := range reviews {
		review := &reviews[i]
		dataset.Rows = append(dataset.Rows, []string{
			strconv.FormatInt(review.ID, 10),
			review.Author(),
			strconv.Itoa(review.Rating),
			review.Text,
			review.Attachments,
			string(review.Status),
			review.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return dataset
}
