package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/meetwise/availability-api/internal/dto"
	"github.com/meetwise/availability-api/internal/models"
	appErrors "github.com/meetwise/availability-api/pkg/errors"
	"github.com/meetwise/availability-api/pkg/export"
)

// Supported export formats.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

// ExportArtifact is a rendered result document ready for download.
type ExportArtifact struct {
	Content     []byte
	ContentType string
	Filename    string
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportService renders resolution results into downloadable documents.
// Nothing is persisted; the artifact is streamed straight to the caller.
type ExportService struct {
	csv csvRenderer
	pdf pdfRenderer
}

// NewExportService constructs the export service.
func NewExportService(csv csvRenderer, pdf pdfRenderer) *ExportService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{csv: csv, pdf: pdf}
}

// Render produces the result table in the requested format, dates in
// chronological order.
func (s *ExportService) Render(result dto.ResolveAvailabilityResponse, format string) (*ExportArtifact, error) {
	dataset := export.Dataset{
		Headers: []string{"Date", "Common Slots"},
		Rows:    resultRows(result),
	}

	stamp := time.Now().UTC().Format("20060102-150405")
	switch strings.ToLower(format) {
	case FormatCSV:
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportArtifact{
			Content:     content,
			ContentType: "text/csv",
			Filename:    fmt.Sprintf("common-slots-%s.csv", stamp),
		}, nil
	case FormatPDF:
		content, err := s.pdf.Render(dataset, "Common Availability")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportArtifact{
			Content:     content,
			ContentType: "application/pdf",
			Filename:    fmt.Sprintf("common-slots-%s.pdf", stamp),
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

func resultRows(result dto.ResolveAvailabilityResponse) []map[string]string {
	dates := make([]string, 0, len(result))
	for date := range result {
		dates = append(dates, date)
	}
	sort.Slice(dates, func(i, j int) bool {
		a, errA := models.ParseDate(dates[i])
		b, errB := models.ParseDate(dates[j])
		if errA != nil || errB != nil {
			return dates[i] < dates[j]
		}
		return b.After(a)
	})

	rows := make([]map[string]string, 0, len(dates))
	for _, date := range dates {
		rows = append(rows, map[string]string{
			"Date":         date,
			"Common Slots": strings.Join(result[date], ", "),
		})
	}
	return rows
}
