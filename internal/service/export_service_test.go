package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meetwise/availability-api/internal/dto"
	appErrors "github.com/meetwise/availability-api/pkg/errors"
)

func exportResult() dto.ResolveAvailabilityResponse {
	return dto.ResolveAvailabilityResponse{
		"29/10/2024": {"10:00-10:30"},
		"28/10/2024": {"09:00-09:30", "09:30-10:00"},
	}
}

func TestExportRenderCSV(t *testing.T) {
	svc := NewExportService(nil, nil)

	artifact, err := svc.Render(exportResult(), FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", artifact.ContentType)
	assert.True(t, strings.HasPrefix(artifact.Filename, "common-slots-"))
	assert.True(t, strings.HasSuffix(artifact.Filename, ".csv"))

	lines := strings.Split(strings.TrimSpace(string(artifact.Content)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Date,Common Slots", lines[0])
	// Rows come back in chronological order regardless of map iteration.
	assert.Contains(t, lines[1], "28/10/2024")
	assert.Contains(t, lines[1], "09:00-09:30, 09:30-10:00")
	assert.Contains(t, lines[2], "29/10/2024")
}

func TestExportRenderPDF(t *testing.T) {
	svc := NewExportService(nil, nil)

	artifact, err := svc.Render(exportResult(), FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", artifact.ContentType)
	assert.True(t, strings.HasSuffix(artifact.Filename, ".pdf"))
	assert.True(t, strings.HasPrefix(string(artifact.Content), "%PDF"))
}

func TestExportRenderFormatIsCaseInsensitive(t *testing.T) {
	svc := NewExportService(nil, nil)

	artifact, err := svc.Render(exportResult(), "CSV")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", artifact.ContentType)
}

func TestExportRenderUnsupportedFormat(t *testing.T) {
	svc := NewExportService(nil, nil)

	_, err := svc.Render(exportResult(), "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExportRenderEmptyResult(t *testing.T) {
	svc := NewExportService(nil, nil)

	artifact, err := svc.Render(dto.ResolveAvailabilityResponse{}, FormatCSV)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(artifact.Content)), "\n")
	require.Len(t, lines, 1)
	assert.Equal(t, "Date,Common Slots", lines[0])
}
