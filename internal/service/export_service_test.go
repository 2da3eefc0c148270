package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/student-roster/internal/models"
	appErrors "github.com/noah-isme/student-roster/pkg/errors"
	"github.com/noah-isme/student-roster/pkg/export"
	"github.com/noah-isme/student-roster/pkg/jobs"
	"github.com/noah-isme/student-roster/pkg/storage"
)

type rosterStub struct {
	students []models.Student
	err      error
}

func (r rosterStub) LoadAll(ctx context.Context) ([]models.Student, error) {
	return r.students, r.err
}

func TestExportServiceGenerateCSV(t *testing.T) {
	dir := t.TempDir()
	files, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)

	roster := rosterStub{students: []models.Student{
		{ID: "1", Name: "Jane Doe", Phone: "555", Class: "5th", Age: models.NumberScalar(12), Guardian: &models.Guardian{Name: "Sam"}},
	}}
	svc := NewExportService(roster, files, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC) }

	result, err := svc.Generate(context.Background(), "CSV")
	require.NoError(t, err)
	assert.Equal(t, export.FormatCSV, result.Format)
	assert.Equal(t, "students_20240301_100000.csv", result.Filename)
	assert.Equal(t, 1, result.Rows)

	lines := strings.Split(strings.TrimSpace(string(result.Data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "ID,Name,Phone,Email,DOB,Class,Age,Years In School,Registration No,Guardian", lines[0])
	assert.Equal(t, "1,Jane Doe,555,,,5th,12,,,Sam", lines[1])

	archived, err := os.ReadFile(filepath.Join(dir, result.RelativePath))
	require.NoError(t, err)
	assert.Equal(t, result.Data, archived)
}

func TestExportServiceGeneratePDF(t *testing.T) {
	svc := NewExportService(rosterStub{students: []models.Student{{ID: "1", Name: "A"}}}, nil, nil)

	result, err := svc.Generate(context.Background(), "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasPrefix(string(result.Data), "%PDF-"))
	assert.Empty(t, result.RelativePath)
}

func TestExportServiceRejectsUnknownFormat(t *testing.T) {
	svc := NewExportService(rosterStub{}, nil, nil)
	_, err := svc.Generate(context.Background(), "xlsx")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestExportServicePropagatesLoadError(t *testing.T) {
	svc := NewExportService(rosterStub{err: appErrors.ErrStorageWrite}, nil, nil)
	_, err := svc.Generate(context.Background(), "")
	assert.True(t, errors.Is(err, appErrors.ErrStorageWrite))
}

func TestExportServiceArchivesThroughQueue(t *testing.T) {
	dir := t.TempDir()
	files, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)

	svc := NewExportService(rosterStub{students: []models.Student{{ID: "1", Name: "A"}}}, files, nil)
	queue := jobs.NewQueue("exports", svc.ArchiveJob, jobs.QueueConfig{RetryDelay: time.Millisecond})
	queue.Start(context.Background())
	svc.UseArchiveQueue(queue)

	result, err := svc.Generate(context.Background(), "csv")
	require.NoError(t, err)
	assert.Equal(t, result.Filename, result.RelativePath)

	queue.Stop()
	archived, err := os.ReadFile(filepath.Join(dir, result.RelativePath))
	require.NoError(t, err)
	assert.Equal(t, result.Data, archived)
}

func TestExportServiceArchiveJobRejectsForeignPayload(t *testing.T) {
	svc := NewExportService(rosterStub{}, nil, nil)
	err := svc.ArchiveJob(context.Background(), jobs.Job{ID: "x", Payload: 42})
	assert.Error(t, err)
}
