package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/student-roster/internal/models"
	appErrors "github.com/noah-isme/student-roster/pkg/errors"
	"github.com/noah-isme/student-roster/pkg/export"
	"github.com/noah-isme/student-roster/pkg/jobs"
)

// JobTypeArchiveExport tags queued archive writes.
const JobTypeArchiveExport = "roster_export_archive"

type rosterLoader interface {
	LoadAll(ctx context.Context) ([]models.Student, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
}

type archiveQueue interface {
	Enqueue(job jobs.Job) error
}

type archivePayload struct {
	Filename string
	Data     []byte
}

// ExportResult carries a rendered roster document.
type ExportResult struct {
	Filename     string
	RelativePath string
	ContentType  string
	Format       export.Format
	Rows         int
	Data         []byte
}

// ExportService renders the roster to CSV or PDF and archives a copy.
type ExportService struct {
	roster  rosterLoader
	storage fileStorage
	queue   archiveQueue
	logger  *zap.Logger
	now     func() time.Time
}

var rosterHeaders = []string{"ID", "Name", "Phone", "Email", "DOB", "Class", "Age", "Years In School", "Registration No", "Guardian"}

// NewExportService constructs an ExportService. A nil storage skips archiving.
func NewExportService(roster rosterLoader, storage fileStorage, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{roster: roster, storage: storage, logger: logger, now: time.Now}
}

// UseArchiveQueue moves archive writes onto queue. ArchiveJob is the matching
// handler.
func (s *ExportService) UseArchiveQueue(queue archiveQueue) {
	s.queue = queue
}

// ArchiveJob writes a queued export to storage.
func (s *ExportService) ArchiveJob(_ context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(archivePayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for job %s", job.Payload, job.ID)
	}
	if s.storage == nil {
		return errors.New("export storage not configured")
	}
	if _, err := s.storage.Save(payload.Filename, payload.Data); err != nil {
		return fmt.Errorf("archive %s: %w", payload.Filename, err)
	}
	return nil
}

// Generate renders the current roster in the requested format.
func (s *ExportService) Generate(ctx context.Context, rawFormat string) (*ExportResult, error) {
	format, err := export.ParseFormat(rawFormat)
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrValidation, err.Error())
	}
	renderer, err := export.NewRenderer(format)
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrValidation, err.Error())
	}

	students, err := s.roster.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	payload, err := renderer.Render(BuildRosterDataset(students))
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to render roster export")
	}

	result := &ExportResult{
		Filename:    fmt.Sprintf("students_%s.%s", s.now().UTC().Format("20060102_150405"), renderer.Extension()),
		ContentType: renderer.ContentType(),
		Format:      format,
		Rows:        len(students),
		Data:        payload,
	}
	s.archive(result)
	return result, nil
}

func (s *ExportService) archive(result *ExportResult) {
	if s.storage == nil {
		return
	}
	if s.queue != nil {
		job := jobs.Job{
			ID:      result.Filename,
			Type:    JobTypeArchiveExport,
			Payload: archivePayload{Filename: result.Filename, Data: result.Data},
		}
		if err := s.queue.Enqueue(job); err != nil {
			s.logger.Warn("failed to queue roster export archive", zap.String("file", result.Filename), zap.Error(err))
			return
		}
		result.RelativePath = result.Filename
		return
	}
	relPath, err := s.storage.Save(result.Filename, result.Data)
	if err != nil {
		s.logger.Warn("failed to archive roster export", zap.String("file", result.Filename), zap.Error(err))
		return
	}
	result.RelativePath = relPath
}

// BuildRosterDataset flattens the roster into export rows.
func BuildRosterDataset(students []models.Student) export.Dataset {
	rows := make([]map[string]string, 0, len(students))
	for _, st := range students {
		guardian := ""
		if st.Guardian != nil {
			guardian = st.Guardian.Name
		}
		rows = append(rows, map[string]string{
			"ID":              st.ID,
			"Name":            st.Name,
			"Phone":           st.Phone,
			"Email":           st.Email,
			"DOB":             st.DOB,
			"Class":           st.Class,
			"Age":             st.Age.String(),
			"Years In School": st.YearsInSchool.String(),
			"Registration No": st.RegistrationNo,
			"Guardian":        guardian,
		})
	}
	return export.Dataset{
		Title:   fmt.Sprintf("Student Roster (%d)", len(students)),
		Headers: rosterHeaders,
		Rows:    rows,
	}
}
