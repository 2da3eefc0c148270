package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/student-roster/internal/models"
	"github.com/noah-isme/student-roster/internal/seed"
	appErrors "github.com/noah-isme/student-roster/pkg/errors"
)

type studentRepository interface {
	Load(ctx context.Context) ([]models.Student, error)
	Save(ctx context.Context, students []models.Student) error
}

// CreateStudentRequest holds payload for creating students.
type CreateStudentRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Phone     string `json:"phone" validate:"required"`
	Email     string `json:"email"`
	DOB       string `json:"dob"`
	Class     string `json:"class"`
}

// UpdateStudentRequest holds payload for updating students.
type UpdateStudentRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Phone     string `json:"phone" validate:"required"`
	Email     string `json:"email"`
	DOB       string `json:"dob"`
	Class     string `json:"class"`
}

// StudentForm is an edit-form prefill derived from a stored record.
type StudentForm struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	DOB       string `json:"dob"`
	Class     string `json:"class"`
}

// StudentService owns the roster use-cases. Every mutation reads the whole
// collection, changes it in memory and writes it back while holding mu.
type StudentService struct {
	repo      studentRepository
	seed      seed.Provider
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
	newID     func() string

	mu sync.Mutex
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, seedFn seed.Provider, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *StudentService {
	if seedFn == nil {
		seedFn = seed.Students
	}
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{
		repo:      repo,
		seed:      seedFn,
		validator: validate,
		metrics:   metrics,
		logger:    logger,
		newID:     uuid.NewString,
	}
}

// NewValidator returns a validator that reports fields by their JSON names.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	return v
}

// ValidationError converts validator output into a VALIDATION_ERROR naming
// the offending fields.
func ValidationError(err error) *appErrors.Error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return appErrors.WrapAs(err, appErrors.ErrValidation, "invalid student payload")
	}
	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			messages = append(messages, fe.Field()+" is required")
			continue
		}
		messages = append(messages, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return appErrors.WrapAs(err, appErrors.ErrValidation, strings.Join(messages, "; "))
}

// LoadAll returns the roster, seeding and persisting it on first use. A read
// failure degrades to the seed without writing anything.
func (s *StudentService) LoadAll(ctx context.Context) ([]models.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	students, err := s.repo.Load(ctx)
	switch {
	case err == nil:
	case errors.Is(err, appErrors.ErrKeyNotFound):
		students = s.seed()
		if err := s.repo.Save(ctx, students); err != nil {
			return nil, appErrors.WrapAs(err, appErrors.ErrStorageWrite, "failed to save initial roster")
		}
		s.logger.Info("seeded student roster", zap.Int("count", len(students)))
	default:
		s.logger.Warn("failed to read student roster, falling back to seed", zap.Error(err))
		students = s.seed()
	}
	s.metrics.SetStudentCount(len(students))
	return students, nil
}

// Get returns one student by id.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	students, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	idx := models.IndexStudent(students, id)
	if idx < 0 {
		return nil, studentNotFound(id)
	}
	student := students[idx]
	return &student, nil
}

// Form returns the edit prefill for id, recovering first and last name from
// the stored display name.
func (s *StudentService) Form(ctx context.Context, id string) (*StudentForm, error) {
	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	first, last := models.SplitName(student.Name)
	return &StudentForm{
		ID:        student.ID,
		FirstName: first,
		LastName:  last,
		Phone:     student.Phone,
		Email:     student.Email,
		DOB:       student.DOB,
		Class:     student.Class,
	}, nil
}

// Create appends a new student with defaults applied to blank optional fields.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, ValidationError(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	students, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	student := models.Student{
		ID:            s.uniqueID(students),
		Name:          models.JoinName(req.FirstName, req.LastName),
		Phone:         req.Phone,
		Email:         orDefault(req.Email, models.DefaultEmail),
		DOB:           orDefault(req.DOB, models.DefaultDOB),
		Class:         orDefault(req.Class, models.DefaultClass),
		ProfileImage:  models.StringScalar(models.DefaultProfileImage),
		Age:           models.NumberScalar(models.DefaultAge),
		YearsInSchool: models.StringScalar(models.DefaultYearsInSchool),
	}
	students = append(students, student)
	if err := s.save(ctx, students); err != nil {
		return nil, err
	}
	s.logger.Info("student created", zap.String("student_id", student.ID))
	return &student, nil
}

// Update overwrites the editable fields of an existing student and keeps
// everything else.
func (s *StudentService) Update(ctx context.Context, id string, req UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, ValidationError(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	students, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	idx := models.IndexStudent(students, id)
	if idx < 0 {
		return nil, studentNotFound(id)
	}
	student := students[idx]
	student.Name = models.JoinName(req.FirstName, req.LastName)
	student.Phone = req.Phone
	student.Email = req.Email
	student.DOB = req.DOB
	student.Class = req.Class
	students[idx] = student

	if err := s.save(ctx, students); err != nil {
		return nil, err
	}
	s.logger.Info("student updated", zap.String("student_id", id))
	return &student, nil
}

// DeleteMany removes every listed id and returns the remaining collection.
// Unknown ids fail the whole call without writing.
func (s *StudentService) DeleteMany(ctx context.Context, ids []string) ([]models.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	students, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return students, nil
	}

	remove := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		remove[id] = struct{}{}
	}
	found := make(map[string]struct{}, len(remove))
	remaining := make([]models.Student, 0, len(students))
	for _, st := range students {
		if _, ok := remove[st.ID]; ok {
			found[st.ID] = struct{}{}
			continue
		}
		remaining = append(remaining, st)
	}

	var missing []string
	for _, id := range ids {
		if _, ok := found[id]; !ok && !slices.Contains(missing, id) {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "students not found: "+strings.Join(missing, ", "))
	}

	if err := s.save(ctx, remaining); err != nil {
		return nil, err
	}
	s.logger.Info("students deleted", zap.Strings("student_ids", ids), zap.Int("remaining", len(remaining)))
	return remaining, nil
}

// load reads the collection for a mutation or lookup. An absent collection
// is the seed; it gets persisted by the next write.
func (s *StudentService) load(ctx context.Context) ([]models.Student, error) {
	students, err := s.repo.Load(ctx)
	if err != nil {
		if errors.Is(err, appErrors.ErrKeyNotFound) {
			return s.seed(), nil
		}
		return nil, appErrors.WrapAs(err, appErrors.ErrStorageRead, "")
	}
	return students, nil
}

func (s *StudentService) save(ctx context.Context, students []models.Student) error {
	if err := s.repo.Save(ctx, students); err != nil {
		s.logger.Error("failed to save student roster", zap.Error(err))
		return appErrors.WrapAs(err, appErrors.ErrStorageWrite, "")
	}
	s.metrics.SetStudentCount(len(students))
	return nil
}

func (s *StudentService) uniqueID(students []models.Student) string {
	for {
		id := s.newID()
		if id != "" && models.IndexStudent(students, id) < 0 {
			return id
		}
	}
}

func studentNotFound(id string) *appErrors.Error {
	return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("student %s not found", id))
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
