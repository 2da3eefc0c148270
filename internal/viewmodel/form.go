package viewmodel

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/student-roster/internal/models"
	"github.com/noah-isme/student-roster/internal/service"
	appErrors "github.com/noah-isme/student-roster/pkg/errors"
)

type studentEditor interface {
	Form(ctx context.Context, id string) (*service.StudentForm, error)
	Create(ctx context.Context, req service.CreateStudentRequest) (*models.Student, error)
	Update(ctx context.Context, id string, req service.UpdateStudentRequest) (*models.Student, error)
}

// Field names an editable form input.
type Field string

const (
	FieldFirstName Field = "firstName"
	FieldLastName  Field = "lastName"
	FieldPhone     Field = "phone"
	FieldEmail     Field = "email"
	FieldDOB       Field = "dob"
	FieldClass     Field = "class"
)

// Fields lists the form inputs in display order.
var Fields = []Field{FieldFirstName, FieldLastName, FieldPhone, FieldEmail, FieldDOB, FieldClass}

// FormValues is the transient input state of a form.
type FormValues struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Phone     string `json:"phone" validate:"required"`
	Email     string `json:"email"`
	DOB       string `json:"dob"`
	Class     string `json:"class"`
}

func (v *FormValues) field(f Field) (*string, error) {
	switch f {
	case FieldFirstName:
		return &v.FirstName, nil
	case FieldLastName:
		return &v.LastName, nil
	case FieldPhone:
		return &v.Phone, nil
	case FieldEmail:
		return &v.Email, nil
	case FieldDOB:
		return &v.DOB, nil
	case FieldClass:
		return &v.Class, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown field %q", f))
	}
}

// FormViewModel backs both the add and the edit screen. An edit form carries
// the id of the record it was prefilled from.
type FormViewModel struct {
	students studentEditor
	validate *validator.Validate
	id       string

	mu     sync.Mutex
	values FormValues
}

// NewAddForm returns an empty add form.
func NewAddForm(students studentEditor) *FormViewModel {
	return &FormViewModel{students: students, validate: service.NewValidator()}
}

// NewEditForm loads id and prefills the form, splitting the stored name on
// its first space.
func NewEditForm(ctx context.Context, students studentEditor, id string) (*FormViewModel, error) {
	form, err := students.Form(ctx, id)
	if err != nil {
		return nil, err
	}
	return &FormViewModel{
		students: students,
		validate: service.NewValidator(),
		id:       id,
		values: FormValues{
			FirstName: form.FirstName,
			LastName:  form.LastName,
			Phone:     form.Phone,
			Email:     form.Email,
			DOB:       form.DOB,
			Class:     form.Class,
		},
	}, nil
}

// IsEdit reports whether the form edits an existing record.
func (f *FormViewModel) IsEdit() bool { return f.id != "" }

// ID returns the edited record id, empty for an add form.
func (f *FormViewModel) ID() string { return f.id }

// Set updates one input.
func (f *FormViewModel) Set(field Field, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ptr, err := f.values.field(field)
	if err != nil {
		return err
	}
	*ptr = value
	return nil
}

// Get returns the current value of one input.
func (f *FormViewModel) Get(field Field) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	ptr, err := f.values.field(field)
	if err != nil {
		return ""
	}
	return *ptr
}

// Values returns a copy of the input state.
func (f *FormViewModel) Values() FormValues {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values
}

// Validate checks required inputs without touching storage.
func (f *FormViewModel) Validate() error {
	values := f.Values()
	if err := f.validate.Struct(values); err != nil {
		return service.ValidationError(err)
	}
	return nil
}

// Save validates, then creates or updates the record. On success the caller
// should navigate back to the list.
func (f *FormViewModel) Save(ctx context.Context) (*models.Student, Navigation, error) {
	if err := f.Validate(); err != nil {
		return nil, Navigation{}, err
	}
	v := f.Values()

	var (
		student *models.Student
		err     error
	)
	if f.IsEdit() {
		student, err = f.students.Update(ctx, f.id, service.UpdateStudentRequest{
			FirstName: v.FirstName, LastName: v.LastName, Phone: v.Phone,
			Email: v.Email, DOB: v.DOB, Class: v.Class,
		})
	} else {
		student, err = f.students.Create(ctx, service.CreateStudentRequest{
			FirstName: v.FirstName, LastName: v.LastName, Phone: v.Phone,
			Email: v.Email, DOB: v.DOB, Class: v.Class,
		})
	}
	if err != nil {
		return nil, Navigation{}, err
	}
	return student, BackToList(), nil
}

// Cancel discards the form.
func (f *FormViewModel) Cancel() Navigation {
	return BackToList()
}
