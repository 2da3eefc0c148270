package viewmodel

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/student-roster/internal/models"
	appErrors "github.com/noah-isme/student-roster/pkg/errors"
)

type studentLister interface {
	LoadAll(ctx context.Context) ([]models.Student, error)
	DeleteMany(ctx context.Context, ids []string) ([]models.Student, error)
}

// Confirmer is the yes/no gate shown before a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, message string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, message string) (bool, error)

// Confirm calls f.
func (f ConfirmFunc) Confirm(ctx context.Context, message string) (bool, error) {
	return f(ctx, message)
}

// AlwaysConfirm accepts every prompt.
var AlwaysConfirm = ConfirmFunc(func(context.Context, string) (bool, error) { return true, nil })

// ListViewModel tracks the displayed roster and which rows are selected.
type ListViewModel struct {
	students studentLister
	logger   *zap.Logger

	mu       sync.Mutex
	items    []models.Student
	selected map[string]bool
}

// NewListViewModel constructs an empty list; call Load to populate it.
func NewListViewModel(students studentLister, logger *zap.Logger) *ListViewModel {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ListViewModel{students: students, logger: logger, selected: make(map[string]bool)}
}

// Load refreshes the roster and drops selections of rows that disappeared.
func (vm *ListViewModel) Load(ctx context.Context) error {
	items, err := vm.students.LoadAll(ctx)
	if err != nil {
		return err
	}

	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.items = items
	listed := make(map[string]struct{}, len(items))
	for _, st := range items {
		listed[st.ID] = struct{}{}
	}
	for id := range vm.selected {
		if _, ok := listed[id]; !ok {
			delete(vm.selected, id)
		}
	}
	return nil
}

// Students returns a copy of the displayed rows.
func (vm *ListViewModel) Students() []models.Student {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return models.CloneStudents(vm.items)
}

// Len returns the number of displayed rows.
func (vm *ListViewModel) Len() int {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return len(vm.items)
}

// Toggle flips the selection of one row.
func (vm *ListViewModel) Toggle(id string) error {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if models.IndexStudent(vm.items, id) < 0 {
		return notListed(id)
	}
	if vm.selected[id] {
		delete(vm.selected, id)
	} else {
		vm.selected[id] = true
	}
	return nil
}

// Select marks the given rows as selected. Nothing changes if any id is not listed.
func (vm *ListViewModel) Select(ids ...string) error {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	var missing []string
	for _, id := range ids {
		if models.IndexStudent(vm.items, id) < 0 {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "students not found: "+strings.Join(missing, ", "))
	}
	for _, id := range ids {
		vm.selected[id] = true
	}
	return nil
}

// IsSelected reports whether id is selected.
func (vm *ListViewModel) IsSelected(id string) bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.selected[id]
}

// HasSelection reports whether at least one row is selected.
func (vm *ListViewModel) HasSelection() bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return len(vm.selected) > 0
}

// AllSelected is true iff the list is non-empty and every listed row is selected.
func (vm *ListViewModel) AllSelected() bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.allSelected()
}

func (vm *ListViewModel) allSelected() bool {
	if len(vm.items) == 0 || len(vm.selected) != len(vm.items) {
		return false
	}
	for _, st := range vm.items {
		if !vm.selected[st.ID] {
			return false
		}
	}
	return true
}

// SelectedIDs returns the selected ids in list order.
func (vm *ListViewModel) SelectedIDs() []string {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.selectedIDs()
}

func (vm *ListViewModel) selectedIDs() []string {
	ids := make([]string, 0, len(vm.selected))
	for _, st := range vm.items {
		if vm.selected[st.ID] {
			ids = append(ids, st.ID)
		}
	}
	return ids
}

// ToggleAll clears every selection when all rows are selected and otherwise
// selects the rows listed right now.
func (vm *ListViewModel) ToggleAll() {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.allSelected() {
		vm.selected = make(map[string]bool)
		return
	}
	for _, st := range vm.items {
		vm.selected[st.ID] = true
	}
}

// DeleteSelected asks confirm before deleting the selected rows. The rows
// disappear immediately; if the delete fails the previous list and selection
// come back and the error is returned. It reports whether anything was deleted.
func (vm *ListViewModel) DeleteSelected(ctx context.Context, confirm Confirmer) (bool, error) {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	ids := vm.selectedIDs()
	if len(ids) == 0 {
		return false, appErrors.Clone(appErrors.ErrValidation, "no students selected")
	}
	if confirm == nil {
		return false, appErrors.ErrConfirmationRequired
	}
	ok, err := confirm.Confirm(ctx, fmt.Sprintf("Delete %d selected student(s)?", len(ids)))
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	prevItems := vm.items
	prevSelected := vm.selected
	remaining := make([]models.Student, 0, len(vm.items))
	for _, st := range vm.items {
		if !vm.selected[st.ID] {
			remaining = append(remaining, st)
		}
	}
	vm.items = remaining
	vm.selected = make(map[string]bool)

	persisted, err := vm.students.DeleteMany(ctx, ids)
	if err != nil {
		vm.items = prevItems
		vm.selected = prevSelected
		vm.logger.Warn("bulk delete failed, list restored", zap.Strings("student_ids", ids), zap.Error(err))
		return false, err
	}
	vm.items = persisted
	return true, nil
}

// OpenCreate navigates to the add form.
func (vm *ListViewModel) OpenCreate() Navigation {
	return Navigation{Route: RouteCreate}
}

// OpenEdit navigates to the edit form of a listed row.
func (vm *ListViewModel) OpenEdit(id string) (Navigation, error) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if models.IndexStudent(vm.items, id) < 0 {
		return Navigation{}, notListed(id)
	}
	return Navigation{Route: RouteEdit, ID: id}, nil
}

func notListed(id string) *appErrors.Error {
	return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("student %s not found", id))
}
