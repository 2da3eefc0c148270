package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/student-roster/internal/models"
	"github.com/noah-isme/student-roster/internal/repository"
	appErrors "github.com/noah-isme/student-roster/pkg/errors"
)

// fakeStore counts calls and can be told to fail.
type fakeStore struct {
	mu     sync.Mutex
	data   map[string][]byte
	gets   int
	sets   int
	getErr error
	setErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string][]byte)}
}

func (f *fakeStore) Get(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.getErr != nil {
		return nil, f.getErr
	}
	v, ok := f.data[key]
	if !ok {
		return nil, appErrors.ErrKeyNotFound
	}
	return append([]byte(nil), v...), nil
}

func (f *fakeStore) Set(ctx context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets++
	if f.setErr != nil {
		return f.setErr
	}
	f.data[key] = append([]byte(nil), value...)
	return nil
}

func (f *fakeStore) writes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sets
}

func threeStudents() []models.Student {
	return []models.Student{
		{ID: "1", Name: "Ann Able", Phone: "1"},
		{ID: "2", Name: "Ben Baker", Phone: "2"},
		{ID: "3", Name: "Cat Cole", Phone: "3"},
	}
}

func newTestStudentService(t *testing.T, store *fakeStore, initial []models.Student) *StudentService {
	t.Helper()
	repo := repository.NewStudentRepository(store, "students")
	if initial != nil {
		require.NoError(t, repo.Save(context.Background(), initial))
		store.sets = 0
	}
	return NewStudentService(repo, threeStudents, nil, nil, zap.NewNop())
}

func ids(students []models.Student) []string {
	out := make([]string, len(students))
	for i, s := range students {
		out[i] = s.ID
	}
	return out
}

func TestLoadAllSeedsOnce(t *testing.T) {
	store := newFakeStore()
	svc := newTestStudentService(t, store, nil)
	ctx := context.Background()

	first, err := svc.LoadAll(ctx)
	require.NoError(t, err)
	second, err := svc.LoadAll(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, []string{"1", "2", "3"}, ids(first))
	assert.Equal(t, 1, store.writes())
}

func TestLoadAllEmptyCollectionIsNotReseeded(t *testing.T) {
	store := newFakeStore()
	svc := newTestStudentService(t, store, []models.Student{})

	students, err := svc.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, students)
	assert.Zero(t, store.writes())
}

func TestLoadAllReadFailureDegradesToSeed(t *testing.T) {
	store := newFakeStore()
	store.getErr = errors.New("disk unplugged")
	svc := newTestStudentService(t, store, nil)

	students, err := svc.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, students, 3)
	assert.Zero(t, store.writes())
}

func TestLoadAllUndecodablePayloadDegradesToSeed(t *testing.T) {
	store := newFakeStore()
	store.data["students"] = []byte(`{broken`)
	svc := newTestStudentService(t, store, nil)

	students, err := svc.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, students, 3)
	assert.Equal(t, `{broken`, string(store.data["students"]))
}

func TestLoadAllSeedWriteFailureSurfaces(t *testing.T) {
	store := newFakeStore()
	store.setErr = errors.New("read-only")
	svc := newTestStudentService(t, store, nil)

	_, err := svc.LoadAll(context.Background())
	assert.ErrorIs(t, err, appErrors.ErrStorageWrite)
}

func TestCreateValidationGate(t *testing.T) {
	store := newFakeStore()
	svc := newTestStudentService(t, store, threeStudents())

	_, err := svc.Create(context.Background(), CreateStudentRequest{FirstName: "", LastName: "Doe", Phone: "555"})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Contains(t, err.Error(), "firstName is required")
	assert.Zero(t, store.writes())
	assert.Zero(t, store.gets)
}

func TestCreateAppliesDefaultsAndAppends(t *testing.T) {
	store := newFakeStore()
	svc := newTestStudentService(t, store, threeStudents())
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateStudentRequest{FirstName: "Jane", LastName: "Doe", Phone: "555", Email: "  "})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Jane Doe", created.Name)
	assert.Equal(t, models.DefaultEmail, created.Email)
	assert.Equal(t, models.DefaultDOB, created.DOB)
	assert.Equal(t, models.DefaultClass, created.Class)
	assert.Equal(t, models.DefaultProfileImage, created.ProfileImage.String())
	assert.True(t, created.Age.IsNumber())
	assert.Equal(t, "20", created.Age.String())
	assert.Equal(t, models.DefaultYearsInSchool, created.YearsInSchool.String())

	all, err := svc.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, *created, all[3])
	assert.Equal(t, 1, store.writes())
}

func TestCreateIDsAreUnique(t *testing.T) {
	store := newFakeStore()
	svc := newTestStudentService(t, store, []models.Student{})
	ctx := context.Background()

	seen := map[string]struct{}{}
	for i := 0; i < 50; i++ {
		st, err := svc.Create(ctx, CreateStudentRequest{FirstName: "F", LastName: fmt.Sprint(i), Phone: "1"})
		require.NoError(t, err)
		_, dup := seen[st.ID]
		require.False(t, dup)
		seen[st.ID] = struct{}{}
	}
}

func TestCreateRegeneratesCollidingID(t *testing.T) {
	store := newFakeStore()
	svc := newTestStudentService(t, store, threeStudents())
	generated := []string{"2", "3", "fresh"}
	svc.newID = func() string {
		id := generated[0]
		generated = generated[1:]
		return id
	}

	created, err := svc.Create(context.Background(), CreateStudentRequest{FirstName: "A", LastName: "B", Phone: "1"})
	require.NoError(t, err)
	assert.Equal(t, "fresh", created.ID)
}

func TestCreateReadFailureDoesNotWrite(t *testing.T) {
	store := newFakeStore()
	svc := newTestStudentService(t, store, threeStudents())
	store.getErr = errors.New("io")

	_, err := svc.Create(context.Background(), CreateStudentRequest{FirstName: "A", LastName: "B", Phone: "1"})
	assert.ErrorIs(t, err, appErrors.ErrStorageRead)
	assert.Zero(t, store.writes())
}

func TestCreateWriteFailureSurfaces(t *testing.T) {
	store := newFakeStore()
	svc := newTestStudentService(t, store, threeStudents())
	store.setErr = errors.New("full")

	_, err := svc.Create(context.Background(), CreateStudentRequest{FirstName: "A", LastName: "B", Phone: "1"})
	assert.ErrorIs(t, err, appErrors.ErrStorageWrite)
}

func TestCreateOnEmptyStoreStartsFromSeed(t *testing.T) {
	store := newFakeStore()
	svc := newTestStudentService(t, store, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateStudentRequest{FirstName: "A", LastName: "B", Phone: "1"})
	require.NoError(t, err)

	all, err := svc.LoadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
	assert.Equal(t, 1, store.writes())
}

func TestUpdateNameSplitScenario(t *testing.T) {
	store := newFakeStore()
	initial := []models.Student{{
		ID: "s1", Name: "Jane Doe", Phone: "555", Email: "j@x.io", DOB: "Jan 1", Class: "4th",
		RegistrationNo: "R-9", Guardian: &models.Guardian{Name: "G"}, ProfileImage: models.StringScalar("p.png"),
	}}
	svc := newTestStudentService(t, store, initial)
	ctx := context.Background()

	form, err := svc.Form(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Jane", form.FirstName)
	assert.Equal(t, "Doe", form.LastName)

	updated, err := svc.Update(ctx, "s1", UpdateStudentRequest{
		FirstName: "Janet", LastName: form.LastName, Phone: form.Phone,
		Email: form.Email, DOB: form.DOB, Class: "5th",
	})
	require.NoError(t, err)
	assert.Equal(t, "Janet Doe", updated.Name)

	all, err := svc.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Janet Doe", all[0].Name)
	assert.Equal(t, "5th", all[0].Class)
	assert.Equal(t, "R-9", all[0].RegistrationNo)
	assert.Equal(t, "G", all[0].Guardian.Name)
	assert.Equal(t, "p.png", all[0].ProfileImage.String())
}

func TestUpdateMissingID(t *testing.T) {
	store := newFakeStore()
	svc := newTestStudentService(t, store, threeStudents())

	_, err := svc.Update(context.Background(), "nope", UpdateStudentRequest{FirstName: "A", LastName: "B", Phone: "1"})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.Zero(t, store.writes())
}

func TestUpdateValidation(t *testing.T) {
	store := newFakeStore()
	svc := newTestStudentService(t, store, threeStudents())

	_, err := svc.Update(context.Background(), "1", UpdateStudentRequest{FirstName: "A"})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Contains(t, err.Error(), "lastName is required")
	assert.Contains(t, err.Error(), "phone is required")
	assert.Zero(t, store.writes())
}

func TestDeleteManyScenario(t *testing.T) {
	store := newFakeStore()
	svc := newTestStudentService(t, store, threeStudents())
	ctx := context.Background()

	remaining, err := svc.DeleteMany(ctx, []string{"1", "3"})
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, ids(remaining))

	all, err := svc.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, ids(all))
}

func TestDeleteManyMissingIDs(t *testing.T) {
	store := newFakeStore()
	svc := newTestStudentService(t, store, threeStudents())

	_, err := svc.DeleteMany(context.Background(), []string{"1", "9", "9", "8"})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.Contains(t, err.Error(), "9, 8")
	assert.Zero(t, store.writes())
}

func TestDeleteManyEmptySetIsNoop(t *testing.T) {
	store := newFakeStore()
	svc := newTestStudentService(t, store, threeStudents())

	remaining, err := svc.DeleteMany(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, remaining, 3)
	assert.Zero(t, store.writes())
}

func TestGetReadFailureSurfaces(t *testing.T) {
	store := newFakeStore()
	svc := newTestStudentService(t, store, threeStudents())
	store.getErr = errors.New("io")

	_, err := svc.Get(context.Background(), "1")
	assert.ErrorIs(t, err, appErrors.ErrStorageRead)
}

func TestGetMissing(t *testing.T) {
	svc := newTestStudentService(t, newFakeStore(), threeStudents())
	_, err := svc.Form(context.Background(), "x")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestConcurrentCreatesAreSerialized(t *testing.T) {
	store := newFakeStore()
	svc := newTestStudentService(t, store, []models.Student{})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Create(ctx, CreateStudentRequest{FirstName: "P", LastName: fmt.Sprint(i), Phone: "1"})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	all, err := svc.LoadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 20)
}

func TestStudentCountMetric(t *testing.T) {
	store := newFakeStore()
	metrics := NewMetricsService()
	repo := repository.NewStudentRepository(store, "students")
	svc := NewStudentService(repo, threeStudents, nil, metrics, nil)

	_, err := svc.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, metrics.Snapshot().Students)
}

func TestLooselyTypedRecordsStayUsable(t *testing.T) {
	store := newFakeStore()
	store.data["students"] = []byte(`[{"id":"a","name":"Ann Able","phone":5551234},{"id":"b","name":"Bo Bell","phone":"2"}]`)
	svc := newTestStudentService(t, store, nil)
	ctx := context.Background()

	all, err := svc.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids(all))
	assert.Equal(t, "5551234", all[0].Phone)

	remaining, err := svc.DeleteMany(ctx, []string{"b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids(remaining))
	assert.JSONEq(t, `[{"id":"a","name":"Ann Able","phone":5551234,"email":"","dob":"","class":""}]`,
		string(store.data["students"]))
}
