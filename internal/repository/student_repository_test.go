package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/student-roster/internal/models"
	appErrors "github.com/noah-isme/student-roster/pkg/errors"
)

func TestStudentRepositoryLoadAbsent(t *testing.T) {
	repo := NewStudentRepository(NewMemoryStore(), "")
	assert.Equal(t, "students", repo.Key())

	_, err := repo.Load(context.Background())
	assert.ErrorIs(t, err, appErrors.ErrKeyNotFound)
}

func TestStudentRepositoryLoadNullIsAbsent(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), "students", []byte(" null ")))

	_, err := NewStudentRepository(store, "students").Load(context.Background())
	assert.ErrorIs(t, err, appErrors.ErrKeyNotFound)
}

func TestStudentRepositoryLoadSkipsNullEntries(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), "students",
		[]byte(`[{"id":"1","name":"A B"},null,{"id":"2","name":"C"}]`)))

	students, err := NewStudentRepository(store, "students").Load(context.Background())
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, "1", students[0].ID)
	assert.Equal(t, "2", students[1].ID)
}

func TestStudentRepositoryLoadRejectsGarbage(t *testing.T) {
	ctx := context.Background()
	for _, raw := range []string{`{"id":"1"}`, `not json`, `"students"`} {
		store := NewMemoryStore()
		require.NoError(t, store.Set(ctx, "students", []byte(raw)))

		_, err := NewStudentRepository(store, "students").Load(ctx)
		require.Error(t, err, raw)
		assert.NotErrorIs(t, err, appErrors.ErrKeyNotFound, raw)
	}
}

func TestStudentRepositorySaveEmptyCollection(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	repo := NewStudentRepository(store, "students")

	require.NoError(t, repo.Save(ctx, nil))
	raw, err := store.Get(ctx, "students")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(raw))

	students, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, students)
}

func TestStudentRepositoryRoundTripKeepsUnknownKeys(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	raw := `[{"id":"1","name":"Jane Doe","phone":"1","email":"e","dob":"d","class":"4th","age":12,"house":"blue"}]`
	require.NoError(t, store.Set(ctx, "students", []byte(raw)))
	repo := NewStudentRepository(store, "students")

	students, err := repo.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, students))

	out, err := store.Get(ctx, "students")
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(out))
}

func TestStudentRepositorySaveKeepsOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewStudentRepository(NewMemoryStore(), "roster")
	in := []models.Student{{ID: "b"}, {ID: "a"}, {ID: "c"}}

	require.NoError(t, repo.Save(ctx, in))
	out, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, []string{"b", "a", "c"}, []string{out[0].ID, out[1].ID, out[2].ID})
}

func TestStudentRepositoryLoadAcceptsNumericText(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	raw := `[{"id":7,"name":"Ann Able","phone":5551234,"email":null,"dob":"d","class":true},` +
		`{"id":"b","name":"Bo Bell","phone":"2","guardian":{"name":"Gus","phone":5550000}}]`
	require.NoError(t, store.Set(ctx, "students", []byte(raw)))
	repo := NewStudentRepository(store, "students")

	students, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, "7", students[0].ID)
	assert.Equal(t, "5551234", students[0].Phone)
	assert.Equal(t, "", students[0].Email)
	assert.Equal(t, "true", students[0].Class)
	assert.Equal(t, "5550000", students[1].Guardian.Phone)
	assert.Empty(t, repo.Quarantined())
}

func TestStudentRepositoryKeepsUndecodableEntries(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	raw := `[{"id":"a","name":"Ann Able","phone":{"home":"1"}},"text",{"id":"b","name":"Bo Bell","phone":"2"}]`
	require.NoError(t, store.Set(ctx, "students", []byte(raw)))
	repo := NewStudentRepository(store, "students")

	students, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "b", students[0].ID)
	require.Len(t, repo.Quarantined(), 2)

	students[0].Name = "Bo Bright"
	require.NoError(t, repo.Save(ctx, students))

	out, err := store.Get(ctx, "students")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"b","name":"Bo Bright","phone":"2","email":"","dob":"","class":""},`+
		`{"id":"a","name":"Ann Able","phone":{"home":"1"}},"text"]`, string(out))
}

func TestStudentRepositoryRewriteKeepsStoredShape(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	raw := `[{"id":"a","name":"Ann Able","phone":5551234,"email":null,"dob":"","class":"",` +
		`"age":"","yearsInSchool":null,"registrationNo":"","guardian":null,"familyMembers":[]}]`
	require.NoError(t, store.Set(ctx, "students", []byte(raw)))
	repo := NewStudentRepository(store, "students")

	students, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, students, 1)
	require.NoError(t, repo.Save(ctx, students))

	out, err := store.Get(ctx, "students")
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(out))

	students[0].Name = "Ann Archer"
	students[0].Email = "ann@example.com"
	require.NoError(t, repo.Save(ctx, students))
	out, err = store.Get(ctx, "students")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"a","name":"Ann Archer","phone":5551234,"email":"ann@example.com","dob":"","class":"",`+
		`"age":"","yearsInSchool":null,"registrationNo":"","guardian":null,"familyMembers":[]}]`, string(out))
}
