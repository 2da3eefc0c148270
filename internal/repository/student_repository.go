package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/student-roster/internal/models"
	appErrors "github.com/noah-isme/student-roster/pkg/errors"
)

// StudentRepository encodes the whole roster as one JSON array stored under a
// single record key. Array entries that cannot be decoded as a student are
// held back from callers and appended unchanged on the next Save.
type StudentRepository struct {
	store  RecordStore
	key    string
	logger *zap.Logger

	mu          sync.Mutex
	quarantined []json.RawMessage
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(store RecordStore, key string) *StudentRepository {
	if key == "" {
		key = "students"
	}
	return &StudentRepository{store: store, key: key, logger: zap.NewNop()}
}

// WithLogger sets the logger used to report skipped entries.
func (r *StudentRepository) WithLogger(logger *zap.Logger) *StudentRepository {
	if logger != nil {
		r.logger = logger
	}
	return r
}

// Quarantined returns copies of the entries the last Load could not decode.
func (r *StudentRepository) Quarantined() []json.RawMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]json.RawMessage, len(r.quarantined))
	for i, entry := range r.quarantined {
		out[i] = append(json.RawMessage(nil), entry...)
	}
	return out
}

// Key returns the record key holding the collection.
func (r *StudentRepository) Key() string {
	return r.key
}

// Load reads and decodes the collection. It returns appErrors.ErrKeyNotFound
// when nothing has been stored yet; a stored "null" counts as nothing. Null
// array entries are skipped. Only a value that is not a JSON array fails.
func (r *StudentRepository) Load(ctx context.Context) ([]models.Student, error) {
	raw, err := r.store.Get(ctx, r.key)
	if err != nil {
		return nil, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, appErrors.ErrKeyNotFound
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.key, err)
	}
	students := make([]models.Student, 0, len(entries))
	var quarantined []json.RawMessage
	for i, entry := range entries {
		entry = bytes.TrimSpace(entry)
		if len(entry) == 0 || bytes.Equal(entry, []byte("null")) {
			continue
		}
		var s models.Student
		if err := json.Unmarshal(entry, &s); err != nil {
			r.logger.Warn("skipping undecodable student entry",
				zap.String("key", r.key), zap.Int("index", i), zap.Error(err))
			quarantined = append(quarantined, entry)
			continue
		}
		students = append(students, s)
	}

	r.mu.Lock()
	r.quarantined = quarantined
	r.mu.Unlock()
	return students, nil
}

// Save replaces the stored collection.
func (r *StudentRepository) Save(ctx context.Context, students []models.Student) error {
	if students == nil {
		students = []models.Student{}
	}
	entries := make([]json.RawMessage, 0, len(students))
	for i := range students {
		entry, err := json.Marshal(students[i])
		if err != nil {
			return fmt.Errorf("encode %s[%d]: %w", r.key, i, err)
		}
		entries = append(entries, entry)
	}
	r.mu.Lock()
	entries = append(entries, r.quarantined...)
	r.mu.Unlock()

	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode %s: %w", r.key, err)
	}
	return r.store.Set(ctx, r.key, raw)
}
