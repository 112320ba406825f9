package quiz

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// memoryStore keeps everything in maps behind one mutex. It backs tests and
// the zero-config dev mode; semantics (CAS included) match the SQL store.
type memoryStore struct {
	mu       sync.RWMutex
	quizzes  map[string]Quiz
	attempts map[string]Attempt
	rubrics  map[string]Rubric
}

func NewInMemoryStore() Store {
	return &memoryStore{
		quizzes:  map[string]Quiz{},
		attempts: map[string]Attempt{},
		rubrics:  map[string]Rubric{},
	}
}

func (m *memoryStore) PutQuiz(_ context.Context, q Quiz) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quizzes[q.ID] = q
	return nil
}

func (m *memoryStore) GetQuiz(_ context.Context, id string) (Quiz, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q, ok := m.quizzes[id]
	if !ok || q.DeletedAt != nil {
		return Quiz{}, fmt.Errorf("quiz %s: %w", id, ErrNotFound)
	}
	return q, nil
}

func (m *memoryStore) SoftDeleteQuiz(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.quizzes[id]
	if !ok {
		return fmt.Errorf("quiz %s: %w", id, ErrNotFound)
	}
	now := time.Now().Unix()
	q.DeletedAt = &now
	m.quizzes[id] = q
	return nil
}

func (m *memoryStore) CreateAttempt(_ context.Context, a Attempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, other := range m.attempts {
		if other.QuizID == a.QuizID && other.UserID == a.UserID && other.Status == StatusInProgress {
			return ErrAttemptAlreadyActive
		}
	}
	m.attempts[a.ID] = a
	return nil
}

func (m *memoryStore) GetAttempt(_ context.Context, id string) (Attempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.attempts[id]
	if !ok {
		return Attempt{}, fmt.Errorf("attempt %s: %w", id, ErrNotFound)
	}
	return cloneAttempt(a), nil
}

func (m *memoryStore) UpdateAttempt(_ context.Context, a Attempt) (Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.attempts[a.ID]
	if !ok {
		return Attempt{}, fmt.Errorf("attempt %s: %w", a.ID, ErrNotFound)
	}
	if cur.Revision != a.Revision {
		return Attempt{}, ErrConflict
	}
	a.Revision++
	m.attempts[a.ID] = cloneAttempt(a)
	return a, nil
}

func (m *memoryStore) ListAttempts(_ context.Context, opts AttemptListOpts) ([]Attempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Attempt
	for _, a := range m.attempts {
		if opts.QuizID != "" && a.QuizID != opts.QuizID {
			continue
		}
		if opts.UserID != "" && a.UserID != opts.UserID {
			continue
		}
		if opts.Status != "" && string(a.Status) != opts.Status {
			continue
		}
		out = append(out, cloneAttempt(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt > out[j].StartedAt })
	if opts.Offset > 0 {
		if opts.Offset >= len(out) {
			return nil, nil
		}
		out = out[opts.Offset:]
	}
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (m *memoryStore) CountAttempts(_ context.Context, quizID, userID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, a := range m.attempts {
		if a.QuizID == quizID && a.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (m *memoryStore) HasActiveAttempt(_ context.Context, quizID, userID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.attempts {
		if a.QuizID == quizID && a.UserID == userID && a.Status == StatusInProgress {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryStore) HasAttempts(_ context.Context, quizID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.attempts {
		if a.QuizID == quizID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryStore) PutRubric(_ context.Context, r Rubric) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rubrics[r.ID] = r
	return nil
}

func (m *memoryStore) GetRubric(_ context.Context, id string) (Rubric, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rubrics[id]
	if !ok {
		return Rubric{}, fmt.Errorf("rubric %s: %w", id, ErrNotFound)
	}
	return r, nil
}

func (m *memoryStore) ListRubrics(_ context.Context, organizationID string) ([]Rubric, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Rubric
	for _, r := range m.rubrics {
		if organizationID == "" || r.OrganizationID == organizationID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func cloneAttempt(a Attempt) Attempt {
	out := a
	out.Answers = append([]AnswerRecord(nil), a.Answers...)
	return out
}
