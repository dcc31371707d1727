package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"mockexam-service/internal/models"
	"mockexam-service/internal/ranking"
	"mockexam-service/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
)

// In-memory stores backing the service tests. TransitionStatus takes the
// same lock as every other mutation so the double-submit race tests exercise
// a real atomic claim.

type fakeAttemptStore struct {
	mu       sync.Mutex
	seq      int
	attempts map[string]*models.Attempt
}

func newFakeAttemptStore() *fakeAttemptStore {
	return &fakeAttemptStore{attempts: map[string]*models.Attempt{}}
}

func (f *fakeAttemptStore) Create(_ context.Context, attempt *models.Attempt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	attempt.ID = fmt.Sprintf("attempt-%d", f.seq)
	cp := *attempt
	cp.Answers = copyAnswers(attempt.Answers)
	f.attempts[attempt.ID] = &cp
	return nil
}

func (f *fakeAttemptStore) FindByID(_ context.Context, id string) (*models.Attempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.attempts[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *a
	cp.Answers = copyAnswers(a.Answers)
	return &cp, nil
}

func (f *fakeAttemptStore) FindInProgress(_ context.Context, userID, testID string) (*models.Attempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.attempts {
		if a.UserID == userID && a.TestID == testID && a.Status == models.AttemptInProgress {
			cp := *a
			cp.Answers = copyAnswers(a.Answers)
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeAttemptStore) SaveAnswer(_ context.Context, id, key string, entry models.AnswerEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.attempts[id]
	if !ok {
		return models.ErrNotFound
	}
	if a.Answers == nil {
		a.Answers = map[string]models.AnswerEntry{}
	}
	a.Answers[key] = entry
	a.LastActivity = time.Now()
	return nil
}

func (f *fakeAttemptStore) TransitionStatus(_ context.Context, id, from, to string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.attempts[id]
	if !ok || a.Status != from {
		return false, nil
	}
	a.Status = to
	return true, nil
}

func copyAnswers(in map[string]models.AnswerEntry) map[string]models.AnswerEntry {
	out := make(map[string]models.AnswerEntry, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

type fakeTestStore struct {
	mu    sync.Mutex
	seq   int
	tests map[string]*models.Test
}

func newFakeTestStore() *fakeTestStore {
	return &fakeTestStore{tests: map[string]*models.Test{}}
}

func (f *fakeTestStore) add(test *models.Test) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	if test.ID == "" {
		test.ID = fmt.Sprintf("test-%d", f.seq)
	}
	f.tests[test.ID] = test
	return test.ID
}

func (f *fakeTestStore) FindAll(_ context.Context, filter repository.TestFilter) ([]models.Test, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Test
	for _, t := range f.tests {
		if !filter.IncludeInactive && !t.IsActive {
			continue
		}
		if !filter.IncludePremium && t.IsPremium {
			continue
		}
		out = append(out, *t)
	}
	return out, nil
}

func (f *fakeTestStore) FindByID(_ context.Context, id string) (*models.Test, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tests[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTestStore) Create(_ context.Context, test *models.Test) error {
	f.add(test)
	return nil
}

func (f *fakeTestStore) Update(_ context.Context, id string, update bson.M) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tests[id]
	if !ok {
		return models.ErrNotFound
	}
	if v, ok := update["is_active"]; ok {
		t.IsActive = v.(bool)
	}
	return nil
}

func (f *fakeTestStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tests[id]; !ok {
		return models.ErrNotFound
	}
	delete(f.tests, id)
	return nil
}

func (f *fakeTestStore) IncrementAttempts(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.tests[id]; ok {
		t.AttemptsCount++
	}
	return nil
}

type fakeResultStore struct {
	mu       sync.Mutex
	seq      int
	results  map[string]*models.Result
	failNext bool
}

func newFakeResultStore() *fakeResultStore {
	return &fakeResultStore{results: map[string]*models.Result{}}
}

func (f *fakeResultStore) Create(_ context.Context, result *models.Result) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext {
		f.failNext = false
		return fmt.Errorf("simulated write failure")
	}
	f.seq++
	result.ID = fmt.Sprintf("result-%d", f.seq)
	cp := *result
	f.results[result.ID] = &cp
	return nil
}

func (f *fakeResultStore) FindByID(_ context.Context, id string) (*models.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.results[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeResultStore) FindByUser(_ context.Context, userID string) ([]models.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Result
	for _, r := range f.results {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeResultStore) FindByUserAndTest(_ context.Context, userID, testID string) ([]models.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Result
	for _, r := range f.results {
		if r.UserID == userID && r.TestID == testID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeResultStore) FindByTest(_ context.Context, testID string) ([]models.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Result
	for _, r := range f.results {
		if r.TestID == testID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeResultStore) FindRanked(_ context.Context, testID string, limit, skip int) ([]models.Result, error) {
	return f.FindByTest(context.Background(), testID)
}

func (f *fakeResultStore) FindUserStanding(_ context.Context, testID, userID string) (*models.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.results {
		if r.TestID == testID && r.UserID == userID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeResultStore) CountByTest(_ context.Context, testID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, r := range f.results {
		if r.TestID == testID {
			n++
		}
	}
	return n, nil
}

func (f *fakeResultStore) ApplyStandings(_ context.Context, standings []ranking.Standing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range standings {
		if r, ok := f.results[s.ResultID]; ok {
			rank := s.Rank
			percentile := s.Percentile
			r.Rank = &rank
			r.Percentile = &percentile
		}
	}
	return nil
}

type fakeUserStore struct {
	mu    sync.Mutex
	seq   int
	users map[string]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]*models.User{}}
}

func (f *fakeUserStore) add(user *models.User) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	if user.ID == "" {
		user.ID = fmt.Sprintf("user-%d", f.seq)
	}
	f.users[user.ID] = user
	return user.ID
}

func (f *fakeUserStore) Create(_ context.Context, user *models.User) error {
	f.mu.Lock()
	for _, u := range f.users {
		if u.Email == user.Email {
			f.mu.Unlock()
			return models.ErrDuplicateEmail
		}
	}
	f.mu.Unlock()
	f.add(user)
	return nil
}

func (f *fakeUserStore) FindByID(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeUserStore) Update(_ context.Context, id string, update bson.M) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return models.ErrNotFound
	}
	for k, v := range update {
		switch k {
		case "is_premium":
			u.IsPremium = v.(bool)
		case "premium_expires_at":
			t := v.(time.Time)
			u.PremiumExpiresAt = &t
		case "last_test_date":
			t := v.(time.Time)
			u.LastTestDate = &t
		case "tests_attempted":
			u.TestsAttempted = v.(int)
		case "stats":
			u.Stats = v.(models.UserStats)
		}
	}
	return nil
}

func (f *fakeUserStore) FindAll(_ context.Context) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.User
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUserStore) FindTopPerformers(_ context.Context, limit int) ([]models.User, error) {
	return f.FindAll(context.Background())
}

func (f *fakeUserStore) Count(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.users)), nil
}

func (f *fakeUserStore) CountWithBetterAverage(_ context.Context, average float64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, u := range f.users {
		if u.Stats.AverageScore > average {
			n++
		}
	}
	return n, nil
}
