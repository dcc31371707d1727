package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"mockexam-service/internal/event"
	"mockexam-service/internal/models"
	"mockexam-service/internal/ranking"
	"mockexam-service/internal/scoring"

	"go.mongodb.org/mongo-driver/bson"
)

// AttemptService owns the attempt lifecycle: start (with entitlement and
// quota gates), incremental answer capture, lazy expiry, and the
// score-on-submit flow that feeds the result ledger and the ranking
// recalculation.
type AttemptService struct {
	Attempts    AttemptStore
	Tests       TestStore
	Results     ResultStore
	Users       UserStore
	Events      Publisher
	Leaderboard LeaderboardInvalidator

	now func() time.Time
}

func NewAttemptService(attempts AttemptStore, tests TestStore, results ResultStore, users UserStore) *AttemptService {
	return &AttemptService{
		Attempts: attempts,
		Tests:    tests,
		Results:  results,
		Users:    users,
		now:      time.Now,
	}
}

type SaveAnswerInput struct {
	SectionIndex  int  `json:"sectionIndex" binding:"min=0"`
	QuestionIndex int  `json:"questionIndex" binding:"min=0"`
	Selected      *int `json:"selectedAnswer"`
	TimeTaken     int  `json:"timeTaken"`
	Flagged       bool `json:"flagged"`
}

// Start opens a new attempt, or resumes the caller's live one for the same
// test. Free-tier users get one test per rolling 7-day window.
func (s *AttemptService) Start(ctx context.Context, userID, testID string) (*models.Attempt, bool, error) {
	user, err := s.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	test, err := s.Tests.FindByID(ctx, testID)
	if err != nil {
		return nil, false, err
	}
	if !test.IsActive {
		return nil, false, models.ErrNotFound
	}

	now := s.now()
	if test.IsPremium && !user.Premium(now) {
		return nil, false, fmt.Errorf("%w: premium test requires an active subscription", models.ErrEntitlementDenied)
	}
	if !user.CanTakeFreeTest(now) {
		return nil, false, fmt.Errorf("%w: free users can take one test per week", models.ErrEntitlementDenied)
	}

	existing, err := s.Attempts.FindInProgress(ctx, userID, testID)
	if err == nil {
		existing, err = s.expireIfNeeded(ctx, existing)
		if err != nil {
			return nil, false, err
		}
		if existing.Status == models.AttemptInProgress {
			return existing, true, nil
		}
		// fell to abandoned; start fresh below
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, false, err
	}

	attempt := &models.Attempt{
		UserID:       userID,
		TestID:       testID,
		StartedAt:    now,
		ExpiresAt:    now.Add(time.Duration(test.Duration) * time.Minute),
		Status:       models.AttemptInProgress,
		Answers:      map[string]models.AnswerEntry{},
		LastActivity: now,
	}
	if err := s.Attempts.Create(ctx, attempt); err != nil {
		return nil, false, err
	}
	if err := s.Tests.IncrementAttempts(ctx, testID); err != nil {
		log.Printf("Failed to bump attempts count for test %s: %v", testID, err)
	}
	s.publish(event.AttemptStarted, map[string]interface{}{
		"attempt_id": attempt.ID,
		"test_id":    testID,
		"user_id":    userID,
		"expires_at": attempt.ExpiresAt,
	})
	return attempt, false, nil
}

// Get returns the caller's attempt, applying lazy expiry first: an
// in-progress attempt past its deadline is flipped to abandoned before it is
// returned.
func (s *AttemptService) Get(ctx context.Context, userID, attemptID string) (*models.Attempt, error) {
	attempt, err := s.findOwned(ctx, userID, attemptID)
	if err != nil {
		return nil, err
	}
	return s.expireIfNeeded(ctx, attempt)
}

// SaveAnswer overwrites one question's entry (last write wins). No scoring
// happens here.
func (s *AttemptService) SaveAnswer(ctx context.Context, userID, attemptID string, in SaveAnswerInput) error {
	attempt, err := s.findOwned(ctx, userID, attemptID)
	if err != nil {
		return err
	}
	if attempt.Status == models.AttemptCompleted {
		return models.ErrAlreadySubmitted
	}
	if attempt.Status == models.AttemptAbandoned || attempt.Expired(s.now()) {
		if _, err := s.expireIfNeeded(ctx, attempt); err != nil {
			return err
		}
		return models.ErrExpired
	}

	selected := models.NoSelection
	if in.Selected != nil {
		selected = *in.Selected
	}
	entry := models.AnswerEntry{
		Selected:  selected,
		TimeTaken: in.TimeTaken,
		Flagged:   in.Flagged,
	}
	return s.Attempts.SaveAnswer(ctx, attemptID, models.AnswerKey(in.SectionIndex, in.QuestionIndex), entry)
}

// Submit claims the attempt with a conditional status write, scores the
// answer snapshot, persists the result, and triggers the full ranking
// recompute for the test. The loser of a concurrent double-submit gets
// ErrAlreadySubmitted. If the result write fails, the claim is rolled back
// so the client can retry the whole submit.
func (s *AttemptService) Submit(ctx context.Context, userID, attemptID string) (*models.Result, error) {
	attempt, err := s.findOwned(ctx, userID, attemptID)
	if err != nil {
		return nil, err
	}
	switch attempt.Status {
	case models.AttemptCompleted:
		return nil, models.ErrAlreadySubmitted
	case models.AttemptAbandoned:
		return nil, models.ErrExpired
	}

	claimed, err := s.Attempts.TransitionStatus(ctx, attemptID, models.AttemptInProgress, models.AttemptCompleted)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, models.ErrAlreadySubmitted
	}

	test, err := s.Tests.FindByID(ctx, attempt.TestID)
	if err != nil {
		s.rollbackClaim(ctx, attemptID)
		return nil, err
	}

	now := s.now()
	outcome := scoring.Evaluate(test, attempt.Answers)

	totalTime := int(now.Sub(attempt.StartedAt).Seconds())
	if totalTime < 0 {
		totalTime = 0
	}
	avgTime := 0
	if attempted := outcome.Score.CorrectAnswers + outcome.Score.WrongAnswers; attempted > 0 {
		avgTime = totalTime / attempted
	}

	result := &models.Result{
		UserID:      userID,
		TestID:      attempt.TestID,
		AttemptID:   attemptID,
		Answers:     outcome.Answers,
		Score:       outcome.Score,
		SectionWise: outcome.SectionWise,
		TimeMetrics: models.TimeMetrics{
			TotalTime:              totalTime,
			AverageTimePerQuestion: avgTime,
			StartedAt:              attempt.StartedAt,
			SubmittedAt:            now,
		},
		CompletedAt: now,
	}
	if err := s.Results.Create(ctx, result); err != nil {
		s.rollbackClaim(ctx, attemptID)
		return nil, err
	}

	if err := s.recalculateRanks(ctx, attempt.TestID); err != nil {
		// The result is durable; stale standings self-correct on the next
		// submission for this test.
		log.Printf("Rank recalculation failed for test %s: %v", attempt.TestID, err)
	} else if ranked, err := s.Results.FindByID(ctx, result.ID); err == nil {
		result = ranked
	}

	if err := s.applyUserStats(ctx, userID, outcome.Score.ObtainedMarks, totalTime, now); err != nil {
		log.Printf("Failed to update stats for user %s: %v", userID, err)
	}

	if s.Leaderboard != nil {
		s.Leaderboard.Invalidate(ctx, attempt.TestID)
	}
	s.publish(event.AttemptSubmitted, map[string]interface{}{
		"attempt_id":     attemptID,
		"test_id":        attempt.TestID,
		"user_id":        userID,
		"result_id":      result.ID,
		"obtained_marks": result.Score.ObtainedMarks,
	})
	return result, nil
}

func (s *AttemptService) findOwned(ctx context.Context, userID, attemptID string) (*models.Attempt, error) {
	attempt, err := s.Attempts.FindByID(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.UserID != userID {
		return nil, models.ErrForbidden
	}
	return attempt, nil
}

func (s *AttemptService) expireIfNeeded(ctx context.Context, attempt *models.Attempt) (*models.Attempt, error) {
	if attempt.Status != models.AttemptInProgress || !attempt.Expired(s.now()) {
		return attempt, nil
	}
	// Best effort: if another reader already flipped it the transition is a
	// no-op. Both writers agree on the target state.
	if _, err := s.Attempts.TransitionStatus(ctx, attempt.ID, models.AttemptInProgress, models.AttemptAbandoned); err != nil {
		return nil, err
	}
	attempt.Status = models.AttemptAbandoned
	return attempt, nil
}

func (s *AttemptService) rollbackClaim(ctx context.Context, attemptID string) {
	if _, err := s.Attempts.TransitionStatus(ctx, attemptID, models.AttemptCompleted, models.AttemptInProgress); err != nil {
		log.Printf("Failed to roll back submit claim for attempt %s: %v", attemptID, err)
	}
}

// recalculateRanks is the full recompute pass: every result of the test is
// re-sorted and rewritten. O(N log N) per submission, accepted at this scale.
func (s *AttemptService) recalculateRanks(ctx context.Context, testID string) error {
	results, err := s.Results.FindByTest(ctx, testID)
	if err != nil {
		return err
	}
	entries := make([]ranking.Entry, len(results))
	for i, r := range results {
		entries[i] = ranking.Entry{
			ResultID:      r.ID,
			ObtainedMarks: r.Score.ObtainedMarks,
			TotalTime:     r.TimeMetrics.TotalTime,
		}
	}
	return s.Results.ApplyStandings(ctx, ranking.Compute(entries))
}

func (s *AttemptService) applyUserStats(ctx context.Context, userID string, obtained float64, totalTime int, now time.Time) error {
	user, err := s.Users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	stats := user.Stats
	stats.TotalTests++
	stats.TotalTimeSpent += totalTime
	stats.AverageScore = (stats.AverageScore*float64(stats.TotalTests-1) + obtained) / float64(stats.TotalTests)
	if obtained > stats.BestScore {
		stats.BestScore = obtained
	}
	return s.Users.Update(ctx, userID, bson.M{
		"tests_attempted": user.TestsAttempted + 1,
		"last_test_date":  now,
		"stats":           stats,
	})
}

func (s *AttemptService) publish(eventType string, payload interface{}) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Publish(eventType, payload); err != nil {
		log.Printf("Failed to publish %s: %v", eventType, err)
	}
}
