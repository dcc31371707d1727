package models

import (
	"fmt"
	"time"
)

const (
	AttemptInProgress = "in-progress"
	AttemptCompleted  = "completed"
	AttemptAbandoned  = "abandoned"
)

// AnswerEntry is one saved answer inside an attempt's sparse answer map.
// Selected is the chosen option index, or NoSelection when the user cleared
// the question without picking anything.
type AnswerEntry struct {
	Selected  int  `bson:"selected" json:"selected"`
	TimeTaken int  `bson:"time_taken" json:"timeTaken"` // seconds
	Flagged   bool `bson:"flagged" json:"flagged"`
}

const NoSelection = -1

type Attempt struct {
	ID           string                 `bson:"_id,omitempty" json:"id"`
	UserID       string                 `bson:"user_id" json:"userId"`
	TestID       string                 `bson:"test_id" json:"testId"`
	StartedAt    time.Time              `bson:"started_at" json:"startedAt"`
	ExpiresAt    time.Time              `bson:"expires_at" json:"expiresAt"`
	Status       string                 `bson:"status" json:"status"`
	Answers      map[string]AnswerEntry `bson:"current_answers" json:"currentAnswers"`
	LastActivity time.Time              `bson:"last_activity" json:"lastActivity"`
}

// AnswerKey flattens a (section, question) position into the map key used by
// the answers document field.
func AnswerKey(sectionIndex, questionIndex int) string {
	return fmt.Sprintf("%d-%d", sectionIndex, questionIndex)
}

func (a *Attempt) Expired(now time.Time) bool {
	return now.After(a.ExpiresAt)
}
