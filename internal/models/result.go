package models

import "time"

// ResultAnswer records per-question correctness for one submitted attempt.
// Selected is NoSelection for skipped questions.
type ResultAnswer struct {
	SectionIndex  int     `bson:"section_index" json:"sectionIndex"`
	QuestionIndex int     `bson:"question_index" json:"questionIndex"`
	Selected      int     `bson:"selected" json:"selected"`
	IsCorrect     bool    `bson:"is_correct" json:"isCorrect"`
	TimeTaken     int     `bson:"time_taken" json:"timeTaken"`
	MarksAwarded  float64 `bson:"marks_awarded" json:"marksAwarded"`
}

type Score struct {
	TotalMarks       float64 `bson:"total_marks" json:"totalMarks"`
	ObtainedMarks    float64 `bson:"obtained_marks" json:"obtainedMarks"`
	Percentage       float64 `bson:"percentage" json:"percentage"`
	CorrectAnswers   int     `bson:"correct_answers" json:"correctAnswers"`
	WrongAnswers     int     `bson:"wrong_answers" json:"wrongAnswers"`
	SkippedQuestions int     `bson:"skipped_questions" json:"skippedQuestions"`
}

type SectionStat struct {
	SectionName    string  `bson:"section_name" json:"sectionName"`
	TotalQuestions int     `bson:"total_questions" json:"totalQuestions"`
	Attempted      int     `bson:"attempted" json:"attempted"`
	Correct        int     `bson:"correct" json:"correct"`
	Wrong          int     `bson:"wrong" json:"wrong"`
	Skipped        int     `bson:"skipped" json:"skipped"`
	Marks          float64 `bson:"marks" json:"marks"`
	Accuracy       float64 `bson:"accuracy" json:"accuracy"`
}

type TimeMetrics struct {
	TotalTime              int       `bson:"total_time" json:"totalTime"` // seconds
	AverageTimePerQuestion int       `bson:"average_time_per_question" json:"averageTimePerQuestion"`
	StartedAt              time.Time `bson:"started_at" json:"startedAt"`
	SubmittedAt            time.Time `bson:"submitted_at" json:"submittedAt"`
}

// Result is immutable once written, except for Rank and Percentile which the
// ranking recalculation overwrites after every submission for the same test.
type Result struct {
	ID          string         `bson:"_id,omitempty" json:"id"`
	UserID      string         `bson:"user_id" json:"userId"`
	TestID      string         `bson:"test_id" json:"testId"`
	AttemptID   string         `bson:"attempt_id" json:"attemptId"`
	Answers     []ResultAnswer `bson:"answers" json:"answers"`
	Score       Score          `bson:"score" json:"score"`
	SectionWise []SectionStat  `bson:"section_wise" json:"sectionWise"`
	TimeMetrics TimeMetrics    `bson:"time_metrics" json:"timeMetrics"`
	Rank        *int           `bson:"rank" json:"rank"`
	Percentile  *float64       `bson:"percentile" json:"percentile"`
	CompletedAt time.Time      `bson:"completed_at" json:"completedAt"`
}

// Accuracy is correct over attempted as a percentage, 0 when nothing was
// attempted.
func (r *Result) Accuracy() float64 {
	attempted := r.Score.CorrectAnswers + r.Score.WrongAnswers
	if attempted == 0 {
		return 0
	}
	return float64(r.Score.CorrectAnswers) / float64(attempted) * 100
}
