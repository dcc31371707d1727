package models

import (
	"fmt"
	"time"
)

type Question struct {
	Question      string   `bson:"question" json:"question"`
	Options       []string `bson:"options" json:"options"`
	CorrectAnswer int      `bson:"correct_answer" json:"correctAnswer"`
	Explanation   string   `bson:"explanation,omitempty" json:"explanation,omitempty"`
	Marks         float64  `bson:"marks" json:"marks"`
}

type Section struct {
	Name       string     `bson:"name" json:"name"`
	Questions  []Question `bson:"questions" json:"questions"`
	TotalMarks float64    `bson:"total_marks" json:"totalMarks"`
	Duration   int        `bson:"duration" json:"duration"` // minutes
}

type NegativeMarking struct {
	Enabled   bool    `bson:"enabled" json:"enabled"`
	Deduction float64 `bson:"deduction" json:"deduction"`
}

type Test struct {
	ID              string          `bson:"_id,omitempty" json:"id"`
	Title           string          `bson:"title" json:"title"`
	Description     string          `bson:"description,omitempty" json:"description,omitempty"`
	Type            string          `bson:"type" json:"type"`         // full-length, sectional, topic-wise
	Category        string          `bson:"category" json:"category"` // IMA/INA/AFA, OTA
	Sections        []Section       `bson:"sections" json:"sections"`
	TotalMarks      float64         `bson:"total_marks" json:"totalMarks"`
	Duration        int             `bson:"duration" json:"duration"` // minutes
	NegativeMarking NegativeMarking `bson:"negative_marking" json:"negativeMarking"`
	IsActive        bool            `bson:"is_active" json:"isActive"`
	IsPremium       bool            `bson:"is_premium" json:"isPremium"`
	AttemptsCount   int             `bson:"attempts_count" json:"attemptsCount"`
	CreatedAt       time.Time       `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time       `bson:"updated_at" json:"updatedAt"`
}

// HiddenAnswer marks the correct-answer index on views served to a user who
// is still taking (or has never taken) the test.
const HiddenAnswer = -1

func (t *Test) TotalQuestions() int {
	total := 0
	for _, s := range t.Sections {
		total += len(s.Questions)
	}
	return total
}

// WithoutAnswers returns a deep copy with correct answers and explanations
// stripped, safe to serve while an attempt is live.
func (t *Test) WithoutAnswers() *Test {
	out := *t
	out.Sections = make([]Section, len(t.Sections))
	for i, s := range t.Sections {
		sec := s
		sec.Questions = make([]Question, len(s.Questions))
		for j, q := range s.Questions {
			q.CorrectAnswer = HiddenAnswer
			q.Explanation = ""
			sec.Questions[j] = q
		}
		out.Sections[i] = sec
	}
	return &out
}

// Validate checks authoring invariants before a test is persisted.
func (t *Test) Validate() error {
	if t.Title == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if t.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive", ErrValidation)
	}
	if len(t.Sections) == 0 {
		return fmt.Errorf("%w: at least one section is required", ErrValidation)
	}
	if t.NegativeMarking.Enabled && (t.NegativeMarking.Deduction < 0 || t.NegativeMarking.Deduction > 1) {
		return fmt.Errorf("%w: negative marking deduction must be within [0, 1]", ErrValidation)
	}
	for si, s := range t.Sections {
		if s.Name == "" {
			return fmt.Errorf("%w: section %d has no name", ErrValidation, si)
		}
		if len(s.Questions) == 0 {
			return fmt.Errorf("%w: section %q has no questions", ErrValidation, s.Name)
		}
		for qi, q := range s.Questions {
			if q.Question == "" {
				return fmt.Errorf("%w: section %q question %d has no text", ErrValidation, s.Name, qi)
			}
			if len(q.Options) < 2 || len(q.Options) > 4 {
				return fmt.Errorf("%w: section %q question %d must have 2-4 options, has %d", ErrValidation, s.Name, qi, len(q.Options))
			}
			if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
				return fmt.Errorf("%w: section %q question %d correct answer index %d out of range", ErrValidation, s.Name, qi, q.CorrectAnswer)
			}
			if q.Marks <= 0 {
				return fmt.Errorf("%w: section %q question %d marks must be positive", ErrValidation, s.Name, qi)
			}
		}
	}
	return nil
}

// Normalize fills derived totals from question marks so stored documents are
// self-consistent even when authors omit them.
func (t *Test) Normalize() {
	total := 0.0
	for i := range t.Sections {
		secTotal := 0.0
		for j := range t.Sections[i].Questions {
			if t.Sections[i].Questions[j].Marks == 0 {
				t.Sections[i].Questions[j].Marks = 1
			}
			secTotal += t.Sections[i].Questions[j].Marks
		}
		t.Sections[i].TotalMarks = secTotal
		total += secTotal
	}
	t.TotalMarks = total
}
