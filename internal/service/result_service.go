package service

import (
	"context"
	"fmt"

	"mockexam-service/internal/models"
)

type ResultService struct {
	Results ResultStore
	Tests   TestStore
}

func NewResultService(results ResultStore, tests TestStore) *ResultService {
	return &ResultService{Results: results, Tests: tests}
}

func (s *ResultService) ListByUser(ctx context.Context, userID string) ([]models.Result, error) {
	return s.Results.FindByUser(ctx, userID)
}

func (s *ResultService) ListByUserAndTest(ctx context.Context, userID, testID string) ([]models.Result, error) {
	return s.Results.FindByUserAndTest(ctx, userID, testID)
}

func (s *ResultService) Get(ctx context.Context, userID, resultID string) (*models.Result, error) {
	result, err := s.Results.FindByID(ctx, resultID)
	if err != nil {
		return nil, err
	}
	if result.UserID != userID {
		return nil, models.ErrForbidden
	}
	return result, nil
}

// QuestionReview pairs one question with how the user answered it, correct
// answer and explanation included. Premium-only surface.
type QuestionReview struct {
	Section       string   `json:"section"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	UserAnswer    int      `json:"userAnswer"`
	IsCorrect     bool     `json:"isCorrect"`
	Explanation   string   `json:"explanation,omitempty"`
	MarksAwarded  float64  `json:"marksAwarded"`
	TimeTaken     int      `json:"timeTaken"`
}

type Insights struct {
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	Recommendations []string `json:"recommendations"`
}

type DetailedAnalysis struct {
	Result           *models.Result   `json:"result"`
	Accuracy         float64          `json:"accuracy"`
	QuestionAnalysis []QuestionReview `json:"questionAnalysis"`
	Insights         Insights         `json:"insights"`
}

// Analyze walks the full test (answers included) against the stored result
// and derives the per-question review plus coarse performance insights.
func (s *ResultService) Analyze(ctx context.Context, userID, resultID string) (*DetailedAnalysis, error) {
	result, err := s.Get(ctx, userID, resultID)
	if err != nil {
		return nil, err
	}
	test, err := s.Tests.FindByID(ctx, result.TestID)
	if err != nil {
		return nil, err
	}

	byKey := make(map[string]models.ResultAnswer, len(result.Answers))
	for _, a := range result.Answers {
		byKey[models.AnswerKey(a.SectionIndex, a.QuestionIndex)] = a
	}

	analysis := &DetailedAnalysis{Result: result, Accuracy: result.Accuracy()}
	for si, section := range test.Sections {
		for qi, q := range section.Questions {
			review := QuestionReview{
				Section:       section.Name,
				Question:      q.Question,
				Options:       q.Options,
				CorrectAnswer: q.CorrectAnswer,
				UserAnswer:    models.NoSelection,
				Explanation:   q.Explanation,
			}
			if a, ok := byKey[models.AnswerKey(si, qi)]; ok {
				review.UserAnswer = a.Selected
				review.IsCorrect = a.IsCorrect
				review.MarksAwarded = a.MarksAwarded
				review.TimeTaken = a.TimeTaken
			}
			analysis.QuestionAnalysis = append(analysis.QuestionAnalysis, review)
		}
	}

	for _, sec := range result.SectionWise {
		switch {
		case sec.Accuracy >= 70:
			analysis.Insights.Strengths = append(analysis.Insights.Strengths,
				fmt.Sprintf("Strong performance in %s with %.2f%% accuracy", sec.SectionName, sec.Accuracy))
		case sec.Accuracy < 50:
			analysis.Insights.Weaknesses = append(analysis.Insights.Weaknesses,
				fmt.Sprintf("Need improvement in %s (%.2f%% accuracy)", sec.SectionName, sec.Accuracy))
			analysis.Insights.Recommendations = append(analysis.Insights.Recommendations,
				fmt.Sprintf("Focus more on %s practice", sec.SectionName))
		}
	}
	if result.TimeMetrics.AverageTimePerQuestion > 90 {
		analysis.Insights.Recommendations = append(analysis.Insights.Recommendations,
			"Work on time management - try to solve questions faster")
	}
	if analysis.Accuracy < 60 {
		analysis.Insights.Recommendations = append(analysis.Insights.Recommendations,
			"Focus on understanding concepts rather than speed")
	}
	return analysis, nil
}
