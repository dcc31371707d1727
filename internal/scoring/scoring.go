// Package scoring evaluates a finished attempt against its test definition.
// Evaluate is pure: identical inputs always produce identical outcomes, and
// nothing in here reads the clock or the database.
package scoring

import (
	"math"

	"mockexam-service/internal/models"
)

// Outcome carries everything the result document needs: the aggregate score,
// per-section stats in section order, and the per-question answer detail in
// declaration order.
type Outcome struct {
	Score       models.Score
	SectionWise []models.SectionStat
	Answers     []models.ResultAnswer
}

// Evaluate scores the sparse answer map against the test.
//
// Marking rules: a correct selection earns the question's marks, a wrong
// selection loses marks*deduction when negative marking is enabled, and a
// missing or cleared selection is skipped and worth nothing. The aggregate
// obtained marks are floored at zero after all sections are accumulated;
// section subtotals are left as computed, so a section's marks can be
// negative even when the total shows zero. That asymmetry matches the
// product's published behavior and must not be "fixed" here.
func Evaluate(test *models.Test, answers map[string]models.AnswerEntry) Outcome {
	var (
		score       models.Score
		sectionWise []models.SectionStat
		detail      []models.ResultAnswer
	)

	for si, section := range test.Sections {
		stat := models.SectionStat{
			SectionName:    section.Name,
			TotalQuestions: len(section.Questions),
		}

		for qi, q := range section.Questions {
			score.TotalMarks += q.Marks

			entry, answered := answers[models.AnswerKey(si, qi)]
			selected := models.NoSelection
			timeTaken := 0
			if answered {
				selected = entry.Selected
				timeTaken = entry.TimeTaken
			}

			ans := models.ResultAnswer{
				SectionIndex:  si,
				QuestionIndex: qi,
				Selected:      selected,
				TimeTaken:     timeTaken,
			}

			switch {
			case selected == models.NoSelection:
				score.SkippedQuestions++
				stat.Skipped++
			case selected == q.CorrectAnswer:
				score.CorrectAnswers++
				stat.Attempted++
				stat.Correct++
				stat.Marks += q.Marks
				score.ObtainedMarks += q.Marks
				ans.IsCorrect = true
				ans.MarksAwarded = q.Marks
			default:
				score.WrongAnswers++
				stat.Attempted++
				stat.Wrong++
				if test.NegativeMarking.Enabled {
					deduction := q.Marks * test.NegativeMarking.Deduction
					stat.Marks -= deduction
					score.ObtainedMarks -= deduction
					ans.MarksAwarded = -deduction
				}
			}

			detail = append(detail, ans)
		}

		if stat.Attempted > 0 {
			stat.Accuracy = round2(float64(stat.Correct) / float64(stat.Attempted) * 100)
		}
		stat.Marks = round2(stat.Marks)
		sectionWise = append(sectionWise, stat)
	}

	if score.ObtainedMarks < 0 {
		score.ObtainedMarks = 0
	}
	score.ObtainedMarks = round2(score.ObtainedMarks)
	if score.TotalMarks > 0 {
		score.Percentage = round2(score.ObtainedMarks / score.TotalMarks * 100)
	}

	return Outcome{Score: score, SectionWise: sectionWise, Answers: detail}
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
