package pdfimport

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"mockexam-service/internal/models"

	"github.com/ledongthuc/pdf"
)

// Line-scan patterns for text-based exam papers: numbered questions,
// lettered options, and an answer key line near each question.
var (
	questionPattern = regexp.MustCompile(`^(\d+)[.)]\s*(.+)`)
	optionPattern   = regexp.MustCompile(`(?i)^([A-D])[.)]\s*(.+)`)
	answerPattern   = regexp.MustCompile(`(?i)(?:Answer|Ans|Correct)[:.\s]*\(?([A-D])\)?`)
)

// imageBasedThreshold is the extracted-text length below which a PDF is
// assumed to be a scan with no text layer.
const imageBasedThreshold = 100

type ParsedQuestion struct {
	Number        int      `json:"questionNumber"`
	Text          string   `json:"questionText"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

type Extraction struct {
	Questions  []ParsedQuestion `json:"questions"`
	RawPreview string           `json:"rawPreview"`
	ImageBased bool             `json:"isImageBased"`
}

// Extract pulls the text layer out of the PDF and scans it for questions.
// A document with almost no extractable text is reported as image-based
// rather than failed, so the caller can tell the admin to OCR it first.
func Extract(ra io.ReaderAt, size int64) (*Extraction, error) {
	reader, err := pdf.NewReader(ra, size)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return nil, fmt.Errorf("read pdf text: %w", err)
	}
	text := buf.String()

	out := &Extraction{
		Questions:  ParseQuestions(text),
		RawPreview: preview(text, 1000),
		ImageBased: len(text) < imageBasedThreshold,
	}
	return out, nil
}

// ParseQuestions walks the text line by line. A question needs at least two
// options to be kept; a missing answer key defaults to the first option.
func ParseQuestions(text string) []ParsedQuestion {
	var lines []string
	for _, raw := range strings.Split(text, "\n") {
		if line := strings.TrimSpace(raw); line != "" {
			lines = append(lines, line)
		}
	}

	var questions []ParsedQuestion
	i := 0
	for i < len(lines) {
		m := questionPattern.FindStringSubmatch(lines[i])
		if m == nil {
			i++
			continue
		}
		number, _ := strconv.Atoi(m[1])
		textParts := []string{m[2]}

		// Question text may wrap onto following lines until the first
		// option or the next numbered question.
		i++
		for i < len(lines) && !optionPattern.MatchString(lines[i]) {
			if questionPattern.MatchString(lines[i]) {
				break
			}
			textParts = append(textParts, lines[i])
			i++
		}

		var options []string
		for i < len(lines) && len(options) < 4 {
			om := optionPattern.FindStringSubmatch(lines[i])
			if om == nil {
				break
			}
			options = append(options, om[2])
			i++
		}

		correct := 0
		for j := 0; j < 3 && i+j < len(lines); j++ {
			am := answerPattern.FindStringSubmatch(lines[i+j])
			if am != nil {
				correct = int(strings.ToUpper(am[1])[0] - 'A')
				i += j + 1
				break
			}
		}

		if len(options) >= 2 && correct < len(options) {
			questions = append(questions, ParsedQuestion{
				Number:        number,
				Text:          strings.Join(textParts, " "),
				Options:       options,
				CorrectAnswer: correct,
			})
		}
	}
	return questions
}

// Categorize splits questions into the standard three-section paper by
// position: first third English, second third General Knowledge, rest
// Mathematics. Empty sections are dropped.
func Categorize(questions []ParsedQuestion) []models.Section {
	perSection := (len(questions) + 2) / 3
	if perSection == 0 {
		return nil
	}

	names := []string{"English", "General Knowledge", "Mathematics"}
	var sections []models.Section
	for idx, name := range names {
		start := idx * perSection
		if start >= len(questions) {
			break
		}
		end := start + perSection
		if idx == len(names)-1 || end > len(questions) {
			end = len(questions)
		}

		sec := models.Section{Name: name}
		for _, q := range questions[start:end] {
			sec.Questions = append(sec.Questions, models.Question{
				Question:      q.Text,
				Options:       q.Options,
				CorrectAnswer: q.CorrectAnswer,
				Explanation:   q.Explanation,
				Marks:         1,
			})
		}
		if len(sec.Questions) > 0 {
			sections = append(sections, sec)
		}
	}
	return sections
}

// BuildTest assembles an authorable test from parsed questions, using the
// paper defaults: 120 minutes, one mark per question, 0.33 negative marking.
func BuildTest(title, description string, duration int, questions []ParsedQuestion) *models.Test {
	if duration <= 0 {
		duration = 120
	}
	if description == "" {
		description = fmt.Sprintf("Auto-generated test with %d questions", len(questions))
	}
	return &models.Test{
		Title:       title,
		Description: description,
		Duration:    duration,
		Sections:    Categorize(questions),
		NegativeMarking: models.NegativeMarking{
			Enabled:   true,
			Deduction: 0.33,
		},
	}
}

func preview(text string, n int) string {
	if len(text) <= n {
		return text
	}
	return text[:n]
}
