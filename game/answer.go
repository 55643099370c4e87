package game

import (
	"math"
	"strings"
	"time"

	"mathking/models"
)

// MaxAnswerHistory bounds User.AnswerHistory; the oldest entries drop first.
const MaxAnswerHistory = 100

const (
	ActionCorrect   = "answered correctly"
	ActionChallenge = "cleared a challenge"
)

// IsCorrect compares trimmed strings exactly. "62" and "62.0" differ.
func IsCorrect(submitted, expected string) bool {
	return strings.TrimSpace(submitted) == strings.TrimSpace(expected)
}

// AnswerResult describes what ApplyAnswer changed.
type AnswerResult struct {
	Correct       bool
	EarnedElement models.Element
	Broadcast     *models.Broadcast
}

// ApplyAnswer grades submitted against q and folds the outcome into u:
// statistics and history always; answered set, element reward and a broadcast
// entry on a correct answer; a wrong-question log entry otherwise.
func ApplyAnswer(u *models.User, q models.Question, submitted string, mode Mode, now time.Time, rnd Source) AnswerResult {
	correct := IsCorrect(submitted, q.Answer)

	recordStatistics(u, correct)
	u.AnswerHistory = append(u.AnswerHistory, models.AnswerRecord{
		QuestionID:    q.ID,
		Question:      q.Question,
		UserAnswer:    submitted,
		CorrectAnswer: q.Answer,
		IsCorrect:     correct,
		Timestamp:     now,
		Accuracy:      u.Statistics.Accuracy,
	})
	if n := len(u.AnswerHistory); n > MaxAnswerHistory {
		u.AnswerHistory = append(u.AnswerHistory[:0:0], u.AnswerHistory[n-MaxAnswerHistory:]...)
	}

	if !correct {
		u.WrongQuestions = append(u.WrongQuestions, models.WrongQuestion{
			QuestionID:    q.ID,
			Question:      q.Question,
			UserAnswer:    submitted,
			CorrectAnswer: q.Answer,
			Explanation:   q.Explanation,
			Timestamp:     now,
		})
		return AnswerResult{}
	}

	MarkAnswered(u, q.ID, mode)
	el := DrawElement(mode, rnd)
	u.Elements.Add(el, 1)

	return AnswerResult{
		Correct:       true,
		EarnedElement: el,
		Broadcast:     NewBroadcast(u, mode, el, now),
	}
}

// MarkAnswered adds id to mode's answered set. Re-adding is a no-op.
func MarkAnswered(u *models.User, id uint, mode Mode) {
	set := answeredSet(u, mode)
	for _, existing := range *set {
		if existing == id {
			return
		}
	}
	*set = append(*set, id)
}

func recordStatistics(u *models.User, correct bool) {
	s := &u.Statistics
	s.TotalQuestions++
	if correct {
		s.CorrectQuestions++
	}
	s.Accuracy = Accuracy(s.CorrectQuestions, s.TotalQuestions)
}

// Accuracy is round(100 * correct / total), or 0 when nothing was answered.
func Accuracy(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(correct) / float64(total)))
}

// NewBroadcast builds the ticker entry for a reward.
func NewBroadcast(u *models.User, mode Mode, el models.Element, now time.Time) *models.Broadcast {
	action := ActionCorrect
	if mode == ModeChallenge {
		action = ActionChallenge
	}
	return &models.Broadcast{
		ClassName: u.ClassName,
		Name:      u.Name,
		Action:    action,
		Element:   el,
		CreatedAt: now,
	}
}
