package game

import (
	"slices"

	"mathking/models"
)

// Mode selects the question pool and reward table.
type Mode int

const (
	ModeNormal Mode = iota
	ModeChallenge
)

// ModeOf maps the wire-level isChallenge flag onto a Mode.
func ModeOf(isChallenge bool) Mode {
	if isChallenge {
		return ModeChallenge
	}
	return ModeNormal
}

func (m Mode) String() string {
	if m == ModeChallenge {
		return "challenge"
	}
	return "normal"
}

const (
	completedNormalMessage    = "Congratulations, you have finished every question!"
	completedChallengeMessage = "Congratulations, you have finished every challenge question!"
)

// FallbackQuestion is served when the bank is empty.
var FallbackQuestion = models.Question{
	Question:    "Calculate: 25 + 37 = ?",
	Answer:      "62",
	Explanation: "25 + 37 = 62",
	Difficulty:  models.DifficultyEasy,
}

// Selection is the outcome of picking the next question. Exactly one of
// Question or Completed is set.
type Selection struct {
	Question  *models.Question
	Completed bool
	Message   string
}

// Eligible reports whether q belongs to the pool of mode.
func Eligible(q models.Question, mode Mode) bool {
	if mode == ModeChallenge {
		return q.Difficulty == models.DifficultyHard
	}
	return q.Difficulty == models.DifficultyEasy || q.Difficulty == models.DifficultyMedium
}

// answeredSet returns the answered-ID set that mode reads and writes.
func answeredSet(u *models.User, mode Mode) *[]uint {
	if mode == ModeChallenge {
		return (*[]uint)(&u.AnsweredChallengeQuestions)
	}
	return (*[]uint)(&u.AnsweredQuestions)
}

// HasAnswered reports whether the question id is already in mode's answered set.
func HasAnswered(u *models.User, id uint, mode Mode) bool {
	return slices.Contains(*answeredSet(u, mode), id)
}

// SelectQuestion draws uniformly among the questions of mode's pool that u has
// not yet answered correctly in that mode.
func SelectQuestion(u *models.User, bank []models.Question, mode Mode, rnd Source) Selection {
	if len(bank) == 0 {
		q := FallbackQuestion
		return Selection{Question: &q}
	}

	var pool []models.Question
	for _, q := range bank {
		if Eligible(q, mode) && !HasAnswered(u, q.ID, mode) {
			pool = append(pool, q)
		}
	}

	if len(pool) == 0 {
		msg := completedNormalMessage
		if mode == ModeChallenge {
			msg = completedChallengeMessage
		}
		return Selection{Completed: true, Message: msg}
	}

	q := pool[rnd.Intn(len(pool))]
	return Selection{Question: &q}
}

// RandomQuestion draws uniformly from the whole bank. Used when the caller has
// no progress record.
func RandomQuestion(bank []models.Question, rnd Source) Selection {
	if len(bank) == 0 {
		q := FallbackQuestion
		return Selection{Question: &q}
	}
	q := bank[rnd.Intn(len(bank))]
	return Selection{Question: &q}
}
