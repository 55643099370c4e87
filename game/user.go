package game

import (
	"time"

	"mathking/models"

	"github.com/google/uuid"
)

// NewUser builds a fresh progress record: level 1, no elements, empty history,
// and a usage window opened at now.
func NewUser(className, name, account string, now time.Time) *models.User {
	return &models.User{
		ID:                         uuid.NewString(),
		ClassName:                  className,
		Name:                       name,
		Account:                    account,
		Level:                      1,
		WrongQuestions:             []models.WrongQuestion{},
		AnsweredQuestions:          []uint{},
		AnsweredChallengeQuestions: []uint{},
		AnswerHistory:              []models.AnswerRecord{},
		DailyUsage: models.DailyUsage{
			Date:      usageDate(now),
			LoginTime: now,
		},
	}
}
