// handlers/progress.go - Usage time, answer history and wrong answers
package handlers

import (
	"mathking/utils"

	"github.com/gofiber/fiber/v2"
)

// UpdateUsage syncs the daily play clock
// POST /api/update-usage
func UpdateUsage(c *fiber.Ctx) error {
	var req userRequest
	if ok, err := utils.ParseBody(c, &req); !ok {
		return err
	}

	user, err := gameService.UpdateUsage(c.UserContext(), req.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.Map{
		"remainingTime": int(gameService.Remaining(user).Seconds()),
		"usedTime":      user.DailyUsage.Duration,
	})
}

// GetAnswerHistory returns the recent answers and running statistics
// GET /api/answer-history/:userId
func GetAnswerHistory(c *fiber.Ctx) error {
	user, err := gameService.User(c.UserContext(), c.Params("userId"))
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.Map{
		"history":    user.AnswerHistory,
		"statistics": user.Statistics,
	})
}

// GetWrongQuestions returns the wrong-answer log
// GET /api/wrong-questions/:userId
func GetWrongQuestions(c *fiber.Ctx) error {
	user, err := gameService.User(c.UserContext(), c.Params("userId"))
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.Map{"wrongQuestions": user.WrongQuestions})
}
