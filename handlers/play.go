// handlers/play.go - Login, questions, answers and progression
package handlers

import (
	"mathking/game"
	"mathking/utils"

	"github.com/gofiber/fiber/v2"
)

type loginRequest struct {
	ClassName string `json:"className"`
	Name      string `json:"name"`
	Account   string `json:"account"`
}

type userRequest struct {
	UserID string `json:"userId"`
}

type answerRequest struct {
	UserID      string `json:"userId"`
	QuestionID  uint   `json:"questionId"`
	Answer      string `json:"answer"`
	IsChallenge bool   `json:"isChallenge"`
}

type giftRequest struct {
	FromUser struct {
		ID string `json:"id"`
	} `json:"fromUser"`
	TargetClass string `json:"targetClass"`
	TargetName  string `json:"targetName"`
	Element     string `json:"element"`
	Amount      int    `json:"amount"`
}

// Login opens a session for a rostered student
// POST /api/login
func Login(c *fiber.Ctx) error {
	var req loginRequest
	if ok, err := utils.ParseBody(c, &req); !ok {
		return err
	}
	if req.ClassName == "" || req.Name == "" {
		return utils.BadRequest(c, "className and name are required")
	}

	user, err := gameService.Login(c.UserContext(), req.ClassName, req.Name, req.Account)
	if err != nil {
		return respondError(c, err)
	}

	return utils.Success(c, fiber.Map{
		"user":          user,
		"remainingTime": int(gameService.Remaining(user).Seconds()),
	})
}

// GetQuestion serves the next unanswered question, without its answer
// GET /api/question?userId=...&isChallenge=true
func GetQuestion(c *fiber.Ctx) error {
	mode := game.ModeOf(c.Query("isChallenge") == "true")

	sel, err := gameService.NextQuestion(c.UserContext(), c.Query("userId"), mode)
	if err != nil {
		return err
	}

	if sel.Completed {
		return c.JSON(fiber.Map{
			"completed": true,
			"message":   sel.Message,
		})
	}
	return c.JSON(fiber.Map{
		"id":         sel.Question.ID,
		"question":   sel.Question.Question,
		"difficulty": sel.Question.Difficulty,
	})
}

// SubmitAnswer grades an answer
// POST /api/answer
func SubmitAnswer(c *fiber.Ctx) error {
	var req answerRequest
	if ok, err := utils.ParseBody(c, &req); !ok {
		return err
	}

	out, err := gameService.SubmitAnswer(c.UserContext(), req.UserID, req.QuestionID, req.Answer, game.ModeOf(req.IsChallenge))
	if err != nil {
		return respondError(c, err)
	}

	if out.Correct {
		return c.JSON(fiber.Map{
			"correct":       true,
			"earnedElement": out.EarnedElement,
			"elements":      out.User.Elements,
			"statistics":    out.User.Statistics,
		})
	}
	return c.JSON(fiber.Map{
		"correct":       false,
		"correctAnswer": out.Question.Answer,
		"explanation":   out.Question.Explanation,
		"statistics":    out.User.Statistics,
	})
}

// StartChallenge pays the challenge entry toll
// POST /api/challenge/start
func StartChallenge(c *fiber.Ctx) error {
	var req userRequest
	if ok, err := utils.ParseBody(c, &req); !ok {
		return err
	}

	user, err := gameService.StartChallenge(c.UserContext(), req.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.Map{"elements": user.Elements})
}

// Upgrade spends elements to gain a level
// POST /api/upgrade
func Upgrade(c *fiber.Ctx) error {
	var req userRequest
	if ok, err := utils.ParseBody(c, &req); !ok {
		return err
	}

	user, err := gameService.Upgrade(c.UserContext(), req.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.Map{
		"level":    user.Level,
		"elements": user.Elements,
	})
}

// Gift sends elements to a classmate
// POST /api/gift
func Gift(c *fiber.Ctx) error {
	var req giftRequest
	if ok, err := utils.ParseBody(c, &req); !ok {
		return err
	}

	sender, receiver, err := gameService.Gift(c.UserContext(), req.FromUser.ID, req.TargetClass, req.TargetName, req.Element, req.Amount)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.Map{
		"fromElements": sender.Elements,
		"toElements":   receiver.Elements,
	})
}
