package admin

import (
	"mathking/models"
	"mathking/utils"

	"github.com/gofiber/fiber/v2"
)

type questionRequest struct {
	Question    string `json:"question"`
	Answer      string `json:"answer"`
	Explanation string `json:"explanation"`
	Difficulty  string `json:"difficulty"`
}

func (r questionRequest) toModel() models.Question {
	return models.Question{
		Question:    r.Question,
		Answer:      r.Answer,
		Explanation: r.Explanation,
		Difficulty:  models.Difficulty(r.Difficulty),
	}
}

// GetQuestions lists the question bank
// GET /api/admin/questions
func GetQuestions(c *fiber.Ctx) error {
	questions, err := adminService.Questions(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(utils.NonNil(questions))
}

// CreateQuestion adds a question; difficulty defaults to easy
// POST /api/admin/questions
func CreateQuestion(c *fiber.Ctx) error {
	var req questionRequest
	if ok, err := utils.ParseBody(c, &req); !ok {
		return err
	}
	if req.Question == "" || req.Answer == "" {
		return utils.BadRequest(c, "question and answer are required")
	}

	q := req.toModel()
	if err := adminService.AddQuestion(c.UserContext(), &q); err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.Map{"question": q})
}

// UpdateQuestion edits a question in place
// PUT /api/admin/questions/:id
func UpdateQuestion(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return utils.Fail(c, "Question not found")
	}
	var req questionRequest
	if ok, err := utils.ParseBody(c, &req); !ok {
		return err
	}
	if req.Question == "" || req.Answer == "" {
		return utils.BadRequest(c, "question and answer are required")
	}

	q := req.toModel()
	q.ID = id
	if err := adminService.UpdateQuestion(c.UserContext(), &q); err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, nil)
}

// DeleteQuestion removes a question
// DELETE /api/admin/questions/:id
func DeleteQuestion(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return utils.Fail(c, "Question not found")
	}
	if err := adminService.DeleteQuestion(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, nil)
}

// ImportQuestions appends many questions at once
// POST /api/admin/questions/batch
func ImportQuestions(c *fiber.Ctx) error {
	var req struct {
		Questions []questionRequest `json:"questions"`
	}
	if ok, err := utils.ParseBody(c, &req); !ok {
		return err
	}

	questions := make([]models.Question, len(req.Questions))
	for i, q := range req.Questions {
		questions[i] = q.toModel()
	}

	n, err := adminService.ImportQuestions(c.UserContext(), questions)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.Map{"count": n})
}
