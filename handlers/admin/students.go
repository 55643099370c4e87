package admin

import (
	"mathking/models"
	"mathking/utils"

	"github.com/gofiber/fiber/v2"
)

type studentRequest struct {
	ClassName string `json:"className"`
	Name      string `json:"name"`
	Account   string `json:"account"`
}

func (r studentRequest) toModel() models.Student {
	return models.Student{ClassName: r.ClassName, Name: r.Name, Account: r.Account}
}

// GetStudents lists the whole roster
// GET /api/admin/students
func GetStudents(c *fiber.Ctx) error {
	students, err := adminService.Students(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(utils.NonNil(students))
}

// CreateStudent adds a roster entry
// POST /api/admin/students
func CreateStudent(c *fiber.Ctx) error {
	var req studentRequest
	if ok, err := utils.ParseBody(c, &req); !ok {
		return err
	}
	if req.ClassName == "" || req.Name == "" {
		return utils.BadRequest(c, "className and name are required")
	}

	st := req.toModel()
	if err := adminService.AddStudent(c.UserContext(), &st); err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.Map{"student": st})
}

// UpdateStudent edits a roster entry
// PUT /api/admin/students/:id
func UpdateStudent(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return utils.Fail(c, "Student not found")
	}
	var req studentRequest
	if ok, err := utils.ParseBody(c, &req); !ok {
		return err
	}
	if req.ClassName == "" || req.Name == "" {
		return utils.BadRequest(c, "className and name are required")
	}

	st := req.toModel()
	st.ID = id
	if err := adminService.UpdateStudent(c.UserContext(), &st); err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, nil)
}

// DeleteStudent removes a roster entry
// DELETE /api/admin/students/:id
func DeleteStudent(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return utils.Fail(c, "Student not found")
	}
	if err := adminService.DeleteStudent(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, nil)
}

// ImportStudents adds many roster entries at once
// POST /api/admin/students/batch
func ImportStudents(c *fiber.Ctx) error {
	var req struct {
		Students []studentRequest `json:"students"`
	}
	if ok, err := utils.ParseBody(c, &req); !ok {
		return err
	}

	students := make([]models.Student, len(req.Students))
	for i, s := range req.Students {
		students[i] = s.toModel()
	}

	n, err := adminService.ImportStudents(c.UserContext(), students)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.Map{"count": n})
}
