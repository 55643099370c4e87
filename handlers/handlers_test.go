package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"mathking/database"
	"mathking/models"
	"mathking/repository"
	"mathking/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

// waterSource makes every normal-mode reward water.
type waterSource struct{}

func (waterSource) Float64() float64 { return 0.1 }
func (waterSource) Intn(int) int     { return 0 }

func setupApp(t *testing.T) (*fiber.App, *repository.Store) {
	t.Helper()
	conn, err := database.Open("sqlite", filepath.Join(t.TempDir(), "handlers.db"), logger.Silent)
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(conn))
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	})

	store := repository.NewStore(conn)
	hub := services.NewBroadcastHub()
	InitGameHandlers(services.NewGameService(store, hub, nil, services.GameConfig{Source: waterSource{}}), hub)

	ctx := context.Background()
	require.NoError(t, store.Students.CreateBatch(ctx, []models.Student{
		{ClassName: "Class 1", Name: "Alice", Account: "a001"},
		{ClassName: "Class 1", Name: "Bob", Account: "b002"},
	}))
	require.NoError(t, store.Questions.Create(ctx, &models.Question{
		Question: "25 + 37 = ?", Answer: "62", Explanation: "25 + 37 = 62", Difficulty: models.DifficultyEasy,
	}))

	app := fiber.New(fiber.Config{UnescapePath: true})
	app.Get("/health", Health)
	api := app.Group("/api")
	api.Get("/classes", GetClasses)
	api.Get("/students/:className", GetStudents)
	api.Post("/login", Login)
	api.Get("/question", GetQuestion)
	api.Post("/answer", SubmitAnswer)
	api.Post("/challenge/start", StartChallenge)
	api.Post("/gift", Gift)
	api.Post("/upgrade", Upgrade)
	api.Post("/update-usage", UpdateUsage)
	api.Get("/answer-history/:userId", GetAnswerHistory)
	api.Get("/wrong-questions/:userId", GetWrongQuestions)
	api.Get("/rank/class/:className", GetClassRank)
	api.Get("/rank/total", GetTotalRank)
	api.Get("/broadcast", GetBroadcasts)
	api.Get("/broadcast/ws", WebSocketUpgrade)
	return app, store
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (int, map[string]any) {
	t.Helper()
	code, raw := doRaw(t, app, method, path, body)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return code, out
}

func doRaw(t *testing.T, app *fiber.App, method, path string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = bytes.NewBufferString(b)
		default:
			data, err := json.Marshal(b)
			require.NoError(t, err)
			reader = bytes.NewReader(data)
		}
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func login(t *testing.T, app *fiber.App, name, account string) string {
	t.Helper()
	code, out := doJSON(t, app, http.MethodPost, "/api/login", fiber.Map{
		"className": "Class 1", "name": name, "account": account,
	})
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, true, out["success"], out)
	assert.Equal(t, float64(1800), out["remainingTime"])
	return out["user"].(map[string]any)["id"].(string)
}

func TestRoster(t *testing.T) {
	app, _ := setupApp(t)

	code, raw := doRaw(t, app, http.MethodGet, "/api/classes", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `["Class 1"]`, string(raw))

	code, raw = doRaw(t, app, http.MethodGet, "/api/students/Class%201", nil)
	assert.Equal(t, http.StatusOK, code)
	var students []models.Student
	require.NoError(t, json.Unmarshal(raw, &students))
	assert.Len(t, students, 2)

	code, raw = doRaw(t, app, http.MethodGet, "/api/students/Nobody", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[]`, string(raw))
}

func TestLoginFailures(t *testing.T) {
	app, _ := setupApp(t)

	code, out := doJSON(t, app, http.MethodPost, "/api/login", fiber.Map{"className": "Class 1", "name": "Zed", "account": "z"})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "Student not found in roster", out["message"])

	code, out = doJSON(t, app, http.MethodPost, "/api/login", `{not json`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, false, out["success"])
	assert.NotEmpty(t, out["error"])
}

func TestQuestionAndAnswerFlow(t *testing.T) {
	app, _ := setupApp(t)
	id := login(t, app, "Alice", "a001")

	code, q := doJSON(t, app, http.MethodGet, "/api/question?userId="+id, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "25 + 37 = ?", q["question"])
	assert.NotContains(t, q, "answer")
	assert.NotContains(t, q, "explanation")
	qid := q["id"]

	_, out := doJSON(t, app, http.MethodPost, "/api/answer", fiber.Map{"userId": id, "questionId": qid, "answer": "62.0"})
	assert.Equal(t, false, out["correct"])
	assert.Equal(t, "62", out["correctAnswer"])
	assert.Equal(t, "25 + 37 = 62", out["explanation"])

	_, out = doJSON(t, app, http.MethodPost, "/api/answer", fiber.Map{"userId": id, "questionId": qid, "answer": " 62 "})
	assert.Equal(t, true, out["correct"])
	assert.Equal(t, "water", out["earnedElement"])
	stats := out["statistics"].(map[string]any)
	assert.Equal(t, float64(50), stats["accuracy"])

	_, q = doJSON(t, app, http.MethodGet, "/api/question?userId="+id, nil)
	assert.Equal(t, true, q["completed"])

	code, raw := doRaw(t, app, http.MethodGet, "/api/broadcast", nil)
	assert.Equal(t, http.StatusOK, code)
	var feed []models.Broadcast
	require.NoError(t, json.Unmarshal(raw, &feed))
	require.Len(t, feed, 1)
	assert.Equal(t, "Alice", feed[0].Name)

	_, out = doJSON(t, app, http.MethodGet, "/api/answer-history/"+id, nil)
	assert.Equal(t, true, out["success"])
	assert.Len(t, out["history"], 2)

	_, out = doJSON(t, app, http.MethodGet, "/api/wrong-questions/"+id, nil)
	assert.Len(t, out["wrongQuestions"], 1)

	_, out = doJSON(t, app, http.MethodPost, "/api/answer", fiber.Map{"userId": "ghost", "questionId": qid, "answer": "62"})
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "User not found", out["message"])
}

func TestProgressionEndpoints(t *testing.T) {
	app, store := setupApp(t)
	id := login(t, app, "Alice", "a001")

	_, out := doJSON(t, app, http.MethodPost, "/api/challenge/start", fiber.Map{"userId": id})
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "Not enough elements", out["message"])

	_, out = doJSON(t, app, http.MethodPost, "/api/upgrade", fiber.Map{"userId": id})
	assert.Equal(t, "Not enough rare elements", out["message"])

	ctx := context.Background()
	u, err := store.Users.Get(ctx, id)
	require.NoError(t, err)
	u.Elements = models.Elements{Thunder: 1, Fire: 1, Water: 11, Wind: 1, Rock: 1, Grass: 1}
	require.NoError(t, store.Users.Save(ctx, u))

	_, out = doJSON(t, app, http.MethodPost, "/api/challenge/start", fiber.Map{"userId": id})
	assert.Equal(t, true, out["success"])

	_, out = doJSON(t, app, http.MethodPost, "/api/upgrade", fiber.Map{"userId": id})
	assert.Equal(t, true, out["success"])
	assert.Equal(t, float64(2), out["level"])
	elements := out["elements"].(map[string]any)
	assert.Equal(t, float64(0), elements["water"])
	assert.Equal(t, float64(0), elements["thunder"])

	code, raw := doRaw(t, app, http.MethodGet, "/api/rank/class/Class%201", nil)
	assert.Equal(t, http.StatusOK, code)
	var ranked []models.User
	require.NoError(t, json.Unmarshal(raw, &ranked))
	require.Len(t, ranked, 1)
	assert.Equal(t, 2, ranked[0].Level)

	code, raw = doRaw(t, app, http.MethodGet, "/api/rank/total", nil)
	assert.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(raw, &ranked))
	assert.Len(t, ranked, 1)

	_, out = doJSON(t, app, http.MethodPost, "/api/update-usage", fiber.Map{"userId": id})
	assert.Equal(t, true, out["success"])
	assert.Contains(t, out, "remainingTime")
	assert.Contains(t, out, "usedTime")
}

func TestGiftEndpoint(t *testing.T) {
	app, store := setupApp(t)
	id := login(t, app, "Alice", "a001")

	ctx := context.Background()
	u, err := store.Users.Get(ctx, id)
	require.NoError(t, err)
	u.Elements.Rock = 4
	require.NoError(t, store.Users.Save(ctx, u))

	gift := func(amount int, element string) map[string]any {
		_, out := doJSON(t, app, http.MethodPost, "/api/gift", fiber.Map{
			"fromUser":    fiber.Map{"id": id},
			"targetClass": "Class 1",
			"targetName":  "Bob",
			"element":     element,
			"amount":      amount,
		})
		return out
	}

	out := gift(3, "rock")
	assert.Equal(t, true, out["success"])
	assert.Equal(t, float64(1), out["fromElements"].(map[string]any)["rock"])
	assert.Equal(t, float64(3), out["toElements"].(map[string]any)["rock"])

	out = gift(3, "rock")
	assert.Equal(t, "Not enough elements", out["message"])

	out = gift(-1, "rock")
	assert.Equal(t, "Gift amount must be a positive integer", out["message"])

	out = gift(1, "lava")
	assert.Equal(t, "Unknown element", out["message"])
}

func TestWebSocketRouteRejectsPlainHTTP(t *testing.T) {
	app, _ := setupApp(t)
	code, _ := doRaw(t, app, http.MethodGet, "/api/broadcast/ws", nil)
	assert.Equal(t, fiber.StatusUpgradeRequired, code)
}

func TestHealth(t *testing.T) {
	app, _ := setupApp(t)
	code, out := doJSON(t, app, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", out["status"])
	assert.Equal(t, Version, out["version"])
}
