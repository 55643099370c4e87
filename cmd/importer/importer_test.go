package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mathking/database"
	"mathking/game"
	"mathking/models"
	"mathking/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

const (
	studentsJSON = `[
  {"className": "三年级一班", "name": "张三", "account": "zs01"},
  {"className": "三年级一班", "name": "李四", "account": "ls02"},
  {"className": "三年级一班", "name": "张三", "account": "dup"}
]`
	questionsJSON = `[
  {"id": 7, "question": "12 + 30 = ?", "answer": "42", "explanation": "", "difficulty": "简单"},
  {"id": 9, "question": "6 x 7 = ?", "answer": "42", "explanation": "", "difficulty": "困难"}
]`
	dataJSON = `{
  "users": [{
    "id": "1697712345678",
    "className": "三年级一班", "name": "张三", "account": "zs01",
    "level": 2,
    "elements": {"fire": 1, "water": 2, "wind": 0, "rock": 0, "grass": 0, "thunder": 0, "ice": 1},
    "wrongQuestions": [{"questionId": 9, "question": "6 x 7 = ?", "userAnswer": "41", "correctAnswer": "42", "explanation": "", "timestamp": 1697712345678}],
    "answeredQuestions": [7, 9],
    "answeredChallengeQuestions": [],
    "answerHistory": [{"questionId": 7, "question": "12 + 30 = ?", "userAnswer": "42", "correctAnswer": "42", "isCorrect": true, "timestamp": 1697712345678, "accuracy": 100}],
    "dailyUsage": {"date": "Thu Oct 19 2023", "duration": 120, "loginTime": 1697712345678},
    "statistics": {"totalQuestions": 2, "correctQuestions": 1, "accuracy": 50}
  }],
  "broadcasts": [
    {"className": "三年级一班", "name": "张三", "action": "挑战成功", "element": "ice", "time": 1697712349999},
    {"className": "三年级一班", "name": "张三", "action": "答题正确", "element": "water", "time": 1697712340000},
    {"className": "三年级一班", "name": "张三", "action": "答题正确", "element": "lava", "time": 1697712330000}
  ]
}`
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunImportsLegacyFiles(t *testing.T) {
	dir := t.TempDir()
	conn, err := database.Open("sqlite", filepath.Join(dir, "import.db"), logger.Silent)
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(conn))
	store := repository.NewStore(conn)
	ctx := context.Background()

	// Pre-existing questions force new IDs for the imported ones.
	require.NoError(t, store.Questions.Create(ctx, &models.Question{Question: "1 + 1 = ?", Answer: "2", Difficulty: models.DifficultyEasy}))

	sum, err := run(ctx, store,
		writeFile(t, dir, "students.json", studentsJSON),
		writeFile(t, dir, "questions.json", questionsJSON),
		writeFile(t, dir, "data.json", dataJSON))
	require.NoError(t, err)
	assert.Equal(t, summary{Students: 2, Questions: 2, Users: 1, Broadcasts: 2}, sum)

	questions, err := store.Questions.List(ctx)
	require.NoError(t, err)
	require.Len(t, questions, 3)
	assert.Equal(t, models.DifficultyHard, questions[2].Difficulty)

	u, err := store.Users.Get(ctx, "1697712345678")
	require.NoError(t, err)
	assert.Equal(t, 2, u.Level)
	assert.Equal(t, 1, u.Elements.Ice)
	assert.Equal(t, []uint{questions[1].ID, questions[2].ID}, []uint(u.AnsweredQuestions))
	require.Len(t, u.WrongQuestions, 1)
	assert.Equal(t, questions[2].ID, u.WrongQuestions[0].QuestionID)
	assert.Equal(t, "2023-10-19", u.DailyUsage.Date)
	assert.Equal(t, 120, u.DailyUsage.Duration)

	feed, err := store.Broadcasts.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, models.ElementIce, feed[0].Element)
}

func TestRunSkipsMissingFiles(t *testing.T) {
	dir := t.TempDir()
	conn, err := database.Open("sqlite", filepath.Join(dir, "import.db"), logger.Silent)
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(conn))

	sum, err := run(context.Background(), repository.NewStore(conn),
		filepath.Join(dir, "nope.json"), filepath.Join(dir, "nope.json"), filepath.Join(dir, "nope.json"))
	require.NoError(t, err)
	assert.Equal(t, summary{}, sum)
}

func TestRunRejectsUnknownDifficulty(t *testing.T) {
	dir := t.TempDir()
	conn, err := database.Open("sqlite", filepath.Join(dir, "import.db"), logger.Silent)
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(conn))
	store := repository.NewStore(conn)

	_, err = run(context.Background(), store,
		writeFile(t, dir, "students.json", studentsJSON),
		writeFile(t, dir, "questions.json", `[{"id": 1, "question": "?", "answer": "1", "difficulty": "极难"}]`),
		filepath.Join(dir, "missing.json"))
	require.Error(t, err)

	// The roster rows of the failed run are rolled back too.
	students, err := store.Students.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, students)
}

func TestUsageDateAndMillis(t *testing.T) {
	assert.Equal(t, "2026-10-19", usageDate("Mon Oct 19 2026"))
	assert.Equal(t, "", usageDate("yesterday"))
	assert.True(t, millis(0).IsZero())
	assert.Equal(t, time.Date(2023, 10, 19, 10, 45, 45, 678e6, time.UTC), millis(1697712345678))
}

func TestRunDropsAnswersToMissingQuestions(t *testing.T) {
	dir := t.TempDir()
	conn, err := database.Open("sqlite", filepath.Join(dir, "import.db"), logger.Silent)
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(conn))
	store := repository.NewStore(conn)
	ctx := context.Background()

	// Question 1 was deleted before the export; the fresh store hands its ID
	// to the first imported question.
	_, err = run(ctx, store,
		filepath.Join(dir, "missing.json"),
		writeFile(t, dir, "questions.json", `[
  {"id": 5, "question": "5 + 5 = ?", "answer": "10", "difficulty": "简单"},
  {"id": 6, "question": "6 + 6 = ?", "answer": "12", "difficulty": "困难"}
]`),
		writeFile(t, dir, "data.json", `{"users": [{
  "id": "u1", "className": "一班", "name": "王五", "level": 1,
  "answeredQuestions": [1, 5],
  "answeredChallengeQuestions": [2],
  "wrongQuestions": [{"questionId": 1, "question": "gone", "userAnswer": "x", "correctAnswer": "y", "timestamp": 0}],
  "answerHistory": [{"questionId": 1, "question": "gone", "userAnswer": "x", "correctAnswer": "y", "isCorrect": false, "timestamp": 0, "accuracy": 0}]
}]}`))
	require.NoError(t, err)

	questions, err := store.Questions.List(ctx)
	require.NoError(t, err)
	require.Len(t, questions, 2)

	u, err := store.Users.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []uint{questions[0].ID}, []uint(u.AnsweredQuestions))
	assert.Empty(t, u.AnsweredChallengeQuestions)
	assert.False(t, game.HasAnswered(u, questions[1].ID, game.ModeNormal))
	assert.False(t, game.HasAnswered(u, questions[1].ID, game.ModeChallenge))
	require.Len(t, u.WrongQuestions, 1)
	assert.Zero(t, u.WrongQuestions[0].QuestionID)
	require.Len(t, u.AnswerHistory, 1)
	assert.Zero(t, u.AnswerHistory[0].QuestionID)
}
