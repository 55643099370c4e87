package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"mathking/models"

	"github.com/google/uuid"
)

// The legacy JSON files keep timestamps as epoch milliseconds and the usage
// date as a JavaScript Date.toDateString value ("Mon Oct 19 2026").

type legacyStudent struct {
	ClassName string `json:"className"`
	Name      string `json:"name"`
	Account   string `json:"account"`
}

type legacyQuestion struct {
	ID          uint   `json:"id"`
	Question    string `json:"question"`
	Answer      string `json:"answer"`
	Explanation string `json:"explanation"`
	Difficulty  string `json:"difficulty"`
}

type legacyWrong struct {
	QuestionID    uint   `json:"questionId"`
	Question      string `json:"question"`
	UserAnswer    string `json:"userAnswer"`
	CorrectAnswer string `json:"correctAnswer"`
	Explanation   string `json:"explanation"`
	Timestamp     int64  `json:"timestamp"`
}

type legacyRecord struct {
	QuestionID    uint   `json:"questionId"`
	Question      string `json:"question"`
	UserAnswer    string `json:"userAnswer"`
	CorrectAnswer string `json:"correctAnswer"`
	IsCorrect     bool   `json:"isCorrect"`
	Timestamp     int64  `json:"timestamp"`
	Accuracy      int    `json:"accuracy"`
}

type legacyUser struct {
	ID                         string          `json:"id"`
	ClassName                  string          `json:"className"`
	Name                       string          `json:"name"`
	Account                    string          `json:"account"`
	Level                      int             `json:"level"`
	Elements                   models.Elements `json:"elements"`
	WrongQuestions             []legacyWrong   `json:"wrongQuestions"`
	AnsweredQuestions          []uint          `json:"answeredQuestions"`
	AnsweredChallengeQuestions []uint          `json:"answeredChallengeQuestions"`
	AnswerHistory              []legacyRecord  `json:"answerHistory"`
	DailyUsage                 struct {
		Date      string `json:"date"`
		Duration  int    `json:"duration"`
		LoginTime int64  `json:"loginTime"`
	} `json:"dailyUsage"`
	Statistics models.Statistics `json:"statistics"`
}

type legacyBroadcast struct {
	ClassName string `json:"className"`
	Name      string `json:"name"`
	Action    string `json:"action"`
	Element   string `json:"element"`
	Time      int64  `json:"time"`
}

type legacyGameData struct {
	Users      []legacyUser      `json:"users"`
	Broadcasts []legacyBroadcast `json:"broadcasts"` // newest first
}

// readJSON decodes path into v. A missing file is not an error; it reports
// false so the caller can skip that store.
func readJSON(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("parse %s: %w", path, err)
	}
	return true, nil
}

func millis(ms int64) time.Time {
	if ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

// usageDate converts "Mon Oct 19 2026" into the YYYY-MM-DD day key. Unknown
// values yield "" which makes the next login start a fresh day.
func usageDate(s string) string {
	t, err := time.Parse("Mon Jan 02 2006", s)
	if err != nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func convertStudent(s legacyStudent) models.Student {
	return models.Student{ClassName: s.ClassName, Name: s.Name, Account: s.Account}
}

func convertQuestion(q legacyQuestion) (models.Question, error) {
	d, ok := models.ParseDifficulty(q.Difficulty)
	if !ok {
		return models.Question{}, fmt.Errorf("question %d: unknown difficulty %q", q.ID, q.Difficulty)
	}
	return models.Question{
		Question:    q.Question,
		Answer:      q.Answer,
		Explanation: q.Explanation,
		Difficulty:  d,
	}, nil
}

// remap rewrites a legacy question ID to the ID the store assigned. IDs of
// questions missing from questions.json become 0, which no stored question
// uses, so they can never shadow a newly assigned ID.
func remap(ids map[uint]uint, id uint) uint {
	return ids[id]
}

// remapAnswered rewrites an answered set, dropping questions that were not
// imported.
func remapAnswered(ids map[uint]uint, answered []uint) []uint {
	out := make([]uint, 0, len(answered))
	for _, id := range answered {
		if n, ok := ids[id]; ok {
			out = append(out, n)
		}
	}
	return out
}

func convertUser(u legacyUser, ids map[uint]uint) models.User {
	out := models.User{
		ID:         u.ID,
		ClassName:  u.ClassName,
		Name:       u.Name,
		Account:    u.Account,
		Level:      max(u.Level, 1),
		Elements:   u.Elements,
		Statistics: u.Statistics,
		DailyUsage: models.DailyUsage{
			Date:      usageDate(u.DailyUsage.Date),
			Duration:  u.DailyUsage.Duration,
			LoginTime: millis(u.DailyUsage.LoginTime),
		},
	}
	if out.ID == "" {
		out.ID = uuid.NewString()
	}

	out.AnsweredQuestions = remapAnswered(ids, u.AnsweredQuestions)
	out.AnsweredChallengeQuestions = remapAnswered(ids, u.AnsweredChallengeQuestions)
	for _, w := range u.WrongQuestions {
		out.WrongQuestions = append(out.WrongQuestions, models.WrongQuestion{
			QuestionID:    remap(ids, w.QuestionID),
			Question:      w.Question,
			UserAnswer:    w.UserAnswer,
			CorrectAnswer: w.CorrectAnswer,
			Explanation:   w.Explanation,
			Timestamp:     millis(w.Timestamp),
		})
	}
	for _, r := range u.AnswerHistory {
		out.AnswerHistory = append(out.AnswerHistory, models.AnswerRecord{
			QuestionID:    remap(ids, r.QuestionID),
			Question:      r.Question,
			UserAnswer:    r.UserAnswer,
			CorrectAnswer: r.CorrectAnswer,
			IsCorrect:     r.IsCorrect,
			Timestamp:     millis(r.Timestamp),
			Accuracy:      r.Accuracy,
		})
	}
	return out
}

func convertBroadcast(b legacyBroadcast) (models.Broadcast, bool) {
	el, ok := models.ParseElement(b.Element)
	if !ok {
		return models.Broadcast{}, false
	}
	return models.Broadcast{
		ClassName: b.ClassName,
		Name:      b.Name,
		Action:    b.Action,
		Element:   el,
		CreatedAt: millis(b.Time),
	}, true
}
