// models/user.go
package models

import (
	"time"

	"gorm.io/datatypes"
)

// User is a student's progress record. It is created on first login (or lazily
// when someone gifts to a rostered student who never logged in).
type User struct {
	ID        string `gorm:"primaryKey;size:36" json:"id"`
	ClassName string `gorm:"not null;size:100;uniqueIndex:idx_users_class_name" json:"className"`
	Name      string `gorm:"not null;size:100;uniqueIndex:idx_users_class_name" json:"name"`
	Account   string `gorm:"size:100" json:"account"`

	// Progression
	Level    int      `gorm:"default:1;index" json:"level"`
	Elements Elements `gorm:"embedded;embeddedPrefix:element_" json:"elements"`

	// Question bookkeeping
	WrongQuestions             datatypes.JSONSlice[WrongQuestion] `json:"wrongQuestions"`
	AnsweredQuestions          datatypes.JSONSlice[uint]          `json:"answeredQuestions"`
	AnsweredChallengeQuestions datatypes.JSONSlice[uint]          `json:"answeredChallengeQuestions"`
	AnswerHistory              datatypes.JSONSlice[AnswerRecord]  `json:"answerHistory"`

	// Stats
	DailyUsage DailyUsage `gorm:"embedded;embeddedPrefix:usage_" json:"dailyUsage"`
	Statistics Statistics `gorm:"embedded;embeddedPrefix:stats_" json:"statistics"`

	// Timestamps
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WrongQuestion is one entry of the append-only wrong answer log.
type WrongQuestion struct {
	QuestionID    uint      `json:"questionId"`
	Question      string    `json:"question"`
	UserAnswer    string    `json:"userAnswer"`
	CorrectAnswer string    `json:"correctAnswer"`
	Explanation   string    `json:"explanation"`
	Timestamp     time.Time `json:"timestamp"`
}

// AnswerRecord is one entry of the bounded answer history.
type AnswerRecord struct {
	QuestionID    uint      `json:"questionId"`
	Question      string    `json:"question"`
	UserAnswer    string    `json:"userAnswer"`
	CorrectAnswer string    `json:"correctAnswer"`
	IsCorrect     bool      `json:"isCorrect"`
	Timestamp     time.Time `json:"timestamp"`
	Accuracy      int       `json:"accuracy"` // running accuracy right after this answer
}

// DailyUsage tracks the rolling daily play quota.
type DailyUsage struct {
	Date      string    `gorm:"size:10" json:"date"`       // YYYY-MM-DD
	Duration  int       `gorm:"default:0" json:"duration"` // seconds used today
	LoginTime time.Time `json:"loginTime"`                 // last login or sync
}

// Statistics holds running answer accuracy.
type Statistics struct {
	TotalQuestions   int `gorm:"default:0" json:"totalQuestions"`
	CorrectQuestions int `gorm:"default:0" json:"correctQuestions"`
	Accuracy         int `gorm:"default:0" json:"accuracy"` // percent, rounded
}
