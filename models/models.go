// models/models.go - Roster, question bank and broadcast models
package models

import (
	"time"
)

// Difficulty partitions the question bank: easy/medium feed normal mode,
// hard feeds challenge mode.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty maps a stored or submitted label onto a Difficulty. Empty
// input yields the default (easy). The legacy Chinese labels are accepted so
// old question files import cleanly.
func ParseDifficulty(s string) (Difficulty, bool) {
	switch s {
	case "", "easy", "简单":
		return DifficultyEasy, true
	case "medium", "中等":
		return DifficultyMedium, true
	case "hard", "困难":
		return DifficultyHard, true
	}
	return "", false
}

// Student is a roster entry
type Student struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ClassName string    `json:"className" gorm:"not null;size:100;uniqueIndex:idx_students_class_name"`
	Name      string    `json:"name" gorm:"not null;size:100;uniqueIndex:idx_students_class_name"`
	Account   string    `json:"account" gorm:"size:100"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Question represents an arithmetic quiz question
type Question struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Question    string     `json:"question" gorm:"not null;type:text"`
	Answer      string     `json:"answer" gorm:"not null;size:500"`
	Explanation string     `json:"explanation" gorm:"type:text"`
	Difficulty  Difficulty `json:"difficulty" gorm:"default:'easy';size:20;index"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Broadcast announces a reward event on the live ticker
type Broadcast struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ClassName string    `json:"className" gorm:"size:100"`
	Name      string    `json:"name" gorm:"size:100"`
	Action    string    `json:"action" gorm:"size:50"`
	Element   Element   `json:"element" gorm:"size:20"`
	CreatedAt time.Time `json:"time" gorm:"index"`
}

func (Student) TableName() string {
	return "students"
}

func (Question) TableName() string {
	return "questions"
}

func (Broadcast) TableName() string {
	return "broadcasts"
}
