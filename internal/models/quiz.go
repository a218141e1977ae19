package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ScoreMap is a sparse mapping from personality type ID to a numeric weight.
// Absent keys contribute zero. Keys are not validated against the quiz's type
// set; the stored form is plain JSON text.
type ScoreMap map[string]float64

func (m ScoreMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (m *ScoreMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("cannot scan %T into ScoreMap", value)
	}
}

type User struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Username  string    `json:"username" gorm:"uniqueIndex;not null"`
	Email     string    `json:"email"`
	Password  string    `json:"-" gorm:"not null"`
}

// Quiz is a user-authored personality quiz. A quiz with no owning user is a
// system quiz: publicly readable, mutable by nobody. Deletion is modeled as
// IsActive=false; quizzes are never physically removed.
type Quiz struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Title       string    `json:"title" gorm:"not null"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Language    string    `json:"language"`
	UserID      *string   `json:"user_id,omitempty" gorm:"index"`
	IsSystem    bool      `json:"is_system"`
	IsActive    bool      `json:"is_active"`
}

// PersonalityType is one of a quiz's possible outcomes. Code is a short
// convention-only label ("INTJ", "A"); uniqueness is not enforced.
type PersonalityType struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	CreatedAt   time.Time `json:"created_at"`
	QuizID      string    `json:"quiz_id" gorm:"index;not null"`
	Code        string    `json:"code" gorm:"not null"`
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description"`
}

type Question struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	CreatedAt    time.Time `json:"created_at"`
	QuizID       string    `json:"quiz_id" gorm:"index;not null"`
	OrderIndex   int       `json:"order_index"`
	QuestionText string    `json:"question_text" gorm:"not null"`
	HelpText     string    `json:"help_text"`
}

type Option struct {
	ID         string    `json:"id" gorm:"primaryKey"`
	CreatedAt  time.Time `json:"created_at"`
	QuestionID string    `json:"question_id" gorm:"index;not null"`
	OrderIndex int       `json:"order_index"`
	OptionText string    `json:"option_text" gorm:"not null"`
	TypeScores ScoreMap  `json:"type_scores,omitempty" gorm:"type:text"`
}

// QuizResult records one quiz-taking event. Immutable after insert; the
// dominant type is computed by the caller, never here. DominantTypeID is a
// weak reference: deleting the type clears it rather than leaving it dangling.
type QuizResult struct {
	ID             string    `json:"id" gorm:"primaryKey"`
	CreatedAt      time.Time `json:"created_at"`
	QuizID         string    `json:"quiz_id" gorm:"index;not null"`
	UserID         string    `json:"user_id" gorm:"index;not null"`
	DominantTypeID *string   `json:"dominant_type_id,omitempty"`
	ResultSummary  string    `json:"result_summary"`
	Scores         ScoreMap  `json:"scores,omitempty" gorm:"type:text"`
}
