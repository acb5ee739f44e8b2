package models

import (
	"time"

	"github.com/google/uuid"
)

type QuestionSetStatus string

const (
	StatusQueued     QuestionSetStatus = "queued"
	StatusProcessing QuestionSetStatus = "processing"
	StatusCompleted  QuestionSetStatus = "completed"
	StatusFailed     QuestionSetStatus = "failed"
)

// QuestionSet is one question-generation job over a source document.
type QuestionSet struct {
	ID           uuid.UUID         `gorm:"type:uuid;primary_key" json:"id"`
	DocumentID   uuid.UUID         `gorm:"type:uuid;not null" json:"document_id"`
	NumQuestions int               `gorm:"not null;default:15" json:"num_questions"`
	Status       QuestionSetStatus `gorm:"not null;default:'queued'" json:"status"`
	ErrorMessage string            `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt    time.Time         `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time         `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Relations
	Document  Document         `gorm:"foreignKey:DocumentID" json:"-"`
	Questions []QuestionAnswer `gorm:"foreignKey:QuestionSetID" json:"questions,omitempty"`
}

func (QuestionSet) TableName() string {
	return "question_sets"
}

// QuestionAnswer is one generated question with its reference answer.
type QuestionAnswer struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	QuestionSetID uuid.UUID `gorm:"type:uuid;not null;index" json:"question_set_id"`
	Position      int       `gorm:"not null" json:"position"`
	Question      string    `gorm:"type:text;not null" json:"question"`
	Answer        string    `gorm:"type:text;not null" json:"answer"`
	CreatedAt     time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (QuestionAnswer) TableName() string {
	return "question_answers"
}
