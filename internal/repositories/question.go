package repositories

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"prepview/interview-evaluator/internal/models"
)

type QuestionSetRepository interface {
	Create(set *models.QuestionSet) error
	FindByID(id uuid.UUID) (*models.QuestionSet, error)
	FindQuestionByID(id uuid.UUID) (*models.QuestionAnswer, error)
	UpdateStatus(id uuid.UUID, status models.QuestionSetStatus) error
	UpdateError(id uuid.UUID, errorMsg string) error
	SaveQuestions(id uuid.UUID, questions []models.QuestionAnswer) error
	FindPendingJobs(limit int) ([]models.QuestionSet, error)
	FindCompleted() ([]models.QuestionSet, error)
}

type questionSetRepository struct {
	db *gorm.DB
}

func NewQuestionSetRepository(db *gorm.DB) QuestionSetRepository {
	return &questionSetRepository{db: db}
}

func (r *questionSetRepository) Create(set *models.QuestionSet) error {
	if err := r.db.Create(set).Error; err != nil {
		return fmt.Errorf("failed to create question set: %w", err)
	}
	return nil
}

func (r *questionSetRepository) FindByID(id uuid.UUID) (*models.QuestionSet, error) {
	var set models.QuestionSet
	err := r.db.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("position asc")
	}).Where("id = ?", id).First(&set).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("question set not found")
		}
		return nil, fmt.Errorf("failed to find question set: %w", err)
	}
	return &set, nil
}

func (r *questionSetRepository) FindQuestionByID(id uuid.UUID) (*models.QuestionAnswer, error) {
	var qa models.QuestionAnswer
	if err := r.db.Where("id = ?", id).First(&qa).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("question not found")
		}
		return nil, fmt.Errorf("failed to find question: %w", err)
	}
	return &qa, nil
}

func (r *questionSetRepository) UpdateStatus(id uuid.UUID, status models.QuestionSetStatus) error {
	result := r.db.Model(&models.QuestionSet{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update status: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("question set not found")
	}

	return nil
}

func (r *questionSetRepository) UpdateError(id uuid.UUID, errorMsg string) error {
	result := r.db.Model(&models.QuestionSet{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        models.StatusFailed,
			"error_message": errorMsg,
			"updated_at":    time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update error: %w", result.Error)
	}

	return nil
}

// SaveQuestions stores the generated QA pairs and marks the set completed
// in a single transaction.
func (r *questionSetRepository) SaveQuestions(id uuid.UUID, questions []models.QuestionAnswer) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for i := range questions {
			questions[i].QuestionSetID = id
			if questions[i].ID == uuid.Nil {
				questions[i].ID = uuid.New()
			}
		}

		if err := tx.Create(&questions).Error; err != nil {
			return fmt.Errorf("failed to save questions: %w", err)
		}

		result := tx.Model(&models.QuestionSet{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"status":     models.StatusCompleted,
				"updated_at": time.Now(),
			})
		if result.Error != nil {
			return fmt.Errorf("failed to mark set completed: %w", result.Error)
		}

		return nil
	})
}

func (r *questionSetRepository) FindPendingJobs(limit int) ([]models.QuestionSet, error) {
	var sets []models.QuestionSet
	err := r.db.Where("status = ?", models.StatusQueued).
		Order("created_at asc").
		Limit(limit).
		Find(&sets).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find pending jobs: %w", err)
	}
	return sets, nil
}

func (r *questionSetRepository) FindCompleted() ([]models.QuestionSet, error) {
	var sets []models.QuestionSet
	err := r.db.Preload("Questions").
		Where("status = ?", models.StatusCompleted).
		Find(&sets).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find completed sets: %w", err)
	}
	return sets, nil
}
