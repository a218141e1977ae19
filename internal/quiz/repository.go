package quiz

import (
	"errors"
	"log"

	"gorm.io/gorm"

	"personality-quiz-system/internal/models"
)

// Repository is the persistence surface the quiz services run on. Lookup
// methods return a not_found ServiceError when the row is absent, so callers
// never see gorm sentinels.
type Repository interface {
	CreateQuiz(quiz *models.Quiz) error
	GetQuizByID(id string) (*models.Quiz, error)
	UpdateQuiz(quiz *models.Quiz) error
	GetQuizzesByOwner(userID string, includeInactive bool) ([]models.Quiz, error)

	CreateType(t *models.PersonalityType) error
	GetTypeByID(id string) (*models.PersonalityType, error)
	UpdateType(t *models.PersonalityType) error
	DeleteType(id string) error
	GetTypesByQuiz(quizID string) ([]models.PersonalityType, error)

	CreateQuestion(q *models.Question) error
	GetQuestionByID(id string) (*models.Question, error)
	UpdateQuestion(q *models.Question) error
	DeleteQuestion(id string) error
	GetQuestionsByQuiz(quizID string) ([]models.Question, error)

	CreateOption(o *models.Option) error
	GetOptionByID(id string) (*models.Option, error)
	UpdateOption(o *models.Option) error
	DeleteOption(id string) error
	GetOptionsByQuestions(questionIDs []string) ([]models.Option, error)

	CreateResult(res *models.QuizResult) error
	GetResultsByQuiz(quizID string) ([]models.QuizResult, error)
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) CreateQuiz(quiz *models.Quiz) error {
	if err := r.db.Create(quiz).Error; err != nil {
		log.Printf("Error creating quiz: %v", err)
		return err
	}
	return nil
}

func (r *gormRepository) GetQuizByID(id string) (*models.Quiz, error) {
	var quiz models.Quiz
	err := r.db.First(&quiz, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("quiz not found")
		}
		log.Printf("Error getting quiz %s: %v", id, err)
		return nil, err
	}
	return &quiz, nil
}

func (r *gormRepository) UpdateQuiz(quiz *models.Quiz) error {
	if err := r.db.Save(quiz).Error; err != nil {
		log.Printf("Error updating quiz %s: %v", quiz.ID, err)
		return err
	}
	return nil
}

func (r *gormRepository) GetQuizzesByOwner(userID string, includeInactive bool) ([]models.Quiz, error) {
	q := r.db.Where("user_id = ?", userID)
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}
	var quizzes []models.Quiz
	if err := q.Order("created_at asc").Find(&quizzes).Error; err != nil {
		log.Printf("Error listing quizzes for user %s: %v", userID, err)
		return nil, err
	}
	return quizzes, nil
}

func (r *gormRepository) CreateType(t *models.PersonalityType) error {
	return r.db.Create(t).Error
}

func (r *gormRepository) GetTypeByID(id string) (*models.PersonalityType, error) {
	var t models.PersonalityType
	err := r.db.First(&t, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("personality type not found")
		}
		return nil, err
	}
	return &t, nil
}

func (r *gormRepository) UpdateType(t *models.PersonalityType) error {
	return r.db.Save(t).Error
}

// DeleteType removes the type and clears dominant_type_id on any results that
// referenced it, in one transaction. The result reference is a weak link and
// must never dangle.
func (r *gormRepository) DeleteType(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.QuizResult{}).
			Where("dominant_type_id = ?", id).
			Update("dominant_type_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&models.PersonalityType{}, "id = ?", id).Error
	})
}

func (r *gormRepository) GetTypesByQuiz(quizID string) ([]models.PersonalityType, error) {
	var types []models.PersonalityType
	err := r.db.Where("quiz_id = ?", quizID).Order("created_at asc").Find(&types).Error
	if err != nil {
		log.Printf("Error getting types for quiz %s: %v", quizID, err)
		return nil, err
	}
	return types, nil
}

func (r *gormRepository) CreateQuestion(q *models.Question) error {
	return r.db.Create(q).Error
}

func (r *gormRepository) GetQuestionByID(id string) (*models.Question, error) {
	var q models.Question
	err := r.db.First(&q, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("question not found")
		}
		return nil, err
	}
	return &q, nil
}

func (r *gormRepository) UpdateQuestion(q *models.Question) error {
	return r.db.Save(q).Error
}

// DeleteQuestion hard-deletes the question and every option under it. This is
// the only cascading delete in the system.
func (r *gormRepository) DeleteQuestion(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Option{}, "question_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Question{}, "id = ?", id).Error
	})
}

func (r *gormRepository) GetQuestionsByQuiz(quizID string) ([]models.Question, error) {
	var questions []models.Question
	err := r.db.Where("quiz_id = ?", quizID).
		Order("order_index asc, created_at asc").
		Find(&questions).Error
	if err != nil {
		log.Printf("Error getting questions for quiz %s: %v", quizID, err)
		return nil, err
	}
	return questions, nil
}

func (r *gormRepository) CreateOption(o *models.Option) error {
	return r.db.Create(o).Error
}

func (r *gormRepository) GetOptionByID(id string) (*models.Option, error) {
	var o models.Option
	err := r.db.First(&o, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("option not found")
		}
		return nil, err
	}
	return &o, nil
}

func (r *gormRepository) UpdateOption(o *models.Option) error {
	return r.db.Save(o).Error
}

func (r *gormRepository) DeleteOption(id string) error {
	return r.db.Delete(&models.Option{}, "id = ?", id).Error
}

func (r *gormRepository) GetOptionsByQuestions(questionIDs []string) ([]models.Option, error) {
	if len(questionIDs) == 0 {
		return []models.Option{}, nil
	}
	var options []models.Option
	err := r.db.Where("question_id IN ?", questionIDs).
		Order("order_index asc, created_at asc").
		Find(&options).Error
	if err != nil {
		log.Printf("Error getting options for %d questions: %v", len(questionIDs), err)
		return nil, err
	}
	return options, nil
}

func (r *gormRepository) CreateResult(res *models.QuizResult) error {
	if err := r.db.Create(res).Error; err != nil {
		log.Printf("Error creating result for quiz %s: %v", res.QuizID, err)
		return err
	}
	return nil
}

func (r *gormRepository) GetResultsByQuiz(quizID string) ([]models.QuizResult, error) {
	var results []models.QuizResult
	err := r.db.Where("quiz_id = ?", quizID).Order("created_at desc").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
