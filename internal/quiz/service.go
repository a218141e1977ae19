package quiz

import (
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"personality-quiz-system/internal/models"
)

// DetailCache holds composite quiz views between reads. The view is identical
// for every authorized reader, so entries are keyed by quiz id alone; access
// is always re-checked before a cached view is served.
type DetailCache interface {
	GetQuizDetail(quizID string) (*models.QuizDetail, error)
	SetQuizDetail(detail *models.QuizDetail) error
	InvalidateQuiz(quizID string) error
}

// ResultNotifier pushes freshly recorded results to live owner dashboards.
type ResultNotifier interface {
	BroadcastResult(quizID string, result *models.QuizResult)
}

type Service struct {
	repo  Repository
	guard *Guard
	cache DetailCache
	hub   ResultNotifier
}

// NewService wires the quiz service. cache and hub may be nil; caching and
// live notifications are then skipped.
func NewService(repo Repository, cache DetailCache, hub ResultNotifier) *Service {
	return &Service{
		repo:  repo,
		guard: NewGuard(repo),
		cache: cache,
		hub:   hub,
	}
}

type QuizInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Language    string `json:"language"`
	IsActive    *bool  `json:"is_active"`
}

type TypeInput struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type QuestionInput struct {
	ID           string `json:"id"`
	OrderIndex   int    `json:"order_index"`
	QuestionText string `json:"question_text"`
	HelpText     string `json:"help_text"`
}

type OptionInput struct {
	ID         string          `json:"id"`
	OrderIndex int             `json:"order_index"`
	OptionText string          `json:"option_text"`
	TypeScores models.ScoreMap `json:"type_scores"`
}

type ResultInput struct {
	DominantTypeID string          `json:"dominant_type_id"`
	ResultSummary  string          `json:"result_summary"`
	Scores         models.ScoreMap `json:"scores"`
}

func requireUser(userID string) error {
	if userID == "" {
		return NewUnauthorizedError("authentication required")
	}
	return nil
}

func (s *Service) CreateQuiz(userID string, in QuizInput) (*models.Quiz, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, NewBadRequestError("title is required")
	}

	now := time.Now().UTC()
	owner := userID
	quiz := &models.Quiz{
		ID:          uuid.New().String(),
		CreatedAt:   now,
		UpdatedAt:   now,
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Language:    in.Language,
		UserID:      &owner,
		IsSystem:    false,
		IsActive:    true,
	}
	if err := s.repo.CreateQuiz(quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

// UpdateQuiz full-replaces the editable fields. IsActive keeps its current
// value when the input omits it.
func (s *Service) UpdateQuiz(userID, quizID string, in QuizInput) (*models.Quiz, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	quiz, err := s.guard.ResolveOwned(quizID, userID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, NewBadRequestError("title is required")
	}

	quiz.Title = in.Title
	quiz.Description = in.Description
	quiz.Category = in.Category
	quiz.Language = in.Language
	if in.IsActive != nil {
		quiz.IsActive = *in.IsActive
	}
	quiz.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateQuiz(quiz); err != nil {
		return nil, err
	}
	s.invalidate(quizID)
	return quiz, nil
}

// ArchiveQuiz is the only delete path for a quiz: a soft archive. Types,
// questions, options and results are left untouched.
func (s *Service) ArchiveQuiz(userID, quizID string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	quiz, err := s.guard.ResolveOwned(quizID, userID)
	if err != nil {
		return err
	}

	quiz.IsActive = false
	quiz.UpdatedAt = time.Now().UTC()
	if err := s.repo.UpdateQuiz(quiz); err != nil {
		return err
	}
	s.invalidate(quizID)
	return nil
}

func (s *Service) ListMyQuizzes(userID string, includeInactive bool) ([]models.Quiz, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	return s.repo.GetQuizzesByOwner(userID, includeInactive)
}

// GetQuizWithDetails composes the quiz with its types and its questions with
// their options, sorted by order index. The composite view is read through
// the cache after the access check.
func (s *Service) GetQuizWithDetails(userID, quizID string) (*models.QuizDetail, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	quiz, err := s.guard.ResolveAccessible(quizID, userID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if detail, err := s.cache.GetQuizDetail(quizID); err == nil && detail != nil {
			return detail, nil
		}
	}

	types, err := s.repo.GetTypesByQuiz(quizID)
	if err != nil {
		return nil, err
	}
	questions, err := s.repo.GetQuestionsByQuiz(quizID)
	if err != nil {
		return nil, err
	}

	questionIDs := make([]string, len(questions))
	for i, q := range questions {
		questionIDs[i] = q.ID
	}
	options, err := s.repo.GetOptionsByQuestions(questionIDs)
	if err != nil {
		return nil, err
	}

	byQuestion := make(map[string][]models.Option, len(questions))
	for _, o := range options {
		byQuestion[o.QuestionID] = append(byQuestion[o.QuestionID], o)
	}

	detail := &models.QuizDetail{
		Quiz:      *quiz,
		Types:     types,
		Questions: make([]models.QuestionDetail, len(questions)),
	}
	for i, q := range questions {
		opts := byQuestion[q.ID]
		if opts == nil {
			opts = []models.Option{}
		}
		detail.Questions[i] = models.QuestionDetail{Question: q, Options: opts}
	}

	if s.cache != nil {
		if err := s.cache.SetQuizDetail(detail); err != nil {
			log.Printf("Error caching detail for quiz %s: %v", quizID, err)
		}
	}
	return detail, nil
}

// UpsertType creates a new personality type under the quiz, or updates an
// existing one in place when an id is supplied.
func (s *Service) UpsertType(userID, quizID string, in TypeInput) (*models.PersonalityType, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if _, err := s.guard.ResolveOwned(quizID, userID); err != nil {
		return nil, err
	}

	if in.ID != "" {
		t, err := s.repo.GetTypeByID(in.ID)
		if err != nil {
			return nil, err
		}
		if t.QuizID != quizID {
			return nil, NewForbiddenError("personality type does not belong to this quiz")
		}
		t.Code = in.Code
		t.Name = in.Name
		t.Description = in.Description
		if err := s.repo.UpdateType(t); err != nil {
			return nil, err
		}
		s.invalidate(quizID)
		return t, nil
	}

	t := &models.PersonalityType{
		ID:          uuid.New().String(),
		CreatedAt:   time.Now().UTC(),
		QuizID:      quizID,
		Code:        in.Code,
		Name:        in.Name,
		Description: in.Description,
	}
	if err := s.repo.CreateType(t); err != nil {
		return nil, err
	}
	s.invalidate(quizID)
	return t, nil
}

// DeleteType hard-deletes the type. Results that referenced it as their
// dominant type get the reference cleared by the repository.
func (s *Service) DeleteType(userID, quizID, typeID string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	if _, err := s.guard.ResolveOwned(quizID, userID); err != nil {
		return err
	}
	t, err := s.repo.GetTypeByID(typeID)
	if err != nil {
		return err
	}
	if t.QuizID != quizID {
		return NewForbiddenError("personality type does not belong to this quiz")
	}
	if err := s.repo.DeleteType(typeID); err != nil {
		return err
	}
	s.invalidate(quizID)
	return nil
}

func (s *Service) UpsertQuestion(userID, quizID string, in QuestionInput) (*models.Question, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if _, err := s.guard.ResolveOwned(quizID, userID); err != nil {
		return nil, err
	}

	if in.ID != "" {
		q, err := s.repo.GetQuestionByID(in.ID)
		if err != nil {
			return nil, err
		}
		if q.QuizID != quizID {
			return nil, NewForbiddenError("question does not belong to this quiz")
		}
		q.OrderIndex = in.OrderIndex
		q.QuestionText = in.QuestionText
		q.HelpText = in.HelpText
		if err := s.repo.UpdateQuestion(q); err != nil {
			return nil, err
		}
		s.invalidate(quizID)
		return q, nil
	}

	q := &models.Question{
		ID:           uuid.New().String(),
		CreatedAt:    time.Now().UTC(),
		QuizID:       quizID,
		OrderIndex:   in.OrderIndex,
		QuestionText: in.QuestionText,
		HelpText:     in.HelpText,
	}
	if err := s.repo.CreateQuestion(q); err != nil {
		return nil, err
	}
	s.invalidate(quizID)
	return q, nil
}

// DeleteQuestion removes the question and cascades to its options.
func (s *Service) DeleteQuestion(userID, quizID, questionID string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	if _, err := s.guard.ResolveOwned(quizID, userID); err != nil {
		return err
	}
	q, err := s.repo.GetQuestionByID(questionID)
	if err != nil {
		return err
	}
	if q.QuizID != quizID {
		return NewForbiddenError("question does not belong to this quiz")
	}
	if err := s.repo.DeleteQuestion(questionID); err != nil {
		return err
	}
	s.invalidate(quizID)
	return nil
}

// UpsertOption resolves ownership transitively: option -> question -> quiz.
// TypeScores keys are stored as given; they are not checked against the
// quiz's type set.
func (s *Service) UpsertOption(userID, questionID string, in OptionInput) (*models.Option, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	question, err := s.repo.GetQuestionByID(questionID)
	if err != nil {
		return nil, err
	}
	if _, err := s.guard.ResolveOwned(question.QuizID, userID); err != nil {
		return nil, err
	}

	if in.ID != "" {
		o, err := s.repo.GetOptionByID(in.ID)
		if err != nil {
			return nil, err
		}
		if o.QuestionID != questionID {
			return nil, NewForbiddenError("option does not belong to this question")
		}
		o.OrderIndex = in.OrderIndex
		o.OptionText = in.OptionText
		o.TypeScores = in.TypeScores
		if err := s.repo.UpdateOption(o); err != nil {
			return nil, err
		}
		s.invalidate(question.QuizID)
		return o, nil
	}

	o := &models.Option{
		ID:         uuid.New().String(),
		CreatedAt:  time.Now().UTC(),
		QuestionID: questionID,
		OrderIndex: in.OrderIndex,
		OptionText: in.OptionText,
		TypeScores: in.TypeScores,
	}
	if err := s.repo.CreateOption(o); err != nil {
		return nil, err
	}
	s.invalidate(question.QuizID)
	return o, nil
}

func (s *Service) DeleteOption(userID, questionID, optionID string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	question, err := s.repo.GetQuestionByID(questionID)
	if err != nil {
		return err
	}
	if _, err := s.guard.ResolveOwned(question.QuizID, userID); err != nil {
		return err
	}
	o, err := s.repo.GetOptionByID(optionID)
	if err != nil {
		return err
	}
	if o.QuestionID != questionID {
		return NewForbiddenError("option does not belong to this question")
	}
	if err := s.repo.DeleteOption(optionID); err != nil {
		return err
	}
	s.invalidate(question.QuizID)
	return nil
}

// RecordResult persists one immutable quiz result for the requesting user.
// Scores and the dominant type are computed by the caller; the only check
// here is that a supplied dominant type belongs to the same quiz.
func (s *Service) RecordResult(userID, quizID string, in ResultInput) (string, error) {
	if err := requireUser(userID); err != nil {
		return "", err
	}
	if _, err := s.guard.ResolveAccessible(quizID, userID); err != nil {
		return "", err
	}

	var dominant *string
	if in.DominantTypeID != "" {
		t, err := s.repo.GetTypeByID(in.DominantTypeID)
		if err != nil || t.QuizID != quizID {
			return "", NewBadRequestError("dominant type does not belong to this quiz")
		}
		dominant = &in.DominantTypeID
	}

	res := &models.QuizResult{
		ID:             uuid.New().String(),
		CreatedAt:      time.Now().UTC(),
		QuizID:         quizID,
		UserID:         userID,
		DominantTypeID: dominant,
		ResultSummary:  in.ResultSummary,
		Scores:         in.Scores,
	}
	if err := s.repo.CreateResult(res); err != nil {
		return "", err
	}
	if s.hub != nil {
		s.hub.BroadcastResult(quizID, res)
	}
	return res.ID, nil
}

// ListResults returns a quiz's recorded results, newest first. Owner only.
func (s *Service) ListResults(userID, quizID string) ([]models.QuizResult, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if _, err := s.guard.ResolveOwned(quizID, userID); err != nil {
		return nil, err
	}
	return s.repo.GetResultsByQuiz(quizID)
}

func (s *Service) invalidate(quizID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateQuiz(quizID); err != nil {
		log.Printf("Error invalidating cache for quiz %s: %v", quizID, err)
	}
}
