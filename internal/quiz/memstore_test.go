package quiz

import (
	"sort"

	"personality-quiz-system/internal/models"
)

// stubRepository is a map-backed Repository used by the service and guard
// tests. It mirrors the gorm implementation's contract: lookups return
// not_found ServiceErrors, list methods sort the way the SQL queries order.
type stubRepository struct {
	quizzes   map[string]*models.Quiz
	types     map[string]*models.PersonalityType
	questions map[string]*models.Question
	options   map[string]*models.Option
	results   []*models.QuizResult

	seq int // insertion counter, stands in for created_at tiebreaks
	ord map[string]int
}

func newStubRepository() *stubRepository {
	return &stubRepository{
		quizzes:   map[string]*models.Quiz{},
		types:     map[string]*models.PersonalityType{},
		questions: map[string]*models.Question{},
		options:   map[string]*models.Option{},
		ord:       map[string]int{},
	}
}

func (s *stubRepository) track(id string) {
	s.seq++
	s.ord[id] = s.seq
}

func (s *stubRepository) CreateQuiz(quiz *models.Quiz) error {
	cp := *quiz
	s.quizzes[quiz.ID] = &cp
	s.track(quiz.ID)
	return nil
}

func (s *stubRepository) GetQuizByID(id string) (*models.Quiz, error) {
	if q, ok := s.quizzes[id]; ok {
		cp := *q
		return &cp, nil
	}
	return nil, NewNotFoundError("quiz not found")
}

func (s *stubRepository) UpdateQuiz(quiz *models.Quiz) error {
	if _, ok := s.quizzes[quiz.ID]; !ok {
		return NewNotFoundError("quiz not found")
	}
	cp := *quiz
	s.quizzes[quiz.ID] = &cp
	return nil
}

func (s *stubRepository) GetQuizzesByOwner(userID string, includeInactive bool) ([]models.Quiz, error) {
	out := []models.Quiz{}
	for _, q := range s.quizzes {
		if q.UserID == nil || *q.UserID != userID {
			continue
		}
		if !includeInactive && !q.IsActive {
			continue
		}
		out = append(out, *q)
	}
	sort.Slice(out, func(i, j int) bool { return s.ord[out[i].ID] < s.ord[out[j].ID] })
	return out, nil
}

func (s *stubRepository) CreateType(t *models.PersonalityType) error {
	cp := *t
	s.types[t.ID] = &cp
	s.track(t.ID)
	return nil
}

func (s *stubRepository) GetTypeByID(id string) (*models.PersonalityType, error) {
	if t, ok := s.types[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, NewNotFoundError("personality type not found")
}

func (s *stubRepository) UpdateType(t *models.PersonalityType) error {
	if _, ok := s.types[t.ID]; !ok {
		return NewNotFoundError("personality type not found")
	}
	cp := *t
	s.types[t.ID] = &cp
	return nil
}

func (s *stubRepository) DeleteType(id string) error {
	if _, ok := s.types[id]; !ok {
		return NewNotFoundError("personality type not found")
	}
	for _, res := range s.results {
		if res.DominantTypeID != nil && *res.DominantTypeID == id {
			res.DominantTypeID = nil
		}
	}
	delete(s.types, id)
	return nil
}

func (s *stubRepository) GetTypesByQuiz(quizID string) ([]models.PersonalityType, error) {
	out := []models.PersonalityType{}
	for _, t := range s.types {
		if t.QuizID == quizID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return s.ord[out[i].ID] < s.ord[out[j].ID] })
	return out, nil
}

func (s *stubRepository) CreateQuestion(q *models.Question) error {
	cp := *q
	s.questions[q.ID] = &cp
	s.track(q.ID)
	return nil
}

func (s *stubRepository) GetQuestionByID(id string) (*models.Question, error) {
	if q, ok := s.questions[id]; ok {
		cp := *q
		return &cp, nil
	}
	return nil, NewNotFoundError("question not found")
}

func (s *stubRepository) UpdateQuestion(q *models.Question) error {
	if _, ok := s.questions[q.ID]; !ok {
		return NewNotFoundError("question not found")
	}
	cp := *q
	s.questions[q.ID] = &cp
	return nil
}

func (s *stubRepository) DeleteQuestion(id string) error {
	if _, ok := s.questions[id]; !ok {
		return NewNotFoundError("question not found")
	}
	for oid, o := range s.options {
		if o.QuestionID == id {
			delete(s.options, oid)
		}
	}
	delete(s.questions, id)
	return nil
}

func (s *stubRepository) GetQuestionsByQuiz(quizID string) ([]models.Question, error) {
	out := []models.Question{}
	for _, q := range s.questions {
		if q.QuizID == quizID {
			out = append(out, *q)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OrderIndex != out[j].OrderIndex {
			return out[i].OrderIndex < out[j].OrderIndex
		}
		return s.ord[out[i].ID] < s.ord[out[j].ID]
	})
	return out, nil
}

func (s *stubRepository) CreateOption(o *models.Option) error {
	cp := *o
	s.options[o.ID] = &cp
	s.track(o.ID)
	return nil
}

func (s *stubRepository) GetOptionByID(id string) (*models.Option, error) {
	if o, ok := s.options[id]; ok {
		cp := *o
		return &cp, nil
	}
	return nil, NewNotFoundError("option not found")
}

func (s *stubRepository) UpdateOption(o *models.Option) error {
	if _, ok := s.options[o.ID]; !ok {
		return NewNotFoundError("option not found")
	}
	cp := *o
	s.options[o.ID] = &cp
	return nil
}

func (s *stubRepository) DeleteOption(id string) error {
	if _, ok := s.options[id]; !ok {
		return NewNotFoundError("option not found")
	}
	delete(s.options, id)
	return nil
}

func (s *stubRepository) GetOptionsByQuestions(questionIDs []string) ([]models.Option, error) {
	wanted := map[string]bool{}
	for _, id := range questionIDs {
		wanted[id] = true
	}
	out := []models.Option{}
	for _, o := range s.options {
		if wanted[o.QuestionID] {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OrderIndex != out[j].OrderIndex {
			return out[i].OrderIndex < out[j].OrderIndex
		}
		return s.ord[out[i].ID] < s.ord[out[j].ID]
	})
	return out, nil
}

func (s *stubRepository) CreateResult(res *models.QuizResult) error {
	cp := *res
	s.results = append(s.results, &cp)
	s.track(res.ID)
	return nil
}

func (s *stubRepository) GetResultsByQuiz(quizID string) ([]models.QuizResult, error) {
	out := []models.QuizResult{}
	for i := len(s.results) - 1; i >= 0; i-- {
		if s.results[i].QuizID == quizID {
			out = append(out, *s.results[i])
		}
	}
	return out, nil
}

// recordingNotifier captures broadcasts so tests can assert on them.
type recordingNotifier struct {
	quizIDs []string
	results []*models.QuizResult
}

func (n *recordingNotifier) BroadcastResult(quizID string, result *models.QuizResult) {
	n.quizIDs = append(n.quizIDs, quizID)
	n.results = append(n.results, result)
}

// fakeCache is a map-backed DetailCache recording invalidations.
type fakeCache struct {
	details     map[string]*models.QuizDetail
	invalidated []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{details: map[string]*models.QuizDetail{}}
}

func (c *fakeCache) GetQuizDetail(quizID string) (*models.QuizDetail, error) {
	return c.details[quizID], nil
}

func (c *fakeCache) SetQuizDetail(detail *models.QuizDetail) error {
	c.details[detail.Quiz.ID] = detail
	return nil
}

func (c *fakeCache) InvalidateQuiz(quizID string) error {
	delete(c.details, quizID)
	c.invalidated = append(c.invalidated, quizID)
	return nil
}
