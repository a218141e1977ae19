package quiz

import "personality-quiz-system/internal/models"

// Guard resolves a quiz and decides whether the acting user may touch it.
// Pure read + decision; it never mutates anything.
type Guard struct {
	repo Repository
}

func NewGuard(repo Repository) *Guard {
	return &Guard{repo: repo}
}

// ResolveOwned returns the quiz iff userID owns it. System quizzes have no
// owner, so they can never be resolved as owned by anyone.
func (g *Guard) ResolveOwned(quizID, userID string) (*models.Quiz, error) {
	quiz, err := g.repo.GetQuizByID(quizID)
	if err != nil {
		return nil, err
	}
	if quiz.UserID == nil || *quiz.UserID != userID {
		return nil, NewForbiddenError("quiz does not belong to you")
	}
	return quiz, nil
}

// ResolveAccessible returns the quiz iff it is a system quiz or userID owns
// it. There is no sharing model beyond that.
func (g *Guard) ResolveAccessible(quizID, userID string) (*models.Quiz, error) {
	quiz, err := g.repo.GetQuizByID(quizID)
	if err != nil {
		return nil, err
	}
	if quiz.IsSystem {
		return quiz, nil
	}
	if quiz.UserID == nil || *quiz.UserID != userID {
		return nil, NewForbiddenError("you do not have access to this quiz")
	}
	return quiz, nil
}
