package quiz

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"personality-quiz-system/internal/models"
)

func seedQuiz(repo *stubRepository, id, owner string, system bool) *models.Quiz {
	quiz := &models.Quiz{
		ID:        id,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
		Title:     "Seeded",
		IsSystem:  system,
		IsActive:  true,
	}
	if owner != "" {
		quiz.UserID = &owner
	}
	repo.CreateQuiz(quiz)
	return quiz
}

func TestResolveOwned(t *testing.T) {
	repo := newStubRepository()
	seedQuiz(repo, "q1", "alice", false)
	seedQuiz(repo, "sys", "", true)
	guard := NewGuard(repo)

	t.Run("owner resolves", func(t *testing.T) {
		quiz, err := guard.ResolveOwned("q1", "alice")
		require.NoError(t, err)
		assert.Equal(t, "q1", quiz.ID)
	})

	t.Run("missing quiz is not found", func(t *testing.T) {
		_, err := guard.ResolveOwned("nope", "alice")
		assert.True(t, IsKind(err, ErrorNotFound))
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		_, err := guard.ResolveOwned("q1", "bob")
		assert.True(t, IsKind(err, ErrorForbidden))
	})

	t.Run("system quiz is owned by nobody", func(t *testing.T) {
		_, err := guard.ResolveOwned("sys", "alice")
		assert.True(t, IsKind(err, ErrorForbidden))
	})
}

func TestResolveAccessible(t *testing.T) {
	repo := newStubRepository()
	seedQuiz(repo, "q1", "alice", false)
	seedQuiz(repo, "sys", "", true)
	guard := NewGuard(repo)

	t.Run("owner has access", func(t *testing.T) {
		quiz, err := guard.ResolveAccessible("q1", "alice")
		require.NoError(t, err)
		assert.Equal(t, "q1", quiz.ID)
	})

	t.Run("system quiz readable by anyone", func(t *testing.T) {
		quiz, err := guard.ResolveAccessible("sys", "bob")
		require.NoError(t, err)
		assert.True(t, quiz.IsSystem)
	})

	t.Run("non-owner of a user quiz is forbidden", func(t *testing.T) {
		_, err := guard.ResolveAccessible("q1", "bob")
		assert.True(t, IsKind(err, ErrorForbidden))
	})

	t.Run("missing quiz is not found", func(t *testing.T) {
		_, err := guard.ResolveAccessible("nope", "bob")
		assert.True(t, IsKind(err, ErrorNotFound))
	})
}
