package quiz

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter() (*mux.Router, *Service) {
	svc, _, _, _ := newTestService()
	h := NewHandler(svc)

	r := mux.NewRouter()
	r.HandleFunc("/api/quizzes", h.CreateQuiz).Methods("POST")
	r.HandleFunc("/api/quizzes", h.ListMyQuizzes).Methods("GET")
	r.HandleFunc("/api/quizzes/{quizID}", h.GetQuizWithDetails).Methods("GET")
	r.HandleFunc("/api/quizzes/{quizID}", h.UpdateQuiz).Methods("PUT")
	r.HandleFunc("/api/quizzes/{quizID}/results", h.RecordResult).Methods("POST")
	return r, svc
}

func doRequest(r *mux.Router, method, path, userID, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if userID != "" {
		req = req.WithContext(context.WithValue(req.Context(), "user_id", userID))
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandlerCreateQuiz(t *testing.T) {
	r, _ := newTestRouter()

	t.Run("missing user is 401", func(t *testing.T) {
		w := doRequest(r, "POST", "/api/quizzes", "", `{"title":"T"}`)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("bad body is 400", func(t *testing.T) {
		w := doRequest(r, "POST", "/api/quizzes", "alice", `{not json`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("created quiz comes back in the envelope", func(t *testing.T) {
		w := doRequest(r, "POST", "/api/quizzes", "alice", `{"title":"Learning Style"}`)
		require.Equal(t, http.StatusCreated, w.Code)

		var resp struct {
			Success bool `json:"success"`
			Data    struct {
				ID    string `json:"id"`
				Title string `json:"title"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.NotEmpty(t, resp.Data.ID)
		assert.Equal(t, "Learning Style", resp.Data.Title)
	})
}

func TestHandlerErrorMapping(t *testing.T) {
	r, svc := newTestRouter()
	quiz, err := svc.CreateQuiz("alice", QuizInput{Title: "Mine"})
	require.NoError(t, err)

	t.Run("absent quiz is 404", func(t *testing.T) {
		w := doRequest(r, "GET", "/api/quizzes/ghost", "alice", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("foreign quiz is 403", func(t *testing.T) {
		w := doRequest(r, "PUT", "/api/quizzes/"+quiz.ID, "bob", `{"title":"Hijacked"}`)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("cross-quiz dominant type is 400", func(t *testing.T) {
		w := doRequest(r, "POST", "/api/quizzes/"+quiz.ID+"/results", "alice",
			`{"dominant_type_id":"from-another-quiz"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("error envelope carries the message", func(t *testing.T) {
		w := doRequest(r, "GET", "/api/quizzes/ghost", "alice", "")
		var resp struct {
			Success bool   `json:"success"`
			Error   string `json:"error"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		assert.Equal(t, "quiz not found", resp.Error)
	})
}

func TestHandlerListMyQuizzes(t *testing.T) {
	r, svc := newTestRouter()
	_, err := svc.CreateQuiz("alice", QuizInput{Title: "Active"})
	require.NoError(t, err)
	archived, err := svc.CreateQuiz("alice", QuizInput{Title: "Archived"})
	require.NoError(t, err)
	require.NoError(t, svc.ArchiveQuiz("alice", archived.ID))

	count := func(path string) int {
		w := doRequest(r, "GET", path, "alice", "")
		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Data []json.RawMessage `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		return len(resp.Data)
	}

	assert.Equal(t, 1, count("/api/quizzes"))
	assert.Equal(t, 2, count("/api/quizzes?include_inactive=true"))
}
