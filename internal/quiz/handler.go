package quiz

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"data":    data,
	})
}

func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if se, ok := AsServiceError(err); ok {
		switch se.Kind {
		case ErrorUnauthorized:
			status = http.StatusUnauthorized
		case ErrorNotFound:
			status = http.StatusNotFound
		case ErrorForbidden:
			status = http.StatusForbidden
		case ErrorBadRequest:
			status = http.StatusBadRequest
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   err.Error(),
	})
}

func userIDFrom(r *http.Request) string {
	userID, _ := r.Context().Value("user_id").(string)
	return userID
}

func (h *Handler) CreateQuiz(w http.ResponseWriter, r *http.Request) {
	var in QuizInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, NewBadRequestError("invalid request body"))
		return
	}

	quiz, err := h.service.CreateQuiz(userIDFrom(r), in)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, quiz)
}

func (h *Handler) ListMyQuizzes(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("include_inactive") == "true"

	quizzes, err := h.service.ListMyQuizzes(userIDFrom(r), includeInactive)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, quizzes)
}

func (h *Handler) GetQuizWithDetails(w http.ResponseWriter, r *http.Request) {
	quizID := mux.Vars(r)["quizID"]

	detail, err := h.service.GetQuizWithDetails(userIDFrom(r), quizID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, detail)
}

func (h *Handler) UpdateQuiz(w http.ResponseWriter, r *http.Request) {
	quizID := mux.Vars(r)["quizID"]

	var in QuizInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, NewBadRequestError("invalid request body"))
		return
	}

	quiz, err := h.service.UpdateQuiz(userIDFrom(r), quizID, in)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, quiz)
}

func (h *Handler) ArchiveQuiz(w http.ResponseWriter, r *http.Request) {
	quizID := mux.Vars(r)["quizID"]

	if err := h.service.ArchiveQuiz(userIDFrom(r), quizID); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "archived"})
}

func (h *Handler) UpsertType(w http.ResponseWriter, r *http.Request) {
	quizID := mux.Vars(r)["quizID"]

	var in TypeInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, NewBadRequestError("invalid request body"))
		return
	}

	t, err := h.service.UpsertType(userIDFrom(r), quizID, in)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, t)
}

func (h *Handler) DeleteType(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	if err := h.service.DeleteType(userIDFrom(r), vars["quizID"], vars["typeID"]); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) UpsertQuestion(w http.ResponseWriter, r *http.Request) {
	quizID := mux.Vars(r)["quizID"]

	var in QuestionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, NewBadRequestError("invalid request body"))
		return
	}

	q, err := h.service.UpsertQuestion(userIDFrom(r), quizID, in)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, q)
}

func (h *Handler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	if err := h.service.DeleteQuestion(userIDFrom(r), vars["quizID"], vars["questionID"]); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) UpsertOption(w http.ResponseWriter, r *http.Request) {
	questionID := mux.Vars(r)["questionID"]

	var in OptionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, NewBadRequestError("invalid request body"))
		return
	}

	o, err := h.service.UpsertOption(userIDFrom(r), questionID, in)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

func (h *Handler) DeleteOption(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	if err := h.service.DeleteOption(userIDFrom(r), vars["questionID"], vars["optionID"]); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) RecordResult(w http.ResponseWriter, r *http.Request) {
	quizID := mux.Vars(r)["quizID"]

	var in ResultInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, NewBadRequestError("invalid request body"))
		return
	}

	id, err := h.service.RecordResult(userIDFrom(r), quizID, in)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"result_id": id})
}

func (h *Handler) ListResults(w http.ResponseWriter, r *http.Request) {
	quizID := mux.Vars(r)["quizID"]

	results, err := h.service.ListResults(userIDFrom(r), quizID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, results)
}
