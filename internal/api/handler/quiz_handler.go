package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/dan-koller/Spring-Web-Quiz-Engine/internal/api/middleware"
	"github.com/dan-koller/Spring-Web-Quiz-Engine/internal/app/service"
	"github.com/dan-koller/Spring-Web-Quiz-Engine/internal/common"

	"github.com/go-chi/chi/v5"
)

type QuizHandler struct {
	quizService *service.QuizService
}

func NewQuizHandler(quizService *service.QuizService) *QuizHandler {
	return &QuizHandler{quizService: quizService}
}

// RegisterRoutes mounts the quiz routes; the caller wraps them with the
// authenticator, so every handler can rely on a resolved user in the context.
func (h *QuizHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.listQuizzes)
	r.Post("/", h.createQuiz)
	r.Get("/completed", h.listCompletedQuizzes)
	r.Get("/{quizID}", h.getQuiz)
	r.Post("/{quizID}/solve", h.solveQuiz)
	r.Delete("/{quizID}", h.deleteQuiz)
	r.Patch("/{quizID}", h.patchQuiz)
}

func (h *QuizHandler) getQuiz(w http.ResponseWriter, r *http.Request) {
	id, err := quizIDParam(r)
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid quiz id")
		return
	}

	quiz, err := h.quizService.GetQuizByID(r.Context(), id)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, quiz)
}

func (h *QuizHandler) listQuizzes(w http.ResponseWriter, r *http.Request) {
	query, err := parsePageQuery(r)
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.quizService.ListQuizzes(r.Context(), query)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, page)
}

func (h *QuizHandler) listCompletedQuizzes(w http.ResponseWriter, r *http.Request) {
	userEmail, ok := middleware.GetUserEmailFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}
	query, err := parsePageQuery(r)
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.quizService.ListCompletedQuizzes(r.Context(), userEmail, query)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, page)
}

func (h *QuizHandler) createQuiz(w http.ResponseWriter, r *http.Request) {
	userEmail, ok := middleware.GetUserEmailFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var req service.QuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	quiz, err := h.quizService.CreateQuiz(r.Context(), userEmail, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, quiz)
}

func (h *QuizHandler) solveQuiz(w http.ResponseWriter, r *http.Request) {
	userEmail, ok := middleware.GetUserEmailFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}
	id, err := quizIDParam(r)
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid quiz id")
		return
	}

	// A missing body or a missing "answer" key both mean an empty submission.
	var req struct {
		Answer []int `json:"answer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	result, err := h.quizService.SolveQuiz(r.Context(), userEmail, id, req.Answer)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, result)
}

func (h *QuizHandler) deleteQuiz(w http.ResponseWriter, r *http.Request) {
	userEmail, ok := middleware.GetUserEmailFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}
	id, err := quizIDParam(r)
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid quiz id")
		return
	}

	if err := h.quizService.DeleteQuiz(r.Context(), userEmail, id); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *QuizHandler) patchQuiz(w http.ResponseWriter, r *http.Request) {
	userEmail, ok := middleware.GetUserEmailFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}
	id, err := quizIDParam(r)
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid quiz id")
		return
	}

	var req service.QuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	quiz, err := h.quizService.PatchQuiz(r.Context(), userEmail, id, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, quiz)
}

func quizIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "quizID"), 10, 64)
}

func parsePageQuery(r *http.Request) (service.PageQuery, error) {
	query := service.PageQuery{SortBy: r.URL.Query().Get("sortBy")}

	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil {
			return service.PageQuery{}, errors.New("page must be an integer")
		}
		query.Page = page
	}
	if pageSizeStr := r.URL.Query().Get("pageSize"); pageSizeStr != "" {
		pageSize, err := strconv.Atoi(pageSizeStr)
		if err != nil {
			return service.PageQuery{}, errors.New("pageSize must be an integer")
		}
		query.PageSize = pageSize
	}
	return query, nil
}
