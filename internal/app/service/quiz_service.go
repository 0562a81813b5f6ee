package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dan-koller/Spring-Web-Quiz-Engine/internal/common"
	"github.com/dan-koller/Spring-Web-Quiz-Engine/internal/domain/model"
	"github.com/dan-koller/Spring-Web-Quiz-Engine/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100

	feedbackCorrect = "Congratulations, you're right!"
	feedbackWrong   = "Wrong answer! Please, try again."
)

// Caller-supplied sort fields are restricted to these allow-lists; anything
// else is a bad request, never a silent default substitution.
var (
	quizSortColumns = map[string]string{
		"":      "id ASC",
		"id":    "id ASC",
		"title": "title ASC",
	}
	completionSortColumns = map[string]string{
		"":            "completed_at DESC",
		"completedAt": "completed_at DESC",
	}
)

// QuizService orchestrates quiz CRUD, ownership enforcement, answer validation
// and completion recording. It holds no state beyond the stores and the cache.
type QuizService struct {
	quizRepo      repository.QuizRepository
	completedRepo repository.CompletedQuizRepository
	userRepo      repository.UserRepository
	rdb           *redis.Client // optional projection cache; nil disables caching
	cacheTTL      time.Duration
}

func NewQuizService(
	quizRepo repository.QuizRepository,
	completedRepo repository.CompletedQuizRepository,
	userRepo repository.UserRepository,
	rdb *redis.Client,
	cacheTTL time.Duration,
) *QuizService {
	return &QuizService{
		quizRepo:      quizRepo,
		completedRepo: completedRepo,
		userRepo:      userRepo,
		rdb:           rdb,
		cacheTTL:      cacheTTL,
	}
}

type QuizRequest struct {
	Title   string   `json:"title"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
	Answer  []int    `json:"answer"` // may be absent (= no correct answer)
}

// QuizResponse is the public projection of a quiz. The answer key is never
// part of any response.
type QuizResponse struct {
	ID      int64    `json:"id"`
	Title   string   `json:"title"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

type AnswerResponse struct {
	Success  bool   `json:"success"`
	Feedback string `json:"feedback"`
}

type PageQuery struct {
	Page     int
	PageSize int
	SortBy   string
}

func toQuizResponse(quiz *model.Quiz) *QuizResponse {
	return &QuizResponse{
		ID:      quiz.ID,
		Title:   quiz.Title,
		Text:    quiz.Text,
		Options: quiz.Options,
	}
}

func (q PageQuery) normalize() (limit, offset int, err error) {
	if q.Page < 0 {
		return 0, 0, fmt.Errorf("page must not be negative: %w", common.ErrBadRequest)
	}
	limit = q.PageSize
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return limit, q.Page * limit, nil
}

func (s *QuizService) GetQuizByID(ctx context.Context, id int64) (*QuizResponse, error) {
	if cached, ok := s.cachedQuiz(ctx, id); ok {
		return cached, nil
	}

	quiz, err := s.quizRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load quiz: %w", err)
	}

	response := toQuizResponse(quiz)
	s.storeQuiz(ctx, response)
	return response, nil
}

func (s *QuizService) ListQuizzes(ctx context.Context, query PageQuery) (*model.Page[QuizResponse], error) {
	orderBy, ok := quizSortColumns[query.SortBy]
	if !ok {
		return nil, fmt.Errorf("unsupported sort field %q: %w", query.SortBy, common.ErrBadRequest)
	}
	limit, offset, err := query.normalize()
	if err != nil {
		return nil, err
	}

	quizzes, total, err := s.quizRepo.List(ctx, limit, offset, orderBy)
	if err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}

	content := make([]QuizResponse, 0, len(quizzes))
	for i := range quizzes {
		content = append(content, *toQuizResponse(&quizzes[i]))
	}
	return model.NewPage(content, query.Page, limit, total), nil
}

func (s *QuizService) CreateQuiz(ctx context.Context, authorEmail string, req QuizRequest) (*QuizResponse, error) {
	if err := validateQuizRequest(req); err != nil {
		return nil, err
	}

	author, err := s.userRepo.FindByEmail(ctx, authorEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve author: %w", err)
	}

	quiz := &model.Quiz{
		Title:    req.Title,
		Text:     req.Text,
		Options:  req.Options,
		Answer:   req.Answer,
		AuthorID: author.ID,
	}
	if err := s.quizRepo.Create(ctx, quiz); err != nil {
		return nil, fmt.Errorf("failed to create quiz: %w", err)
	}
	return toQuizResponse(quiz), nil
}

// SolveQuiz checks a submission against the stored answer. The submission is
// correct iff it is positionally equal to the stored answer; a quiz without a
// correct answer is satisfied only by an empty submission. A wrong answer is a
// normal outcome, not an error; only a missing quiz is a hard failure.
func (s *QuizService) SolveQuiz(ctx context.Context, userEmail string, quizID int64, submitted []int) (*AnswerResponse, error) {
	quiz, err := s.quizRepo.FindByID(ctx, quizID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load quiz: %w", err)
	}

	if !answersEqual(quiz.Answer, submitted) {
		return &AnswerResponse{Success: false, Feedback: feedbackWrong}, nil
	}

	if err := s.markQuizCompleted(ctx, quiz.ID, userEmail); err != nil {
		return nil, err
	}
	return &AnswerResponse{Success: true, Feedback: feedbackCorrect}, nil
}

func (s *QuizService) markQuizCompleted(ctx context.Context, quizID int64, userEmail string) error {
	user, err := s.userRepo.FindByEmail(ctx, userEmail)
	if err != nil {
		return fmt.Errorf("failed to resolve user: %w", err)
	}

	completion := &model.CompletedQuiz{
		CompletionID: uuid.NewString(),
		QuizID:       quizID,
		CompletedAt:  time.Now(),
		UserID:       user.ID,
	}
	if err := s.completedRepo.Create(ctx, completion); err != nil {
		return fmt.Errorf("failed to record completion: %w", err)
	}
	return nil
}

func (s *QuizService) DeleteQuiz(ctx context.Context, userEmail string, id int64) error {
	quiz, err := s.quizRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return fmt.Errorf("failed to load quiz: %w", err)
	}
	if !strings.EqualFold(quiz.AuthorEmail, userEmail) {
		return fmt.Errorf("only the author may delete a quiz: %w", common.ErrForbidden)
	}

	if err := s.quizRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return fmt.Errorf("failed to delete quiz: %w", err)
	}
	s.invalidateQuiz(ctx, id)
	return nil
}

func (s *QuizService) PatchQuiz(ctx context.Context, userEmail string, id int64, req QuizRequest) (*QuizResponse, error) {
	quiz, err := s.quizRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load quiz: %w", err)
	}
	if !strings.EqualFold(quiz.AuthorEmail, userEmail) {
		return nil, fmt.Errorf("only the author may modify a quiz: %w", common.ErrForbidden)
	}
	if err := validateQuizRequest(req); err != nil {
		return nil, err
	}

	// Replace title, text, options and answer in one statement; the author
	// reference is immutable.
	quiz.Title = req.Title
	quiz.Text = req.Text
	quiz.Options = req.Options
	quiz.Answer = req.Answer
	if err := s.quizRepo.Update(ctx, quiz); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update quiz: %w", err)
	}
	s.invalidateQuiz(ctx, id)
	return toQuizResponse(quiz), nil
}

func (s *QuizService) ListCompletedQuizzes(ctx context.Context, userEmail string, query PageQuery) (*model.Page[model.CompletedQuiz], error) {
	orderBy, ok := completionSortColumns[query.SortBy]
	if !ok {
		return nil, fmt.Errorf("unsupported sort field %q: %w", query.SortBy, common.ErrBadRequest)
	}
	limit, offset, err := query.normalize()
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByEmail(ctx, userEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}

	completions, total, err := s.completedRepo.ListByUser(ctx, user.ID, limit, offset, orderBy)
	if err != nil {
		return nil, fmt.Errorf("failed to list completions: %w", err)
	}
	return model.NewPage(completions, query.Page, limit, total), nil
}

func validateQuizRequest(req QuizRequest) error {
	if strings.TrimSpace(req.Title) == "" {
		return fmt.Errorf("title must not be blank: %w", common.ErrBadRequest)
	}
	if strings.TrimSpace(req.Text) == "" {
		return fmt.Errorf("text must not be blank: %w", common.ErrBadRequest)
	}
	if len(req.Options) < 2 {
		return fmt.Errorf("a quiz needs at least 2 options: %w", common.ErrBadRequest)
	}
	for _, idx := range req.Answer {
		if idx < 0 || idx >= len(req.Options) {
			return fmt.Errorf("answer index %d is out of range: %w", idx, common.ErrBadRequest)
		}
	}
	return nil
}

// answersEqual compares as ordered sequences: length and every element in
// position must match. [1,2] does not equal [2,1].
func answersEqual(stored, submitted []int) bool {
	if len(stored) != len(submitted) {
		return false
	}
	for i := range stored {
		if stored[i] != submitted[i] {
			return false
		}
	}
	return true
}
