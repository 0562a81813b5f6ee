package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dan-koller/Spring-Web-Quiz-Engine/internal/common"
	"github.com/dan-koller/Spring-Web-Quiz-Engine/internal/domain/model"
)

type fakeUserRepo struct {
	users  map[int64]*model.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*model.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	for _, existing := range f.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return common.ErrConflict
		}
	}
	f.nextID++
	user.ID = f.nextID
	user.CreatedAt = time.Now()
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, user := range f.users {
		if strings.EqualFold(user.Email, email) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeUserRepo) FindByID(_ context.Context, id int64) (*model.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

type fakeQuizRepo struct {
	quizzes map[int64]*model.Quiz
	nextID  int64

	// emails by author id, so FindByID can report the author like the pg
	// repository's join does
	authorEmails map[int64]string

	createCalls int
	listCalls   int
	lastLimit   int
	lastOffset  int
	lastOrderBy string
}

func newFakeQuizRepo() *fakeQuizRepo {
	return &fakeQuizRepo{
		quizzes:      make(map[int64]*model.Quiz),
		authorEmails: make(map[int64]string),
	}
}

func (f *fakeQuizRepo) Create(_ context.Context, quiz *model.Quiz) error {
	f.createCalls++
	f.nextID++
	quiz.ID = f.nextID
	quiz.CreatedAt = time.Now()
	copied := *quiz
	f.quizzes[quiz.ID] = &copied
	return nil
}

func (f *fakeQuizRepo) FindByID(_ context.Context, id int64) (*model.Quiz, error) {
	quiz, ok := f.quizzes[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	copied := *quiz
	if email, ok := f.authorEmails[quiz.AuthorID]; ok {
		copied.AuthorEmail = email
	}
	return &copied, nil
}

func (f *fakeQuizRepo) Update(_ context.Context, quiz *model.Quiz) error {
	if _, ok := f.quizzes[quiz.ID]; !ok {
		return common.ErrNotFound
	}
	copied := *quiz
	f.quizzes[quiz.ID] = &copied
	return nil
}

func (f *fakeQuizRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.quizzes[id]; !ok {
		return common.ErrNotFound
	}
	delete(f.quizzes, id)
	return nil
}

func (f *fakeQuizRepo) List(_ context.Context, limit, offset int, orderBy string) ([]model.Quiz, int, error) {
	f.listCalls++
	f.lastLimit = limit
	f.lastOffset = offset
	f.lastOrderBy = orderBy

	out := []model.Quiz{}
	for id := int64(1); id <= f.nextID; id++ {
		if quiz, ok := f.quizzes[id]; ok {
			out = append(out, *quiz)
		}
	}
	total := len(out)
	if offset >= len(out) {
		return []model.Quiz{}, total, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, total, nil
}

type fakeCompletedRepo struct {
	records []model.CompletedQuiz

	lastUserID  int64
	lastOrderBy string
}

func (f *fakeCompletedRepo) Create(_ context.Context, completion *model.CompletedQuiz) error {
	f.records = append(f.records, *completion)
	return nil
}

func (f *fakeCompletedRepo) ListByUser(_ context.Context, userID int64, limit, offset int, orderBy string) ([]model.CompletedQuiz, int, error) {
	f.lastUserID = userID
	f.lastOrderBy = orderBy

	out := []model.CompletedQuiz{}
	for _, record := range f.records {
		if record.UserID == userID {
			out = append(out, record)
		}
	}
	total := len(out)
	if offset >= len(out) {
		return []model.CompletedQuiz{}, total, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, total, nil
}

type quizServiceFixture struct {
	service   *QuizService
	users     *fakeUserRepo
	quizzes   *fakeQuizRepo
	completed *fakeCompletedRepo
}

func newQuizServiceFixture() *quizServiceFixture {
	users := newFakeUserRepo()
	quizzes := newFakeQuizRepo()
	completed := &fakeCompletedRepo{}
	return &quizServiceFixture{
		service:   NewQuizService(quizzes, completed, users, nil, 0),
		users:     users,
		quizzes:   quizzes,
		completed: completed,
	}
}

func (fx *quizServiceFixture) addUser(t *testing.T, email string) *model.User {
	t.Helper()
	user := &model.User{Email: email, HashedPassword: "irrelevant"}
	if err := fx.users.Create(context.Background(), user); err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	return user
}

func (fx *quizServiceFixture) addQuiz(t *testing.T, author *model.User, answer []int) *model.Quiz {
	t.Helper()
	quiz := &model.Quiz{
		Title:    "Capitals",
		Text:     "What is the capital of France?",
		Options:  []string{"Berlin", "Madrid", "Paris"},
		Answer:   answer,
		AuthorID: author.ID,
	}
	if err := fx.quizzes.Create(context.Background(), quiz); err != nil {
		t.Fatalf("seed quiz: %v", err)
	}
	fx.quizzes.authorEmails[author.ID] = author.Email
	return quiz
}

func TestSolveQuizPositionalEquality(t *testing.T) {
	fx := newQuizServiceFixture()
	user := fx.addUser(t, "solver@example.com")
	quiz := fx.addQuiz(t, user, []int{1, 2})

	cases := []struct {
		name      string
		submitted []int
		want      bool
	}{
		{"exact match", []int{1, 2}, true},
		{"reversed order", []int{2, 1}, false},
		{"prefix only", []int{1}, false},
		{"empty submission", []int{}, false},
		{"nil submission", nil, false},
		{"extra element", []int{1, 2, 0}, false},
	}
	for _, tc := range cases {
		result, err := fx.service.SolveQuiz(context.Background(), user.Email, quiz.ID, tc.submitted)
		if err != nil {
			t.Fatalf("%s: SolveQuiz: %v", tc.name, err)
		}
		if result.Success != tc.want {
			t.Errorf("%s: success = %v, want %v", tc.name, result.Success, tc.want)
		}
	}
}

func TestSolveQuizSingleAnswer(t *testing.T) {
	fx := newQuizServiceFixture()
	user := fx.addUser(t, "solver@example.com")
	quiz := fx.addQuiz(t, user, []int{2})

	for _, tc := range []struct {
		submitted []int
		want      bool
	}{
		{[]int{2}, true},
		{[]int{}, false},
		{[]int{2, 0}, false},
	} {
		result, err := fx.service.SolveQuiz(context.Background(), user.Email, quiz.ID, tc.submitted)
		if err != nil {
			t.Fatalf("SolveQuiz(%v): %v", tc.submitted, err)
		}
		if result.Success != tc.want {
			t.Errorf("SolveQuiz(%v) success = %v, want %v", tc.submitted, result.Success, tc.want)
		}
	}
}

func TestSolveQuizWithoutAnswerKey(t *testing.T) {
	fx := newQuizServiceFixture()
	user := fx.addUser(t, "solver@example.com")
	quiz := fx.addQuiz(t, user, nil)

	result, err := fx.service.SolveQuiz(context.Background(), user.Email, quiz.ID, nil)
	if err != nil {
		t.Fatalf("SolveQuiz(nil): %v", err)
	}
	if !result.Success {
		t.Errorf("empty submission against answerless quiz should succeed")
	}

	result, err = fx.service.SolveQuiz(context.Background(), user.Email, quiz.ID, []int{0})
	if err != nil {
		t.Fatalf("SolveQuiz([0]): %v", err)
	}
	if result.Success {
		t.Errorf("non-empty submission against answerless quiz should fail")
	}
}

func TestSolveQuizNotFound(t *testing.T) {
	fx := newQuizServiceFixture()
	user := fx.addUser(t, "solver@example.com")

	_, err := fx.service.SolveQuiz(context.Background(), user.Email, 999, []int{0})
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("SolveQuiz on missing quiz = %v, want ErrNotFound", err)
	}
}

func TestSolveQuizRecordsCompletions(t *testing.T) {
	fx := newQuizServiceFixture()
	user := fx.addUser(t, "solver@example.com")
	quiz := fx.addQuiz(t, user, []int{2})

	if _, err := fx.service.SolveQuiz(context.Background(), user.Email, quiz.ID, []int{0}); err != nil {
		t.Fatalf("wrong answer: %v", err)
	}
	if len(fx.completed.records) != 0 {
		t.Fatalf("wrong answer must not record a completion, got %d", len(fx.completed.records))
	}

	// Repeat completions of the same quiz append new records.
	for i := 0; i < 2; i++ {
		if _, err := fx.service.SolveQuiz(context.Background(), user.Email, quiz.ID, []int{2}); err != nil {
			t.Fatalf("correct answer %d: %v", i, err)
		}
	}
	if len(fx.completed.records) != 2 {
		t.Fatalf("expected 2 completion records, got %d", len(fx.completed.records))
	}
	record := fx.completed.records[0]
	if record.QuizID != quiz.ID || record.UserID != user.ID {
		t.Errorf("completion record = %+v, want quiz %d user %d", record, quiz.ID, user.ID)
	}
	if record.CompletionID == "" {
		t.Errorf("completion id must be assigned")
	}
	if record.CompletedAt.After(time.Now()) {
		t.Errorf("completedAt must not be in the future")
	}
}

func TestCreateQuizValidation(t *testing.T) {
	fx := newQuizServiceFixture()
	user := fx.addUser(t, "author@example.com")

	valid := QuizRequest{
		Title:   "Capitals",
		Text:    "What is the capital of France?",
		Options: []string{"Berlin", "Paris"},
		Answer:  []int{1},
	}

	cases := []struct {
		name   string
		mutate func(*QuizRequest)
	}{
		{"blank title", func(r *QuizRequest) { r.Title = "  " }},
		{"blank text", func(r *QuizRequest) { r.Text = "" }},
		{"too few options", func(r *QuizRequest) { r.Options = []string{"Paris"} }},
		{"no options", func(r *QuizRequest) { r.Options = nil }},
		{"answer index out of range", func(r *QuizRequest) { r.Answer = []int{2} }},
		{"negative answer index", func(r *QuizRequest) { r.Answer = []int{-1} }},
	}
	for _, tc := range cases {
		req := valid
		tc.mutate(&req)
		if _, err := fx.service.CreateQuiz(context.Background(), user.Email, req); !errors.Is(err, common.ErrBadRequest) {
			t.Errorf("%s: CreateQuiz = %v, want ErrBadRequest", tc.name, err)
		}
	}
	if fx.quizzes.createCalls != 0 {
		t.Fatalf("invalid requests must not persist anything, got %d creates", fx.quizzes.createCalls)
	}
}

func TestCreateQuizReturnsProjection(t *testing.T) {
	fx := newQuizServiceFixture()
	user := fx.addUser(t, "author@example.com")

	req := QuizRequest{
		Title:   "Capitals",
		Text:    "What is the capital of France?",
		Options: []string{"Berlin", "Paris"},
		Answer:  []int{1},
	}
	resp, err := fx.service.CreateQuiz(context.Background(), user.Email, req)
	if err != nil {
		t.Fatalf("CreateQuiz: %v", err)
	}
	if resp.ID == 0 {
		t.Errorf("expected an assigned id")
	}
	if resp.Title != req.Title || resp.Text != req.Text || len(resp.Options) != 2 {
		t.Errorf("projection mismatch: %+v", resp)
	}

	stored := fx.quizzes.quizzes[resp.ID]
	if stored == nil || stored.AuthorID != user.ID {
		t.Fatalf("stored quiz author = %+v, want author id %d", stored, user.ID)
	}
}

func TestDeleteQuizOwnership(t *testing.T) {
	fx := newQuizServiceFixture()
	author := fx.addUser(t, "author@example.com")
	other := fx.addUser(t, "other@example.com")
	quiz := fx.addQuiz(t, author, []int{2})

	if err := fx.service.DeleteQuiz(context.Background(), other.Email, quiz.ID); !errors.Is(err, common.ErrForbidden) {
		t.Fatalf("non-author delete = %v, want ErrForbidden", err)
	}
	if _, ok := fx.quizzes.quizzes[quiz.ID]; !ok {
		t.Fatalf("forbidden delete must leave the quiz in place")
	}

	if err := fx.service.DeleteQuiz(context.Background(), author.Email, quiz.ID); err != nil {
		t.Fatalf("author delete: %v", err)
	}
	if _, ok := fx.quizzes.quizzes[quiz.ID]; ok {
		t.Fatalf("quiz should be gone after author delete")
	}

	if err := fx.service.DeleteQuiz(context.Background(), author.Email, quiz.ID); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("delete of missing quiz = %v, want ErrNotFound", err)
	}
}

func TestPatchQuizOwnershipAndValidation(t *testing.T) {
	fx := newQuizServiceFixture()
	author := fx.addUser(t, "author@example.com")
	other := fx.addUser(t, "other@example.com")
	quiz := fx.addQuiz(t, author, []int{2})

	update := QuizRequest{
		Title:   "Updated",
		Text:    "Updated text",
		Options: []string{"A", "B", "C", "D"},
		Answer:  []int{0, 3},
	}

	if _, err := fx.service.PatchQuiz(context.Background(), other.Email, quiz.ID, update); !errors.Is(err, common.ErrForbidden) {
		t.Fatalf("non-author patch = %v, want ErrForbidden", err)
	}
	if stored := fx.quizzes.quizzes[quiz.ID]; stored.Title != "Capitals" {
		t.Fatalf("forbidden patch must leave the quiz unchanged, got %+v", stored)
	}

	invalid := update
	invalid.Options = []string{"A"}
	if _, err := fx.service.PatchQuiz(context.Background(), author.Email, quiz.ID, invalid); !errors.Is(err, common.ErrBadRequest) {
		t.Fatalf("invalid patch = %v, want ErrBadRequest", err)
	}
	if stored := fx.quizzes.quizzes[quiz.ID]; stored.Title != "Capitals" {
		t.Fatalf("invalid patch must leave the quiz unchanged, got %+v", stored)
	}

	if _, err := fx.service.PatchQuiz(context.Background(), author.Email, 999, update); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("patch of missing quiz = %v, want ErrNotFound", err)
	}

	resp, err := fx.service.PatchQuiz(context.Background(), author.Email, quiz.ID, update)
	if err != nil {
		t.Fatalf("valid patch: %v", err)
	}
	if resp.Title != "Updated" || len(resp.Options) != 4 {
		t.Errorf("patch response = %+v", resp)
	}
	stored := fx.quizzes.quizzes[quiz.ID]
	if stored.Title != "Updated" || stored.Text != "Updated text" || len(stored.Options) != 4 {
		t.Errorf("stored quiz after patch = %+v", stored)
	}
	if len(stored.Answer) != 2 || stored.Answer[0] != 0 || stored.Answer[1] != 3 {
		t.Errorf("answer not replaced: %v", stored.Answer)
	}
	if stored.AuthorID != author.ID {
		t.Errorf("author must be immutable, got %d", stored.AuthorID)
	}
}

func TestListQuizzesSortAllowList(t *testing.T) {
	fx := newQuizServiceFixture()

	if _, err := fx.service.ListQuizzes(context.Background(), PageQuery{SortBy: "author_id"}); !errors.Is(err, common.ErrBadRequest) {
		t.Fatalf("disallowed sort field = %v, want ErrBadRequest", err)
	}
	if fx.quizzes.listCalls != 0 {
		t.Fatalf("rejected sort field must not hit the store")
	}

	if _, err := fx.service.ListQuizzes(context.Background(), PageQuery{SortBy: "title"}); err != nil {
		t.Fatalf("title sort: %v", err)
	}
	if fx.quizzes.lastOrderBy != "title ASC" {
		t.Errorf("orderBy = %q, want %q", fx.quizzes.lastOrderBy, "title ASC")
	}
}

func TestListQuizzesDefaultsAndPaging(t *testing.T) {
	fx := newQuizServiceFixture()
	author := fx.addUser(t, "author@example.com")
	for i := 0; i < 12; i++ {
		fx.addQuiz(t, author, []int{2})
	}

	page, err := fx.service.ListQuizzes(context.Background(), PageQuery{})
	if err != nil {
		t.Fatalf("ListQuizzes: %v", err)
	}
	if fx.quizzes.lastLimit != 10 || fx.quizzes.lastOffset != 0 || fx.quizzes.lastOrderBy != "id ASC" {
		t.Errorf("defaults = limit %d offset %d orderBy %q", fx.quizzes.lastLimit, fx.quizzes.lastOffset, fx.quizzes.lastOrderBy)
	}
	if page.TotalElements != 12 || page.TotalPages != 2 || !page.First || page.Last || page.Empty {
		t.Errorf("page metadata = %+v", page)
	}
	if len(page.Content) != 10 {
		t.Errorf("page content length = %d, want 10", len(page.Content))
	}

	second, err := fx.service.ListQuizzes(context.Background(), PageQuery{Page: 1})
	if err != nil {
		t.Fatalf("second page: %v", err)
	}
	if len(second.Content) != 2 || second.First || !second.Last {
		t.Errorf("second page = %+v", second)
	}

	if _, err := fx.service.ListQuizzes(context.Background(), PageQuery{Page: -1}); !errors.Is(err, common.ErrBadRequest) {
		t.Fatalf("negative page = %v, want ErrBadRequest", err)
	}
}

func TestListCompletedQuizzes(t *testing.T) {
	fx := newQuizServiceFixture()
	solver := fx.addUser(t, "solver@example.com")
	bystander := fx.addUser(t, "bystander@example.com")
	quiz := fx.addQuiz(t, solver, []int{2})

	if _, err := fx.service.SolveQuiz(context.Background(), solver.Email, quiz.ID, []int{2}); err != nil {
		t.Fatalf("solve: %v", err)
	}

	page, err := fx.service.ListCompletedQuizzes(context.Background(), solver.Email, PageQuery{})
	if err != nil {
		t.Fatalf("ListCompletedQuizzes: %v", err)
	}
	if fx.completed.lastUserID != solver.ID {
		t.Errorf("listed completions for user %d, want %d", fx.completed.lastUserID, solver.ID)
	}
	if fx.completed.lastOrderBy != "completed_at DESC" {
		t.Errorf("orderBy = %q, want %q", fx.completed.lastOrderBy, "completed_at DESC")
	}
	if page.TotalElements != 1 || page.Content[0].QuizID != quiz.ID {
		t.Errorf("page = %+v", page)
	}

	empty, err := fx.service.ListCompletedQuizzes(context.Background(), bystander.Email, PageQuery{SortBy: "completedAt"})
	if err != nil {
		t.Fatalf("bystander completions: %v", err)
	}
	if empty.TotalElements != 0 || !empty.Empty {
		t.Errorf("bystander must see no completions, got %+v", empty)
	}

	if _, err := fx.service.ListCompletedQuizzes(context.Background(), solver.Email, PageQuery{SortBy: "id"}); !errors.Is(err, common.ErrBadRequest) {
		t.Fatalf("disallowed completion sort field = %v, want ErrBadRequest", err)
	}
}
