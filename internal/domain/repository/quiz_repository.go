package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dan-koller/Spring-Web-Quiz-Engine/internal/common"
	"github.com/dan-koller/Spring-Web-Quiz-Engine/internal/domain/model"
)

type QuizRepository interface {
	Create(ctx context.Context, quiz *model.Quiz) error
	FindByID(ctx context.Context, id int64) (*model.Quiz, error)
	// Update replaces title, text, options and answer in one statement.
	// The author column is never touched.
	Update(ctx context.Context, quiz *model.Quiz) error
	Delete(ctx context.Context, id int64) error
	// List pages over all quizzes. orderBy must already be an allow-listed
	// "column direction" pair; it is interpolated into the query.
	List(ctx context.Context, limit, offset int, orderBy string) ([]model.Quiz, int, error)
}

type pgQuizRepository struct {
	db *sql.DB
}

func NewPgQuizRepository(db *sql.DB) QuizRepository {
	return &pgQuizRepository{db: db}
}

// Options and answers are stored as JSON-encoded text columns. The answer of a
// quiz without a correct answer round-trips as an empty array.
func encodeIntSlice(values []int) (string, error) {
	if values == nil {
		values = []int{}
	}
	raw, err := json.Marshal(values)
	return string(raw), err
}

func encodeStringSlice(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	raw, err := json.Marshal(values)
	return string(raw), err
}

func (r *pgQuizRepository) Create(ctx context.Context, quiz *model.Quiz) error {
	options, err := encodeStringSlice(quiz.Options)
	if err != nil {
		return fmt.Errorf("pgQuizRepository.Create encode options: %w", err)
	}
	answer, err := encodeIntSlice(quiz.Answer)
	if err != nil {
		return fmt.Errorf("pgQuizRepository.Create encode answer: %w", err)
	}

	query := `INSERT INTO quizzes (title, text, options, answer, author_id)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`
	err = r.db.QueryRowContext(ctx, query, quiz.Title, quiz.Text, options, answer, quiz.AuthorID).
		Scan(&quiz.ID, &quiz.CreatedAt)
	if err != nil {
		return fmt.Errorf("pgQuizRepository.Create: %w", err)
	}
	return nil
}

func (r *pgQuizRepository) FindByID(ctx context.Context, id int64) (*model.Quiz, error) {
	query := `SELECT q.id, q.title, q.text, q.options, q.answer, q.author_id, u.email, q.created_at
	          FROM quizzes q
	          JOIN users u ON q.author_id = u.id
	          WHERE q.id = $1`

	quiz := &model.Quiz{}
	var options, answer string
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&quiz.ID, &quiz.Title, &quiz.Text, &options, &answer,
		&quiz.AuthorID, &quiz.AuthorEmail, &quiz.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgQuizRepository.FindByID: %w", err)
	}
	if err := json.Unmarshal([]byte(options), &quiz.Options); err != nil {
		return nil, fmt.Errorf("pgQuizRepository.FindByID decode options: %w", err)
	}
	if err := json.Unmarshal([]byte(answer), &quiz.Answer); err != nil {
		return nil, fmt.Errorf("pgQuizRepository.FindByID decode answer: %w", err)
	}
	return quiz, nil
}

func (r *pgQuizRepository) Update(ctx context.Context, quiz *model.Quiz) error {
	options, err := encodeStringSlice(quiz.Options)
	if err != nil {
		return fmt.Errorf("pgQuizRepository.Update encode options: %w", err)
	}
	answer, err := encodeIntSlice(quiz.Answer)
	if err != nil {
		return fmt.Errorf("pgQuizRepository.Update encode answer: %w", err)
	}

	query := `UPDATE quizzes SET title = $1, text = $2, options = $3, answer = $4 WHERE id = $5`
	result, err := r.db.ExecContext(ctx, query, quiz.Title, quiz.Text, options, answer, quiz.ID)
	if err != nil {
		return fmt.Errorf("pgQuizRepository.Update: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgQuizRepository.Update rows affected: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgQuizRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM quizzes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgQuizRepository.Delete: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgQuizRepository.Delete rows affected: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgQuizRepository) List(ctx context.Context, limit, offset int, orderBy string) ([]model.Quiz, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM quizzes`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgQuizRepository.List count: %w", err)
	}

	query := fmt.Sprintf(`SELECT id, title, text, options, answer, author_id, created_at
	          FROM quizzes ORDER BY %s LIMIT $1 OFFSET $2`, orderBy)
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("pgQuizRepository.List query: %w", err)
	}
	defer rows.Close()

	quizzes := []model.Quiz{}
	for rows.Next() {
		var q model.Quiz
		var options, answer string
		if err := rows.Scan(&q.ID, &q.Title, &q.Text, &options, &answer, &q.AuthorID, &q.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("pgQuizRepository.List scan: %w", err)
		}
		if err := json.Unmarshal([]byte(options), &q.Options); err != nil {
			return nil, 0, fmt.Errorf("pgQuizRepository.List decode options: %w", err)
		}
		if err := json.Unmarshal([]byte(answer), &q.Answer); err != nil {
			return nil, 0, fmt.Errorf("pgQuizRepository.List decode answer: %w", err)
		}
		quizzes = append(quizzes, q)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("pgQuizRepository.List rows.Err: %w", err)
	}

	return quizzes, total, nil
}
