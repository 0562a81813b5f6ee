package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dan-koller/Spring-Web-Quiz-Engine/internal/domain/model"
)

type CompletedQuizRepository interface {
	Create(ctx context.Context, completion *model.CompletedQuiz) error
	// ListByUser pages over one user's completions. orderBy must already be an
	// allow-listed "column direction" pair; it is interpolated into the query.
	ListByUser(ctx context.Context, userID int64, limit, offset int, orderBy string) ([]model.CompletedQuiz, int, error)
}

type pgCompletedQuizRepository struct {
	db *sql.DB
}

func NewPgCompletedQuizRepository(db *sql.DB) CompletedQuizRepository {
	return &pgCompletedQuizRepository{db: db}
}

func (r *pgCompletedQuizRepository) Create(ctx context.Context, completion *model.CompletedQuiz) error {
	query := `INSERT INTO completed_quizzes (completion_id, quiz_id, completed_at, user_id)
	          VALUES ($1, $2, $3, $4)`
	_, err := r.db.ExecContext(ctx, query,
		completion.CompletionID, completion.QuizID, completion.CompletedAt, completion.UserID)
	if err != nil {
		return fmt.Errorf("pgCompletedQuizRepository.Create: %w", err)
	}
	return nil
}

func (r *pgCompletedQuizRepository) ListByUser(ctx context.Context, userID int64, limit, offset int, orderBy string) ([]model.CompletedQuiz, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM completed_quizzes WHERE user_id = $1`
	if err := r.db.QueryRowContext(ctx, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgCompletedQuizRepository.ListByUser count: %w", err)
	}

	query := fmt.Sprintf(`SELECT completion_id, quiz_id, completed_at, user_id
	          FROM completed_quizzes WHERE user_id = $1
	          ORDER BY %s LIMIT $2 OFFSET $3`, orderBy)
	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("pgCompletedQuizRepository.ListByUser query: %w", err)
	}
	defer rows.Close()

	completions := []model.CompletedQuiz{}
	for rows.Next() {
		var c model.CompletedQuiz
		if err := rows.Scan(&c.CompletionID, &c.QuizID, &c.CompletedAt, &c.UserID); err != nil {
			return nil, 0, fmt.Errorf("pgCompletedQuizRepository.ListByUser scan: %w", err)
		}
		completions = append(completions, c)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("pgCompletedQuizRepository.ListByUser rows.Err: %w", err)
	}

	return completions, total, nil
}
