package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	pq "github.com/lib/pq"

	"github.com/thelux31/hiddendevsappforwhatever/internal/domain"
)

var ErrNotFound = errors.New("not found")

// QuestionRepo serves trivia questions from Postgres. When categories is
// non-empty only those categories are drawn from.
type QuestionRepo struct {
	db         *sql.DB
	categories []string
}

func NewQuestionRepo(db *sql.DB, categories []string) *QuestionRepo {
	return &QuestionRepo{db: db, categories: categories}
}

func (r *QuestionRepo) Random(ctx context.Context) (domain.Question, error) {
	var cats any // NULL means every category
	if len(r.categories) > 0 {
		cats = pq.Array(r.categories)
	}
	var q domain.Question
	err := r.db.QueryRowContext(ctx, `
SELECT id, category, question, answer
  FROM trivia_questions
 WHERE active
   AND ($1::text[] IS NULL OR category = ANY($1::text[]))
 ORDER BY random()
 LIMIT 1
`, cats).Scan(&q.ID, &q.Category, &q.Text, &q.Answer)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Question{}, fmt.Errorf("trivia question: %w", ErrNotFound)
	}
	return q, err
}

// Count returns how many active questions the configured categories hold.
func (r *QuestionRepo) Count(ctx context.Context) (int, error) {
	var cats any
	if len(r.categories) > 0 {
		cats = pq.Array(r.categories)
	}
	var n int
	err := r.db.QueryRowContext(ctx, `
SELECT count(*)
  FROM trivia_questions
 WHERE active
   AND ($1::text[] IS NULL OR category = ANY($1::text[]))
`, cats).Scan(&n)
	return n, err
}
