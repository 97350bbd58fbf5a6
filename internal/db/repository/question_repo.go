package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/gokatarajesh/trivia-api/internal/trivia"
)

const pgForeignKeyViolation = "23503"

// pgxConn is the subset of *pgxpool.Pool the repository needs.
type pgxConn interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

// QuestionRepository is the Postgres-backed trivia.Store.
type QuestionRepository struct {
	db pgxConn
}

var (
	_ trivia.Store          = (*QuestionRepository)(nil)
	_ trivia.CategoryWriter = (*QuestionRepository)(nil)
)

func NewQuestionRepository(db pgxConn) *QuestionRepository {
	return &QuestionRepository{db: db}
}

const questionColumns = `id, question, answer, category, difficulty`

// Insert validates q and stores it in its own transaction.
func (r *QuestionRepository) Insert(ctx context.Context, q trivia.NewQuestion) (int64, error) {
	if err := q.Validate(); err != nil {
		return 0, err
	}

	var id int64
	err := r.inTx(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, `
			INSERT INTO questions (question, answer, category, difficulty)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`, q.Question, q.Answer, q.Category, q.Difficulty).Scan(&id)
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return 0, trivia.Invalid("category", "unknown category")
		}
		return 0, trivia.StoreError("insert question", err)
	}
	return id, nil
}

// DeleteByID reports whether a row was removed.
func (r *QuestionRepository) DeleteByID(ctx context.Context, id int64) (bool, error) {
	var removed bool
	err := r.inTx(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
		if err != nil {
			return err
		}
		removed = tag.RowsAffected() > 0
		return nil
	})
	if err != nil {
		return false, trivia.StoreError("delete question", err)
	}
	return removed, nil
}

func (r *QuestionRepository) GetByID(ctx context.Context, id int64) (trivia.Question, bool, error) {
	var q trivia.Question
	err := r.db.QueryRow(ctx, `SELECT `+questionColumns+` FROM questions WHERE id = $1`, id).
		Scan(&q.ID, &q.Question, &q.Answer, &q.Category, &q.Difficulty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return trivia.Question{}, false, nil
		}
		return trivia.Question{}, false, trivia.StoreError("get question", err)
	}
	return q, true, nil
}

func (r *QuestionRepository) ListAll(ctx context.Context) ([]trivia.Question, error) {
	return r.listQuestions(ctx, "list questions",
		`SELECT `+questionColumns+` FROM questions ORDER BY id`)
}

func (r *QuestionRepository) ListByCategory(ctx context.Context, categoryID int64) ([]trivia.Question, error) {
	return r.listQuestions(ctx, "list questions by category",
		`SELECT `+questionColumns+` FROM questions WHERE category = $1 ORDER BY id`, categoryID)
}

// ListBySubstring matches question text only; LIKE wildcards in term are literal.
func (r *QuestionRepository) ListBySubstring(ctx context.Context, term string) ([]trivia.Question, error) {
	return r.listQuestions(ctx, "search questions",
		`SELECT `+questionColumns+` FROM questions
		 WHERE question ILIKE '%' || $1 || '%' ESCAPE '\'
		 ORDER BY id`, escapeLike(term))
}

func (r *QuestionRepository) ListCategories(ctx context.Context) ([]trivia.Category, error) {
	rows, err := r.db.Query(ctx, `SELECT id, type FROM categories ORDER BY id`)
	if err != nil {
		return nil, trivia.StoreError("list categories", err)
	}
	categories, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (trivia.Category, error) {
		var c trivia.Category
		err := row.Scan(&c.ID, &c.Type)
		return c, err
	})
	if err != nil {
		return nil, trivia.StoreError("list categories", err)
	}
	return categories, nil
}

// ListPage counts and slices inside one read-only snapshot so the total and
// the page agree.
func (r *QuestionRepository) ListPage(ctx context.Context, filter trivia.QuestionFilter, offset, limit int) ([]trivia.Question, int, error) {
	var (
		total     int
		questions []trivia.Question
	)
	opts := pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}
	err := r.inTx(ctx, opts, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `
			SELECT COUNT(*) FROM questions
			WHERE ($1::bigint = 0 OR category = $1)
		`, filter.CategoryID).Scan(&total); err != nil {
			return err
		}
		rows, err := tx.Query(ctx, `
			SELECT `+questionColumns+` FROM questions
			WHERE ($1::bigint = 0 OR category = $1)
			ORDER BY id
			LIMIT $2 OFFSET $3
		`, filter.CategoryID, limit, offset)
		if err != nil {
			return err
		}
		questions, err = pgx.CollectRows(rows, scanQuestion)
		return err
	})
	if err != nil {
		return nil, 0, trivia.StoreError("list question page", err)
	}
	return questions, total, nil
}

// UpsertCategory inserts or relabels a category. Used by seeding only.
func (r *QuestionRepository) UpsertCategory(ctx context.Context, c trivia.Category) error {
	if c.ID < 1 {
		return trivia.Invalid("id", "must be a positive id")
	}
	if strings.TrimSpace(c.Type) == "" {
		return trivia.Invalid("type", "must not be empty")
	}
	err := r.inTx(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO categories (id, type) VALUES ($1, $2)
			ON CONFLICT (id) DO UPDATE SET type = EXCLUDED.type
		`, c.ID, c.Type)
		return err
	})
	if err != nil {
		return trivia.StoreError("upsert category", err)
	}
	return nil
}

func (r *QuestionRepository) listQuestions(ctx context.Context, op, sql string, args ...any) ([]trivia.Question, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, trivia.StoreError(op, err)
	}
	questions, err := pgx.CollectRows(rows, scanQuestion)
	if err != nil {
		return nil, trivia.StoreError(op, err)
	}
	return questions, nil
}

// inTx rolls back on any error before returning it.
func (r *QuestionRepository) inTx(ctx context.Context, opts pgx.TxOptions, fn func(pgx.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func scanQuestion(row pgx.CollectableRow) (trivia.Question, error) {
	var q trivia.Question
	err := row.Scan(&q.ID, &q.Question, &q.Answer, &q.Category, &q.Difficulty)
	return q, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}
