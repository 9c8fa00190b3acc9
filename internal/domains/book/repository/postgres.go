package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"library-backend/internal/domains/book/model"
	"library-backend/pkg/cache"
	"library-backend/pkg/logger"
)

const bookCacheTTL = 5 * time.Minute

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so the same
// queries run inside and outside transactions.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type postgresRepository struct {
	db    querier
	cache cache.Cache
	inTx  bool
}

func NewPostgresRepository(pool *pgxpool.Pool, cache cache.Cache) Repository {
	return &postgresRepository{
		db:    pool,
		cache: cache,
	}
}

func (r *postgresRepository) WithTx(tx pgx.Tx) Repository {
	return &postgresRepository{
		db:    tx,
		cache: r.cache,
		inTx:  true,
	}
}

const bookColumns = `id, title, author, available, borrowed_by, due_date, created_at, updated_at`

func (r *postgresRepository) Create(ctx context.Context, b *model.Book) error {
	query := `
		INSERT INTO books (id, title, author, available, borrowed_by, due_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(ctx, query,
		b.ID,
		b.Title,
		b.Author,
		b.Available,
		b.BorrowedBy,
		b.DueDate,
		b.CreatedAt,
		b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert book: %w", err)
	}

	return nil
}

// FindByID reads a book, cache-aside: cache hit short-circuits the query,
// cache miss falls through to postgres and backfills. Transactional reads
// always go to the database.
func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	cacheKey := bookCacheKey(id)

	if r.cache != nil && !r.inTx {
		var b model.Book
		found, err := r.cache.Get(ctx, cacheKey, &b)
		if err == nil && found {
			return &b, nil
		}
	}

	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1`

	b, err := scanBook(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}

	if r.cache != nil && !r.inTx {
		if err := r.cache.Set(ctx, cacheKey, b, bookCacheTTL); err != nil {
			logger.Error("failed to cache book", err)
		}
	}

	return b, nil
}

func (r *postgresRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1 FOR UPDATE`

	return scanBook(r.db.QueryRow(ctx, query, id))
}

func (r *postgresRepository) FindAll(ctx context.Context) ([]model.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	return collectBooks(rows)
}

func (r *postgresRepository) Search(ctx context.Context, q model.SearchBooksQuery) ([]model.Book, error) {
	query, args := buildSearchQuery(q)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	defer rows.Close()

	return collectBooks(rows)
}

func (r *postgresRepository) Update(ctx context.Context, b *model.Book) error {
	query := `
		UPDATE books
		SET title = $2, author = $3, available = $4, borrowed_by = $5, due_date = $6, updated_at = $7
		WHERE id = $1
	`

	b.UpdatedAt = time.Now()
	tag, err := r.db.Exec(ctx, query,
		b.ID,
		b.Title,
		b.Author,
		b.Available,
		b.BorrowedBy,
		b.DueDate,
		b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update book: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrBookNotFound
	}

	r.invalidate(ctx, b.ID)
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrBookNotFound
	}

	r.invalidate(ctx, id)
	return nil
}

// ========================================
// QUERY BUILDING / SCANNING
// ========================================

// buildSearchQuery assembles the WHERE clause from the supplied criteria.
// Title and author match as case-insensitive substrings; every supplied
// criterion must hold (AND).
func buildSearchQuery(q model.SearchBooksQuery) (string, []any) {
	query := `SELECT ` + bookColumns + ` FROM books`
	args := []any{}
	argIndex := 1

	conditions := []string{}
	if q.Title != nil {
		conditions = append(conditions, fmt.Sprintf("title ILIKE '%%' || $%d || '%%'", argIndex))
		args = append(args, *q.Title)
		argIndex++
	}
	if q.Author != nil {
		conditions = append(conditions, fmt.Sprintf("author ILIKE '%%' || $%d || '%%'", argIndex))
		args = append(args, *q.Author)
		argIndex++
	}
	if q.Available != nil {
		conditions = append(conditions, fmt.Sprintf("available = $%d", argIndex))
		args = append(args, *q.Available)
		argIndex++
	}

	for i, cond := range conditions {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}

	query += " ORDER BY title ASC"
	return query, args
}

func scanBook(row pgx.Row) (*model.Book, error) {
	var b model.Book
	err := row.Scan(
		&b.ID,
		&b.Title,
		&b.Author,
		&b.Available,
		&b.BorrowedBy,
		&b.DueDate,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrBookNotFound
		}
		return nil, fmt.Errorf("scan book: %w", err)
	}
	return &b, nil
}

func collectBooks(rows pgx.Rows) ([]model.Book, error) {
	books := make([]model.Book, 0)
	for rows.Next() {
		var b model.Book
		err := rows.Scan(
			&b.ID,
			&b.Title,
			&b.Author,
			&b.Available,
			&b.BorrowedBy,
			&b.DueDate,
			&b.CreatedAt,
			&b.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan book row: %w", err)
		}
		books = append(books, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return books, nil
}

func (r *postgresRepository) invalidate(ctx context.Context, id uuid.UUID) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Delete(ctx, bookCacheKey(id)); err != nil {
		logger.Error("failed to invalidate book cache", err)
	}
}

func bookCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("book:%s", id.String())
}
