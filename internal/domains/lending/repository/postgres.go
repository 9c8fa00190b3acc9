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

	"library-backend/internal/domains/lending/model"
)

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type postgresLedger struct {
	db querier
}

func NewPostgresLedger(pool *pgxpool.Pool) Ledger {
	return &postgresLedger{db: pool}
}

func (r *postgresLedger) WithTx(tx pgx.Tx) Ledger {
	return &postgresLedger{db: tx}
}

const recordColumns = `id, book_id, member_id, borrow_date, due_date, return_date, late_fee, created_at, updated_at`

func (r *postgresLedger) Append(ctx context.Context, rec *model.BorrowingRecord) error {
	query := `
		INSERT INTO borrowing_records (id, book_id, member_id, borrow_date, due_date, return_date, late_fee, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(ctx, query,
		rec.ID,
		rec.BookID,
		rec.MemberID,
		rec.BorrowDate,
		rec.DueDate,
		rec.ReturnDate,
		rec.LateFee,
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("append borrowing record: %w", err)
	}

	return nil
}

func (r *postgresLedger) FindOpenByBook(ctx context.Context, bookID uuid.UUID) (*model.BorrowingRecord, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM borrowing_records
		WHERE book_id = $1 AND return_date IS NULL
	`

	rec, err := scanRecord(r.db.QueryRow(ctx, query, bookID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return rec, nil
}

func (r *postgresLedger) CountOpenByMember(ctx context.Context, memberID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM borrowing_records WHERE member_id = $1 AND return_date IS NULL`

	var count int
	if err := r.db.QueryRow(ctx, query, memberID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count open records: %w", err)
	}

	return count, nil
}

func (r *postgresLedger) Update(ctx context.Context, rec *model.BorrowingRecord) error {
	query := `
		UPDATE borrowing_records
		SET return_date = $2, late_fee = $3, updated_at = $4
		WHERE id = $1
	`

	rec.UpdatedAt = time.Now()
	tag, err := r.db.Exec(ctx, query, rec.ID, rec.ReturnDate, rec.LateFee, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update borrowing record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrRecordNotFound
	}

	return nil
}

func (r *postgresLedger) ListByMember(ctx context.Context, memberID uuid.UUID) ([]model.BorrowingRecord, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM borrowing_records
		WHERE member_id = $1
		ORDER BY borrow_date DESC, created_at DESC
	`

	rows, err := r.db.Query(ctx, query, memberID)
	if err != nil {
		return nil, fmt.Errorf("list borrowing records: %w", err)
	}
	defer rows.Close()

	records := make([]model.BorrowingRecord, 0)
	for rows.Next() {
		var rec model.BorrowingRecord
		err := rows.Scan(
			&rec.ID,
			&rec.BookID,
			&rec.MemberID,
			&rec.BorrowDate,
			&rec.DueDate,
			&rec.ReturnDate,
			&rec.LateFee,
			&rec.CreatedAt,
			&rec.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan borrowing record row: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return records, nil
}

func scanRecord(row pgx.Row) (*model.BorrowingRecord, error) {
	var rec model.BorrowingRecord
	err := row.Scan(
		&rec.ID,
		&rec.BookID,
		&rec.MemberID,
		&rec.BorrowDate,
		&rec.DueDate,
		&rec.ReturnDate,
		&rec.LateFee,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan borrowing record: %w", err)
	}
	return &rec, nil
}
