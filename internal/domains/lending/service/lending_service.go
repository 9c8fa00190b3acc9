package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"library-backend/internal/config"
	bookmodel "library-backend/internal/domains/book/model"
	bookrepo "library-backend/internal/domains/book/repository"
	"library-backend/internal/domains/lending/model"
	lendingrepo "library-backend/internal/domains/lending/repository"
	memberrepo "library-backend/internal/domains/member/repository"
	"library-backend/pkg/database"
)

type lendingService struct {
	runner  database.TxRunner
	books   bookrepo.Repository
	members memberrepo.Repository
	ledger  lendingrepo.Ledger
	cfg     config.LendingConfig

	// now is injectable so date arithmetic is deterministic in tests.
	now func() time.Time
}

func NewLendingService(
	runner database.TxRunner,
	books bookrepo.Repository,
	members memberrepo.Repository,
	ledger lendingrepo.Ledger,
	cfg config.LendingConfig,
) Service {
	return &lendingService{
		runner:  runner,
		books:   books,
		members: members,
		ledger:  ledger,
		cfg:     cfg,
		now:     time.Now,
	}
}

// BorrowBook runs the whole borrow as one transaction. The book row is
// locked first, so two concurrent borrows of the same book serialize and
// the loser sees the not-available state. No precondition failure leaves
// any partial write behind.
func (s *lendingService) BorrowBook(ctx context.Context, bookID, memberID uuid.UUID) (*bookmodel.Book, error) {
	return database.WithinTxResult(ctx, s.runner, func(tx pgx.Tx) (*bookmodel.Book, error) {
		books := s.books.WithTx(tx)
		members := s.members.WithTx(tx)
		ledger := s.ledger.WithTx(tx)

		b, err := books.FindByIDForUpdate(ctx, bookID)
		if err != nil {
			return nil, err
		}
		if !b.Available {
			return nil, model.ErrBookNotAvailable
		}

		if _, err := members.FindByID(ctx, memberID); err != nil {
			return nil, err
		}

		openLoans, err := ledger.CountOpenByMember(ctx, memberID)
		if err != nil {
			return nil, err
		}
		if openLoans >= s.cfg.BorrowingLimit {
			return nil, model.ErrBorrowingLimitExceeded
		}

		borrowDate := model.DateOf(s.now())
		dueDate := borrowDate.AddDate(0, 0, s.cfg.LoanPeriodDays)

		b.MarkBorrowed(memberID, dueDate)
		if err := books.Update(ctx, b); err != nil {
			return nil, fmt.Errorf("save borrowed book: %w", err)
		}

		rec := model.NewBorrowingRecord(bookID, memberID, borrowDate, dueDate)
		if err := ledger.Append(ctx, rec); err != nil {
			return nil, fmt.Errorf("append ledger record: %w", err)
		}

		log.Info().
			Str("book_id", bookID.String()).
			Str("member_id", memberID.String()).
			Time("due_date", dueDate).
			Msg("Book borrowed")

		return b, nil
	})
}

// ReturnBook closes the open ledger record for the book and puts the book
// back on the shelf, both inside one transaction. The open record is the
// source of truth: a book without one cannot be returned, whatever its
// availability flag says.
func (s *lendingService) ReturnBook(ctx context.Context, bookID uuid.UUID) (*bookmodel.Book, error) {
	return database.WithinTxResult(ctx, s.runner, func(tx pgx.Tx) (*bookmodel.Book, error) {
		books := s.books.WithTx(tx)
		ledger := s.ledger.WithTx(tx)

		b, err := books.FindByIDForUpdate(ctx, bookID)
		if err != nil {
			return nil, err
		}

		rec, err := ledger.FindOpenByBook(ctx, bookID)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			return nil, model.ErrNoActiveLoan
		}

		rec.Close(model.DateOf(s.now()), s.cfg.LateFeePerDay)
		if err := ledger.Update(ctx, rec); err != nil {
			return nil, fmt.Errorf("close ledger record: %w", err)
		}

		b.MarkReturned()
		if err := books.Update(ctx, b); err != nil {
			return nil, fmt.Errorf("save returned book: %w", err)
		}

		log.Info().
			Str("book_id", bookID.String()).
			Str("member_id", rec.MemberID.String()).
			Str("late_fee", rec.LateFee.String()).
			Msg("Book returned")

		return b, nil
	})
}

func (s *lendingService) ListMemberLoans(ctx context.Context, memberID uuid.UUID) ([]model.BorrowingRecord, error) {
	if _, err := s.members.FindByID(ctx, memberID); err != nil {
		return nil, err
	}

	return s.ledger.ListByMember(ctx, memberID)
}
