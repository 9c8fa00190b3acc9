package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"library-backend/internal/domains/book/model"
	"library-backend/internal/domains/book/repository"
	lendingrepo "library-backend/internal/domains/lending/repository"
	"library-backend/pkg/database"
)

type bookService struct {
	runner database.TxRunner
	repo   repository.Repository
	ledger lendingrepo.Ledger
}

// NewBookService wires the book store with the borrowing ledger; the
// ledger is needed to guard availability updates against open loans, and
// the runner scopes that read-check-write to a transaction.
func NewBookService(runner database.TxRunner, repo repository.Repository, ledger lendingrepo.Ledger) Service {
	return &bookService{
		runner: runner,
		repo:   repo,
		ledger: ledger,
	}
}

func (s *bookService) Create(ctx context.Context, req model.CreateBookRequest) (*model.Book, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	b := &model.Book{
		ID:        uuid.New(),
		Title:     req.Title,
		Author:    req.Author,
		Available: true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}

	return b, nil
}

func (s *bookService) GetByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *bookService) List(ctx context.Context) ([]model.Book, error) {
	return s.repo.FindAll(ctx)
}

func (s *bookService) Search(ctx context.Context, q model.SearchBooksQuery) ([]model.Book, error) {
	return s.repo.Search(ctx, q)
}

// Update replaces title, author and availability. The whole read-check-write
// runs in one transaction with the book row locked, so a concurrent borrow
// cannot slip between the read and the write and have its loan state
// clobbered by a stale snapshot. Flipping availability to true is refused
// while the ledger still has an open record for the book; that transition
// only happens through a return. Title and author may change while a book
// is out on loan.
func (s *bookService) Update(ctx context.Context, id uuid.UUID, req model.UpdateBookRequest) (*model.Book, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	return database.WithinTxResult(ctx, s.runner, func(tx pgx.Tx) (*model.Book, error) {
		repo := s.repo.WithTx(tx)
		ledger := s.ledger.WithTx(tx)

		b, err := repo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return nil, err
		}

		if req.Available && !b.Available {
			open, err := ledger.FindOpenByBook(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("check open loan: %w", err)
			}
			if open != nil {
				return nil, model.ErrBookHasActiveLoan
			}
			// No open record backs the unavailable flag; clear loan state
			// along with the flip so the book invariant holds again.
			b.MarkReturned()
		} else {
			b.Available = req.Available
		}

		b.Title = req.Title
		b.Author = req.Author

		if err := repo.Update(ctx, b); err != nil {
			return nil, err
		}

		return b, nil
	})
}

func (s *bookService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
