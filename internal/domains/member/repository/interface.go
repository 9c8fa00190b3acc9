package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"library-backend/internal/domains/member/model"
)

// Repository is the member store contract. Lookups return
// model.ErrMemberNotFound for unknown ids; creating or updating to a taken
// email returns model.ErrEmailAlreadyExists.
type Repository interface {
	WithTx(tx pgx.Tx) Repository

	Create(ctx context.Context, m *model.Member) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Member, error)
	FindAll(ctx context.Context) ([]model.Member, error)
	Update(ctx context.Context, m *model.Member) error
}
