package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"library-backend/internal/domains/member/model"
	"library-backend/internal/domains/member/repository"
)

type memberService struct {
	repo repository.Repository
}

func NewMemberService(repo repository.Repository) Service {
	return &memberService{repo: repo}
}

func (s *memberService) Register(ctx context.Context, req model.RegisterMemberRequest) (*model.Member, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = model.RoleMember
	}

	now := time.Now()
	m := &model.Member{
		ID:        uuid.New(),
		Name:      req.Name,
		Email:     req.Email,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("register member: %w", err)
	}

	return m, nil
}

func (s *memberService) GetByID(ctx context.Context, id uuid.UUID) (*model.Member, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *memberService) List(ctx context.Context) ([]model.Member, error) {
	return s.repo.FindAll(ctx)
}

// Update replaces the member profile (full replace of name, email, role).
func (s *memberService) Update(ctx context.Context, id uuid.UUID, req model.UpdateMemberRequest) (*model.Member, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	m.Name = req.Name
	m.Email = req.Email
	m.Role = req.Role

	if err := s.repo.Update(ctx, m); err != nil {
		return nil, err
	}

	return m, nil
}
