// Package service provides business logic layer for member module.
package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	memberModel "github.com/festy23/datajpa/internal/member/model"
	"github.com/festy23/datajpa/internal/member/repository"
	"github.com/festy23/datajpa/internal/persistence"
	"github.com/festy23/datajpa/internal/persistence/query"
)

// Service defines the interface for member business logic operations.
type Service interface {
	// Get returns a member by id.
	Get(ctx context.Context, id int64) (*memberModel.Member, error)

	// GetUsername returns the username of a member.
	GetUsername(ctx context.Context, id int64) (string, error)

	// List returns one page of members as DTOs.
	List(ctx context.Context, req query.PageRequest) (query.Page[memberModel.MemberDto], error)

	// Seed inserts n members named user0..user<n-1> aged 0..n-1.
	Seed(ctx context.Context, n int) error
}

type service struct {
	manager *persistence.Manager
	repos   repository.Factory
	logger  *zap.SugaredLogger
}

// New creates a new member service instance.
func New(manager *persistence.Manager, repos repository.Factory, logger *zap.SugaredLogger) Service {
	return &service{
		manager: manager,
		repos:   repos,
		logger:  logger,
	}
}

// Get returns a member by id.
func (s *service) Get(ctx context.Context, id int64) (*memberModel.Member, error) {
	return s.repos(s.manager.Session()).FindByID(ctx, id)
}

// GetUsername returns the username of a member.
func (s *service) GetUsername(ctx context.Context, id int64) (string, error) {
	member, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return member.Username, nil
}

// List returns one page of members with their team names.
func (s *service) List(ctx context.Context, req query.PageRequest) (query.Page[memberModel.MemberDto], error) {
	var page query.Page[memberModel.MemberDto]
	err := s.manager.InTransaction(ctx, func(sess *persistence.Session) error {
		members, err := s.repos(sess).FindPage(ctx, req)
		if err != nil {
			return err
		}
		page = query.MapPage(members, memberModel.NewMemberDto)
		return nil
	})
	if err != nil {
		return query.Page[memberModel.MemberDto]{}, err
	}
	return page, nil
}

// Seed inserts n members in one transaction.
func (s *service) Seed(ctx context.Context, n int) error {
	if n <= 0 {
		return nil
	}

	err := s.manager.InTransaction(ctx, func(sess *persistence.Session) error {
		repo := s.repos(sess)
		for i := 0; i < n; i++ {
			if err := repo.Save(ctx, memberModel.NewMemberWithAge(fmt.Sprintf("user%d", i), i)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Errorw("Seed failed", "count", n, "error", err)
		return fmt.Errorf("failed to seed members: %w", err)
	}

	s.logger.Infow("Seed completed", "count", n)
	return nil
}
