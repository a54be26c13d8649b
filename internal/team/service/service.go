// Package service provides business logic layer for team module.
package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	memberModel "github.com/festy23/datajpa/internal/member/model"
	"github.com/festy23/datajpa/internal/persistence"
	teamModel "github.com/festy23/datajpa/internal/team/model"
	"github.com/festy23/datajpa/internal/team/repository"
)

// Service defines the interface for team business logic operations.
type Service interface {
	// Create saves a new team.
	Create(ctx context.Context, name string) (*teamModel.Team, error)

	// Get returns a team by id.
	Get(ctx context.Context, id int64) (*teamModel.Team, error)

	// Members returns the members of a team.
	Members(ctx context.Context, teamID int64) ([]memberModel.MemberDto, error)
}

type service struct {
	manager *persistence.Manager
	repos   repository.Factory
	logger  *zap.SugaredLogger
}

// New creates a new team service instance.
func New(manager *persistence.Manager, repos repository.Factory, logger *zap.SugaredLogger) Service {
	return &service{
		manager: manager,
		repos:   repos,
		logger:  logger,
	}
}

// Create saves a new team in a transaction.
func (s *service) Create(ctx context.Context, name string) (*teamModel.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, teamModel.ErrInvalidTeamName
	}

	team := teamModel.NewTeam(name)
	err := s.manager.InTransaction(ctx, func(sess *persistence.Session) error {
		return s.repos(sess).Save(ctx, team)
	})
	if err != nil {
		s.logger.Errorw("Create failed", "name", name, "error", err)
		return nil, err
	}

	s.logger.Infow("Create completed", "team_id", team.ID, "name", name)
	return team, nil
}

// Get returns a team by id.
func (s *service) Get(ctx context.Context, id int64) (*teamModel.Team, error) {
	return s.repos(s.manager.Session()).FindByID(ctx, id)
}

// Members returns the members of a team.
func (s *service) Members(ctx context.Context, teamID int64) ([]memberModel.MemberDto, error) {
	var result []memberModel.MemberDto
	err := s.manager.InTransaction(ctx, func(sess *persistence.Session) error {
		repo := s.repos(sess)

		team, err := repo.FindByID(ctx, teamID)
		if err != nil {
			return err
		}

		members, err := repo.Members(ctx, teamID)
		if err != nil {
			return err
		}

		result = make([]memberModel.MemberDto, 0, len(members))
		for _, m := range members {
			dto := memberModel.NewMemberDto(m)
			dto.TeamName = team.Name
			result = append(result, dto)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
