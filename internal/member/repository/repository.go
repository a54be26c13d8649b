// Package repository provides data access layer for member module.
package repository

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	memberModel "github.com/festy23/datajpa/internal/member/model"
	"github.com/festy23/datajpa/internal/persistence"
	"github.com/festy23/datajpa/internal/persistence/query"
	teamModel "github.com/festy23/datajpa/internal/team/model"
)

// Repository defines the interface for member data access operations.
type Repository interface {
	// Save inserts or updates a member. The team association is not written.
	Save(ctx context.Context, member *memberModel.Member) error

	// FindByID finds member by id.
	FindByID(ctx context.Context, id int64) (*memberModel.Member, error)

	// FindAll returns every member ordered by id, loading teams as fetch says.
	FindAll(ctx context.Context, fetch persistence.Fetch) ([]*memberModel.Member, error)

	// Count returns the number of members.
	Count(ctx context.Context) (int64, error)

	// Delete removes a member.
	Delete(ctx context.Context, member *memberModel.Member) error

	// FindByUsernameAndAgeGreaterThan returns members with the username older than age.
	FindByUsernameAndAgeGreaterThan(ctx context.Context, username string, age int) ([]*memberModel.Member, error)

	// FindByCriteria returns members matching criteria in sort order.
	FindByCriteria(ctx context.Context, criteria query.Criteria, sort query.Sort) ([]*memberModel.Member, error)

	// FindByUsername runs the Member.findByUsername named query when registered,
	// otherwise the equivalent derived lookup.
	FindByUsername(ctx context.Context, username string) ([]*memberModel.Member, error)

	// FindUser returns members with exactly the username and age.
	FindUser(ctx context.Context, username string, age int) ([]*memberModel.Member, error)

	// FindUsernameList returns all usernames ordered by member id.
	FindUsernameList(ctx context.Context) ([]string, error)

	// FindMemberDto returns members that belong to a team, with the team name.
	FindMemberDto(ctx context.Context) ([]memberModel.MemberDto, error)

	// FindByNames returns members whose username is one of names.
	FindByNames(ctx context.Context, names []string) ([]*memberModel.Member, error)

	// FindListByUsername returns all members with the username.
	FindListByUsername(ctx context.Context, username string) ([]*memberModel.Member, error)

	// FindMemberByUsername returns the single member with the username.
	FindMemberByUsername(ctx context.Context, username string) (*memberModel.Member, error)

	// FindOptionalMemberByUsername is FindMemberByUsername reporting absence as false.
	FindOptionalMemberByUsername(ctx context.Context, username string) (*memberModel.Member, bool, error)

	// FindUsernameOnly returns "<username> <age>" projections of members with the username.
	FindUsernameOnly(ctx context.Context, username string) ([]memberModel.UsernameOnly, error)

	// FindPageByAge returns a page of members with the age. Content is read with
	// a left join on teams, the total with a join-free count over the same filter.
	FindPageByAge(ctx context.Context, age int, req query.PageRequest) (query.Page[*memberModel.Member], error)

	// FindSliceByAge returns a slice of members with the age.
	FindSliceByAge(ctx context.Context, age int, req query.PageRequest) (query.Slice[*memberModel.Member], error)

	// FindListByAge returns one page window of members with the age.
	FindListByAge(ctx context.Context, age int, req query.PageRequest) ([]*memberModel.Member, error)

	// FindPage returns a page of all members with their teams.
	FindPage(ctx context.Context, req query.PageRequest) (query.Page[*memberModel.Member], error)

	// BulkAgePlus adds one to the age of every member at least age years old.
	BulkAgePlus(ctx context.Context, age int, opts ...persistence.BulkOption) (int64, error)

	// FindMemberFetchJoin returns all members with teams loaded in one query.
	FindMemberFetchJoin(ctx context.Context) ([]*memberModel.Member, error)

	// FindEntityGraphByUsername returns members with the username and their teams.
	FindEntityGraphByUsername(ctx context.Context, username string) ([]*memberModel.Member, error)

	// TeamOf returns a deferred reference to the member's team, or nil without one.
	TeamOf(member *memberModel.Member) *persistence.Lazy[teamModel.Team]

	// FindLockByUsername returns members with the username, locking their rows.
	FindLockByUsername(ctx context.Context, username string, mode persistence.LockMode) ([]*memberModel.Member, error)

	// Clear detaches every entity managed by the repository's session.
	Clear()
}

// Factory binds a Repository to a session.
type Factory func(s *persistence.Session) Repository

type repository struct {
	session  *persistence.Session
	registry *query.Registry
	logger   *zap.SugaredLogger
}

// New creates a new member repository instance. registry may be nil, in which
// case every named lookup falls back to its derived form.
func New(session *persistence.Session, registry *query.Registry, logger *zap.SugaredLogger) Repository {
	return &repository{session: session, registry: registry, logger: logger}
}

// NewFactory returns a Factory creating repositories over registry.
func NewFactory(registry *query.Registry, logger *zap.SugaredLogger) Factory {
	return func(s *persistence.Session) Repository {
		return New(s, registry, logger)
	}
}

func byUsername(username string) query.Criteria {
	return query.Where("username").Eq(username)
}

func byAge(age int) query.Criteria {
	return query.Where("age").Eq(age)
}

// withTeam is the content-side join of FindPageByAge. It filters nothing.
func withTeam(db *gorm.DB) *gorm.DB {
	return db.Joins("LEFT JOIN teams ON teams.id = members.team_id")
}

// Save inserts or updates a member. The team association is not written.
func (r *repository) Save(ctx context.Context, member *memberModel.Member) error {
	r.logger.Debugw("Save called", "member_id", member.ID, "username", member.Username)

	if err := persistence.Save(ctx, r.session, member); err != nil {
		r.logger.Errorw("Save database error", "username", member.Username, "error", err)
		return err
	}

	r.logger.Infow("Save completed", "member_id", member.ID)
	return nil
}

// FindByID finds member by id.
func (r *repository) FindByID(ctx context.Context, id int64) (*memberModel.Member, error) {
	r.logger.Debugw("FindByID called", "member_id", id)

	member, err := persistence.Find[memberModel.Member](ctx, r.session, id)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			r.logger.Debugw("FindByID member not found", "member_id", id)
			return nil, memberModel.ErrMemberNotFound
		}
		r.logger.Errorw("FindByID database error", "member_id", id, "error", err)
		return nil, err
	}

	return member, nil
}

// FindAll returns every member ordered by id.
func (r *repository) FindAll(ctx context.Context, fetch persistence.Fetch) ([]*memberModel.Member, error) {
	return r.findAll(ctx, "FindAll", persistence.Spec{
		Sort:  query.By(query.Asc("id")),
		Fetch: fetch,
	})
}

// Count returns the number of members.
func (r *repository) Count(ctx context.Context) (int64, error) {
	count, err := persistence.Count[memberModel.Member](ctx, r.session, persistence.Spec{})
	if err != nil {
		r.logger.Errorw("Count database error", "error", err)
		return 0, err
	}
	return count, nil
}

// Delete removes a member.
func (r *repository) Delete(ctx context.Context, member *memberModel.Member) error {
	r.logger.Infow("Delete called", "member_id", member.ID)

	if err := persistence.Delete(ctx, r.session, member); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return memberModel.ErrMemberNotFound
		}
		r.logger.Errorw("Delete database error", "member_id", member.ID, "error", err)
		return err
	}
	return nil
}

// FindByUsernameAndAgeGreaterThan returns members with the username older than age.
func (r *repository) FindByUsernameAndAgeGreaterThan(ctx context.Context, username string, age int) ([]*memberModel.Member, error) {
	return r.findAll(ctx, "FindByUsernameAndAgeGreaterThan", persistence.Spec{
		Where: byUsername(username).And("age").Gt(age),
	})
}

// FindByCriteria returns members matching criteria in sort order.
func (r *repository) FindByCriteria(ctx context.Context, criteria query.Criteria, sort query.Sort) ([]*memberModel.Member, error) {
	return r.findAll(ctx, "FindByCriteria", persistence.Spec{Where: criteria, Sort: sort})
}

// FindByUsername prefers the named query over the derived lookup.
func (r *repository) FindByUsername(ctx context.Context, username string) ([]*memberModel.Member, error) {
	spec := persistence.NamedOrDerived(r.registry, QueryFindByUsername,
		map[string]any{"username": username},
		persistence.Spec{Where: byUsername(username)},
	)
	return r.findAll(ctx, "FindByUsername", spec)
}

// FindUser returns members with exactly the username and age.
func (r *repository) FindUser(ctx context.Context, username string, age int) ([]*memberModel.Member, error) {
	spec, err := r.named(QueryFindUser, map[string]any{"username": username, "age": age})
	if err != nil {
		return nil, err
	}
	return r.findAll(ctx, "FindUser", spec)
}

// FindUsernameList returns all usernames ordered by member id.
func (r *repository) FindUsernameList(ctx context.Context) ([]string, error) {
	r.logger.Debugw("FindUsernameList called")

	names := []string{}
	err := r.session.DB().WithContext(ctx).
		Model(&memberModel.Member{}).
		Order("id").
		Pluck("username", &names).Error
	if err != nil {
		r.logger.Errorw("FindUsernameList database error", "error", err)
		return nil, err
	}
	return names, nil
}

// FindMemberDto returns members that belong to a team, with the team name.
func (r *repository) FindMemberDto(ctx context.Context) ([]memberModel.MemberDto, error) {
	r.logger.Debugw("FindMemberDto called")

	dtos := []memberModel.MemberDto{}
	err := r.session.DB().WithContext(ctx).
		Model(&memberModel.Member{}).
		Select("members.id AS id, members.username AS username, teams.name AS team_name").
		Joins("JOIN teams ON teams.id = members.team_id").
		Order("members.id").
		Scan(&dtos).Error
	if err != nil {
		r.logger.Errorw("FindMemberDto database error", "error", err)
		return nil, err
	}
	return dtos, nil
}

// FindByNames returns members whose username is one of names.
func (r *repository) FindByNames(ctx context.Context, names []string) ([]*memberModel.Member, error) {
	if len(names) == 0 {
		return []*memberModel.Member{}, nil
	}
	spec, err := r.named(QueryFindByNames, map[string]any{"names": names})
	if err != nil {
		return nil, err
	}
	return r.findAll(ctx, "FindByNames", spec)
}

// FindListByUsername returns all members with the username.
func (r *repository) FindListByUsername(ctx context.Context, username string) ([]*memberModel.Member, error) {
	return r.findAll(ctx, "FindListByUsername", persistence.Spec{Where: byUsername(username)})
}

// FindMemberByUsername returns the single member with the username.
// It fails with ErrMemberNotFound or persistence.ErrNonUniqueResult.
func (r *repository) FindMemberByUsername(ctx context.Context, username string) (*memberModel.Member, error) {
	r.logger.Debugw("FindMemberByUsername called", "username", username)

	member, err := persistence.FindOne[memberModel.Member](ctx, r.session, persistence.Spec{Where: byUsername(username)})
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return nil, memberModel.ErrMemberNotFound
		}
		r.logger.Errorw("FindMemberByUsername database error", "username", username, "error", err)
		return nil, err
	}
	return member, nil
}

// FindOptionalMemberByUsername is FindMemberByUsername reporting absence as false.
func (r *repository) FindOptionalMemberByUsername(ctx context.Context, username string) (*memberModel.Member, bool, error) {
	r.logger.Debugw("FindOptionalMemberByUsername called", "username", username)

	member, ok, err := persistence.FindOptional[memberModel.Member](ctx, r.session, persistence.Spec{Where: byUsername(username)})
	if err != nil {
		r.logger.Errorw("FindOptionalMemberByUsername database error", "username", username, "error", err)
		return nil, false, err
	}
	return member, ok, nil
}

// FindUsernameOnly returns "<username> <age>" projections of members with the username.
func (r *repository) FindUsernameOnly(ctx context.Context, username string) ([]memberModel.UsernameOnly, error) {
	r.logger.Debugw("FindUsernameOnly called", "username", username)

	rows := []memberModel.UsernameOnly{}
	err := r.session.DB().WithContext(ctx).
		Model(&memberModel.Member{}).
		Select("username || ' ' || age AS username").
		Where("username = ?", username).
		Order("id").
		Scan(&rows).Error
	if err != nil {
		r.logger.Errorw("FindUsernameOnly database error", "username", username, "error", err)
		return nil, err
	}
	return rows, nil
}

// FindPageByAge returns a page of members with the age.
func (r *repository) FindPageByAge(ctx context.Context, age int, req query.PageRequest) (query.Page[*memberModel.Member], error) {
	r.logger.Debugw("FindPageByAge called", "age", age, "page", req.Page, "size", req.Size, "sort", req.Sort.String())

	page, err := persistence.FindPage[memberModel.Member](ctx, r.session,
		persistence.Spec{Where: byAge(age), Scope: withTeam},
		req,
		persistence.CountQuery(persistence.Spec{Where: byAge(age)}),
	)
	if err != nil {
		r.logger.Errorw("FindPageByAge database error", "age", age, "error", err)
		return query.Page[*memberModel.Member]{}, err
	}
	return page, nil
}

// FindSliceByAge returns a slice of members with the age.
func (r *repository) FindSliceByAge(ctx context.Context, age int, req query.PageRequest) (query.Slice[*memberModel.Member], error) {
	r.logger.Debugw("FindSliceByAge called", "age", age, "page", req.Page, "size", req.Size)

	slice, err := persistence.FindSlice[memberModel.Member](ctx, r.session, persistence.Spec{Where: byAge(age)}, req)
	if err != nil {
		r.logger.Errorw("FindSliceByAge database error", "age", age, "error", err)
		return query.Slice[*memberModel.Member]{}, err
	}
	return slice, nil
}

// FindListByAge returns one page window of members with the age.
func (r *repository) FindListByAge(ctx context.Context, age int, req query.PageRequest) ([]*memberModel.Member, error) {
	r.logger.Debugw("FindListByAge called", "age", age, "page", req.Page, "size", req.Size)

	members, err := persistence.FindList[memberModel.Member](ctx, r.session, persistence.Spec{Where: byAge(age)}, req)
	if err != nil {
		r.logger.Errorw("FindListByAge database error", "age", age, "error", err)
		return nil, err
	}
	return members, nil
}

// FindPage returns a page of all members with their teams.
func (r *repository) FindPage(ctx context.Context, req query.PageRequest) (query.Page[*memberModel.Member], error) {
	r.logger.Debugw("FindPage called", "page", req.Page, "size", req.Size, "sort", req.Sort.String())

	page, err := persistence.FindPage[memberModel.Member](ctx, r.session,
		persistence.Spec{Fetch: persistence.FetchJoin("Team")},
		req,
		persistence.CountQuery(persistence.Spec{}),
	)
	if err != nil {
		if !errors.Is(err, query.ErrUnknownField) && !errors.Is(err, query.ErrInvalidPageRequest) {
			r.logger.Errorw("FindPage database error", "error", err)
		}
		return query.Page[*memberModel.Member]{}, err
	}
	return page, nil
}

// BulkAgePlus adds one to the age of every member at least age years old.
// Managed members keep their old age unless persistence.ClearAutomatically is
// passed or the caller clears the session.
func (r *repository) BulkAgePlus(ctx context.Context, age int, opts ...persistence.BulkOption) (int64, error) {
	r.logger.Debugw("BulkAgePlus called", "age", age)

	affected, err := persistence.BulkUpdate[memberModel.Member](ctx, r.session,
		query.Where("age").Ge(age),
		map[string]any{"age": gorm.Expr("age + ?", 1)},
		opts...,
	)
	if err != nil {
		r.logger.Errorw("BulkAgePlus database error", "age", age, "error", err)
		return 0, err
	}
	return affected, nil
}

// FindMemberFetchJoin returns all members with teams loaded in one query.
func (r *repository) FindMemberFetchJoin(ctx context.Context) ([]*memberModel.Member, error) {
	return r.FindAll(ctx, persistence.FetchJoin("Team"))
}

// FindEntityGraphByUsername returns members with the username and their teams.
func (r *repository) FindEntityGraphByUsername(ctx context.Context, username string) ([]*memberModel.Member, error) {
	return r.findAll(ctx, "FindEntityGraphByUsername", persistence.Spec{
		Where: byUsername(username),
		Fetch: persistence.FetchJoin("Team"),
	})
}

// TeamOf returns a deferred reference to the member's team. A team already
// loaded on the member is returned without a query on Get.
func (r *repository) TeamOf(member *memberModel.Member) *persistence.Lazy[teamModel.Team] {
	if member == nil || member.TeamID == nil {
		return nil
	}
	if member.Team != nil {
		return persistence.Loaded(*member.TeamID, member.Team)
	}
	return persistence.Ref[teamModel.Team](r.session, *member.TeamID)
}

// FindLockByUsername returns members with the username, locking their rows
// until the session's transaction ends.
func (r *repository) FindLockByUsername(ctx context.Context, username string, mode persistence.LockMode) ([]*memberModel.Member, error) {
	r.logger.Debugw("FindLockByUsername called", "username", username, "lock", mode.String())
	return r.findAll(ctx, "FindLockByUsername", persistence.Spec{
		Where: byUsername(username),
		Lock:  mode,
	})
}

// Clear detaches every entity managed by the repository's session.
func (r *repository) Clear() {
	r.session.Clear()
}

func (r *repository) named(name string, args map[string]any) (persistence.Spec, error) {
	q, err := r.registry.Get(name)
	if err != nil {
		r.logger.Errorw("named query missing", "name", name, "error", err)
		return persistence.Spec{}, err
	}
	return persistence.Spec{Named: &q, Args: args}, nil
}

func (r *repository) findAll(ctx context.Context, op string, spec persistence.Spec) ([]*memberModel.Member, error) {
	members, err := persistence.FindAll[memberModel.Member](ctx, r.session, spec)
	if err != nil {
		r.logger.Errorw(op+" database error", "named", spec.IsNamed(), "error", err)
		return nil, err
	}
	r.logger.Debugw(op+" completed", "count", len(members))
	return members, nil
}
