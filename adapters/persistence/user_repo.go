package persistence

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/khoahotran/career-onboard/internal/domain/profile"
	"github.com/khoahotran/career-onboard/internal/domain/user"
	"github.com/khoahotran/career-onboard/pkg/apperror"
	"github.com/khoahotran/career-onboard/pkg/logger"
)

var userColumns = []string{
	"id", "external_id", "name", "email", "image_url", "industry",
	"experience", "bio", "skills", "onboarding_completed", "created_at", "updated_at",
}

type postgresUserRepo struct {
	db     DBTX
	logger logger.Logger
}

func NewPostgresUserRepo(db DBTX, logger logger.Logger) user.Repository {
	return &postgresUserRepo{db: db, logger: logger}
}

func scanUser(row pgx.Row) (*user.User, error) {
	u := &user.User{}
	err := row.Scan(
		&u.ID,
		&u.ExternalID,
		&u.Name,
		&u.Email,
		&u.ImageURL,
		&u.Industry,
		&u.Experience,
		&u.Bio,
		&u.Skills,
		&u.OnboardingCompleted,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if u.Skills == nil {
		u.Skills = []string{}
	}
	return u, nil
}

func (r *postgresUserRepo) FindByExternalID(ctx context.Context, externalID string) (*user.User, error) {
	query, args, err := psql.Select(userColumns...).
		From("users").
		Where(sq.Eq{"external_id": externalID}).
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build user query", err)
	}

	u, err := scanUser(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrUserNotFound
		}
		return nil, apperror.NewInternal("failed to query user", err)
	}
	return u, nil
}

func (r *postgresUserRepo) FindIndustryByExternalID(ctx context.Context, externalID string) (*string, error) {
	query, args, err := psql.Select("industry").
		From("users").
		Where(sq.Eq{"external_id": externalID}).
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build industry query", err)
	}

	var industry *string
	if err := r.db.QueryRow(ctx, query, args...).Scan(&industry); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrUserNotFound
		}
		return nil, apperror.NewInternal("failed to query user industry", err)
	}
	return industry, nil
}

func (r *postgresUserRepo) Create(ctx context.Context, u *user.User) (*user.User, error) {
	skills := u.Skills
	if skills == nil {
		skills = []string{}
	}
	query, args, err := psql.Insert("users").
		Columns("id", "external_id", "name", "email", "image_url", "experience", "bio", "skills", "onboarding_completed", "created_at", "updated_at").
		Values(u.ID, u.ExternalID, u.Name, u.Email, u.ImageURL, u.Experience, u.Bio, skills, false, u.CreatedAt, u.UpdatedAt).
		Suffix("ON CONFLICT (external_id) DO NOTHING RETURNING " + joinColumns(userColumns)).
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build user insert", err)
	}

	created, err := scanUser(r.db.QueryRow(ctx, query, args...))
	if err == nil {
		return created, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, translatePgError("failed to insert user", err)
	}

	// Another request created the same identity first.
	return r.FindByExternalID(ctx, u.ExternalID)
}

func (r *postgresUserRepo) UpdateProfile(ctx context.Context, id uuid.UUID, upd profile.Update) (*user.User, error) {
	skills := upd.Skills
	if skills == nil {
		skills = []string{}
	}
	query, args, err := psql.Update("users").
		SetMap(map[string]any{
			"industry":             upd.Industry,
			"experience":           upd.Experience,
			"bio":                  upd.Bio,
			"skills":               skills,
			"onboarding_completed": true,
			"updated_at":           time.Now().UTC(),
		}).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + joinColumns(userColumns)).
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build user update", err)
	}

	u, err := scanUser(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrUserNotFound
		}
		return nil, translatePgError("failed to update user profile", err)
	}
	return u, nil
}
