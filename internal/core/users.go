package core

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/mdobak/go-xerrors"

	"github.com/siahsang/conduit/internal/auth"
	"github.com/siahsang/conduit/internal/utils/databaseutils"
	"github.com/siahsang/conduit/internal/utils/stringutils"
)

var (
	ErrDuplicateEmail    = xerrors.Message("Duplicate email")
	ErrDuplicateUsername = xerrors.Message("Duplicate username")
	NoRecordFound        = xerrors.Message("No record found")
)

const uniqueViolation = "23505"

func scanUser(rows *sql.Rows) (*auth.User, error) {
	user := &auth.User{}
	if err := rows.Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.Password,
		&user.Bio,
		&user.Image,
	); err != nil {
		return nil, xerrors.New(err)
	}
	return user, nil
}

// mapUserConstraintError translates Postgres unique violations on the users
// table into the field-level duplicate sentinels.
func mapUserConstraintError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		switch pqErr.Constraint {
		case "users_email_key":
			return xerrors.New(ErrDuplicateEmail)
		case "users_username_key":
			return xerrors.New(ErrDuplicateUsername)
		}
	}
	return xerrors.New(err)
}

func (c *Core) CreateNewUser(ctx context.Context, user *auth.User) error {
	query := `
		INSERT INTO users (email, username, password, bio, image)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	args := []any{user.Email, user.Username, user.Password, user.Bio, user.Image}
	_, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, ctx, query, func(rows *sql.Rows) (*auth.User, error) {
		if err := rows.Scan(&user.ID); err != nil {
			return nil, xerrors.New(err)
		}
		return user, nil
	}, args...)

	if err != nil {
		return mapUserConstraintError(err)
	}

	c.log.Info("user registered", "user_id", user.ID, "username", user.Username)
	return nil
}

func (c *Core) GetUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	query := `
		SELECT id, email, username, password, bio, image
		FROM users
		WHERE email = $1
	`

	return c.getSingleUser(ctx, query, email)
}

func (c *Core) GetUserByUsername(ctx context.Context, username string) (*auth.User, error) {
	query := `
		SELECT id, email, username, password, bio, image
		FROM users
		WHERE username = $1
	`

	return c.getSingleUser(ctx, query, username)
}

func (c *Core) GetUserByID(ctx context.Context, id int64) (*auth.User, error) {
	query := `
		SELECT id, email, username, password, bio, image
		FROM users
		WHERE id = $1
	`

	return c.getSingleUser(ctx, query, id)
}

func (c *Core) getSingleUser(ctx context.Context, query string, arg any) (*auth.User, error) {
	user, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, ctx, query, scanUser, arg)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, xerrors.New(NoRecordFound)
		default:
			return nil, xerrors.New(err)
		}
	}

	return user, nil
}

func (c *Core) GetUsersByIdList(ctx context.Context, userIdList []int64) ([]*auth.User, error) {
	if len(userIdList) == 0 {
		return []*auth.User{}, nil
	}

	placeholders, args := stringutils.INClause(userIdList, 1)
	query := fmt.Sprintf(`
		SELECT id, email, username, password, bio, image
		FROM users
		WHERE id IN (%s)
	`, strings.Join(placeholders, ", "))

	queryResultList, err := databaseutils.ExecuteQuery(c.sqlTemplate, ctx, query, scanUser, args...)
	if err != nil {
		return nil, xerrors.New(err)
	}

	return queryResultList, nil
}

func (c *Core) UpdateUser(ctx context.Context, user *auth.User) (*auth.User, error) {
	query := `
		UPDATE users
		SET email = $1, username = $2, password = $3, bio = $4, image = $5
		WHERE id = $6
		RETURNING id, email, username, password, bio, image
	`

	args := []any{user.Email, user.Username, user.Password, user.Bio, user.Image, user.ID}
	returningUser, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, ctx, query, scanUser, args...)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, xerrors.New(NoRecordFound)
		default:
			return nil, mapUserConstraintError(err)
		}
	}

	c.log.Info("user updated", "user_id", returningUser.ID, "email", returningUser.Email)
	return returningUser, nil
}
