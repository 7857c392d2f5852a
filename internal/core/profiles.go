package core

import (
	"context"
	"database/sql"

	"github.com/mdobak/go-xerrors"

	"github.com/siahsang/conduit/internal/auth"
	"github.com/siahsang/conduit/internal/utils/databaseutils"
	"github.com/siahsang/conduit/internal/views"
)

var ErrSelfFollow = xerrors.Message("Users cannot follow themselves")

func scanID(rows *sql.Rows) (int64, error) {
	var id int64
	if err := rows.Scan(&id); err != nil {
		return 0, xerrors.New(err)
	}
	return id, nil
}

// FollowingIDs returns the ids of the users that userID follows.
func (c *Core) FollowingIDs(ctx context.Context, userID int64) ([]int64, error) {
	query := `
		SELECT user_id
		FROM followers
		WHERE follower_id = $1
		ORDER BY user_id
	`

	ids, err := databaseutils.ExecuteQuery(c.sqlTemplate, ctx, query, scanID, userID)
	if err != nil {
		return nil, xerrors.New(err)
	}
	return ids, nil
}

func (c *Core) FavoritedArticleIDs(ctx context.Context, userID int64) ([]int64, error) {
	query := `
		SELECT article_id
		FROM favorite_articles
		WHERE user_id = $1
		ORDER BY article_id
	`

	ids, err := databaseutils.ExecuteQuery(c.sqlTemplate, ctx, query, scanID, userID)
	if err != nil {
		return nil, xerrors.New(err)
	}
	return ids, nil
}

// GetProfile projects the named user relative to viewer, which may be nil
// for anonymous requests.
func (c *Core) GetProfile(ctx context.Context, username string, viewer *auth.User) (views.ProfileView, error) {
	target, err := c.GetUserByUsername(ctx, username)
	if err != nil {
		return views.ProfileView{}, xerrors.New(err)
	}

	return views.NewProfileView(target, viewer), nil
}

// FollowUser adds followee to the follower's follow-set. Following a user
// that is already followed is a no-op; following yourself is rejected so the
// "never following yourself" projection invariant cannot be corrupted at the
// source.
func (c *Core) FollowUser(ctx context.Context, follower *auth.User, followeeUsername string) (views.ProfileView, error) {
	followee, err := c.GetUserByUsername(ctx, followeeUsername)
	if err != nil {
		return views.ProfileView{}, xerrors.New(err)
	}

	if followee.ID == follower.ID {
		return views.ProfileView{}, xerrors.New(ErrSelfFollow)
	}

	insertSQL := `
		INSERT INTO followers (user_id, follower_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, follower_id) DO NOTHING
	`

	if _, err := databaseutils.ExecuteUpdate(c.sqlTemplate, ctx, insertSQL, followee.ID, follower.ID); err != nil {
		return views.ProfileView{}, xerrors.New(err)
	}

	follower.Follow(followee.ID)
	return views.NewProfileView(followee, follower), nil
}

// UnfollowUser removes followee from the follower's follow-set. Unfollowing
// a user that is not followed is a no-op.
func (c *Core) UnfollowUser(ctx context.Context, follower *auth.User, followeeUsername string) (views.ProfileView, error) {
	followee, err := c.GetUserByUsername(ctx, followeeUsername)
	if err != nil {
		return views.ProfileView{}, xerrors.New(err)
	}

	deleteSQL := `
		DELETE FROM followers
		WHERE user_id = $1 AND follower_id = $2
	`

	if _, err := databaseutils.ExecuteUpdate(c.sqlTemplate, ctx, deleteSQL, followee.ID, follower.ID); err != nil {
		return views.ProfileView{}, xerrors.New(err)
	}

	follower.Unfollow(followee.ID)
	return views.NewProfileView(followee, follower), nil
}
