package core

import (
	"context"
	"errors"

	"github.com/mdobak/go-xerrors"

	"github.com/siahsang/conduit/internal/auth"
)

// ResolveSession maps an already-verified principal to the full acting user.
// A nil principal (no authentication context) and a principal whose user no
// longer exists both resolve to (nil, nil): anonymous is a normal terminal
// state for a request, not an error. Signature checks happened before the
// principal was built and are not repeated here.
//
// The resolved user carries its follow-set and favorite-set, loaded here in
// two queries so that view construction later in the request never has to
// ask the store about membership again.
func (c *Core) ResolveSession(ctx context.Context, principal *auth.Principal) (*auth.Session, error) {
	if principal == nil {
		return nil, nil
	}

	user, err := c.GetUserByID(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, NoRecordFound) {
			return nil, nil
		}
		return nil, xerrors.New(err)
	}

	if err := c.loadRelationSets(ctx, user); err != nil {
		return nil, xerrors.New(err)
	}

	return &auth.Session{User: user, Token: principal.Token}, nil
}

func (c *Core) loadRelationSets(ctx context.Context, user *auth.User) error {
	followingIDs, err := c.FollowingIDs(ctx, user.ID)
	if err != nil {
		return err
	}

	favoritedIDs, err := c.FavoritedArticleIDs(ctx, user.ID)
	if err != nil {
		return err
	}

	user.FollowingIDs = followingIDs
	user.FavoritedArticleIDs = favoritedIDs
	return nil
}
