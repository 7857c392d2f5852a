// Package views builds the viewer-relative representations handed up to the
// HTTP layer. Every constructor here is a pure function over in-memory
// snapshots: nothing is read from or written to the store, so views can be
// built concurrently for any number of viewers. Raw users never leak out of
// this package; only the non-sensitive projections do.
package views

import "github.com/siahsang/conduit/internal/auth"

// ProfileView is the non-sensitive projection of a user as seen by a
// particular viewer. The Following flag is the viewer's, not the target's.
type ProfileView struct {
	ID        int64   `json:"-"`
	Username  string  `json:"username"`
	Bio       *string `json:"bio"`
	Image     *string `json:"image"`
	Following bool    `json:"following"`
}

// NewProfileView projects target relative to viewer. A nil viewer is the
// anonymous case and never follows anyone. A user viewing itself is reported
// as not following, even if its follow-set erroneously contains its own id.
func NewProfileView(target *auth.User, viewer *auth.User) ProfileView {
	following := viewer != nil &&
		viewer.ID != target.ID &&
		viewer.IsFollowing(target.ID)

	return ProfileView{
		ID:        target.ID,
		Username:  target.Username,
		Bio:       target.Bio,
		Image:     target.Image,
		Following: following,
	}
}

// NewOwnProfileView is the self-view entry point: the viewer is the target.
func NewOwnProfileView(user *auth.User) ProfileView {
	return NewProfileView(user, user)
}
