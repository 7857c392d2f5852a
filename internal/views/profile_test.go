package views

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/siahsang/conduit/internal/auth"
)

func strPtr(s string) *string { return &s }

func newUser(id int64, username string) *auth.User {
	return &auth.User{
		ID:       id,
		Username: username,
		Email:    username + "@example.com",
		Bio:      strPtr("bio of " + username),
		Image:    strPtr("https://example.com/" + username + ".png"),
	}
}

func TestNewProfileView(t *testing.T) {
	target := newUser(2, "bob")

	t.Run("viewer follows target", func(t *testing.T) {
		viewer := newUser(1, "alice")
		viewer.FollowingIDs = []int64{2, 7}

		profile := NewProfileView(target, viewer)

		assert.True(t, profile.Following)
		assert.Equal(t, "bob", profile.Username)
		assert.Equal(t, target.Bio, profile.Bio)
		assert.Equal(t, target.Image, profile.Image)
	})

	t.Run("viewer does not follow target", func(t *testing.T) {
		viewer := newUser(1, "alice")
		viewer.FollowingIDs = []int64{7}

		profile := NewProfileView(target, viewer)

		assert.False(t, profile.Following)
	})

	t.Run("anonymous viewer never follows", func(t *testing.T) {
		profile := NewProfileView(target, nil)

		assert.False(t, profile.Following)
	})
}

func TestProfileViewSelfViewNeverFollowing(t *testing.T) {
	user := newUser(1, "alice")
	// Even a corrupted follow-set containing the user's own id must not
	// surface as "following yourself".
	user.FollowingIDs = []int64{1}

	assert.False(t, NewProfileView(user, user).Following)
	assert.False(t, NewOwnProfileView(user).Following)
}

func TestProfileViewDoesNotExposeCredentials(t *testing.T) {
	user := newUser(1, "alice")
	user.Password = []byte("$2a$12$secret-hash")

	profile := NewProfileView(user, nil)

	assert.Equal(t, ProfileView{
		ID:       1,
		Username: "alice",
		Bio:      user.Bio,
		Image:    user.Image,
	}, profile)
}
