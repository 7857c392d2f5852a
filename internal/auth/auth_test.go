package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashAndMatch(t *testing.T) {
	user := &User{}
	require.NoError(t, user.SetPassword("correct horse battery staple"))

	assert.NotEmpty(t, user.Password)
	assert.NotContains(t, string(user.Password), "correct horse")

	match, err := user.IsPasswordMatch("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, match)

	match, err = user.IsPasswordMatch("wrong password")
	require.NoError(t, err)
	assert.False(t, match)
}

func TestTokenRoundTrip(t *testing.T) {
	auth := New("test-secret", time.Hour)
	user := &User{ID: 42, Username: "jacob"}

	token, err := auth.GenerateToken(user)
	require.NoError(t, err)

	principal, err := auth.Authenticate(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), principal.UserID)
	assert.Equal(t, token, principal.Token)
}

func TestAuthenticateRejectsWrongSecret(t *testing.T) {
	token, err := New("secret-one", time.Hour).GenerateToken(&User{ID: 1, Username: "jacob"})
	require.NoError(t, err)

	_, err = New("secret-two", time.Hour).Authenticate(token)
	assert.Error(t, err)
}

func TestAuthenticateRejectsExpiredToken(t *testing.T) {
	auth := New("test-secret", -time.Minute)
	token, err := auth.GenerateToken(&User{ID: 1, Username: "jacob"})
	require.NoError(t, err)

	_, err = auth.Authenticate(token)
	assert.Error(t, err)
}

func TestAuthenticateRejectsGarbage(t *testing.T) {
	_, err := New("test-secret", time.Hour).Authenticate("not-a-token")
	assert.Error(t, err)
}

func TestFollowSetSync(t *testing.T) {
	user := &User{ID: 1}

	user.Follow(7)
	user.Follow(7)
	assert.Equal(t, []int64{7}, user.FollowingIDs)
	assert.True(t, user.IsFollowing(7))

	user.Unfollow(7)
	assert.False(t, user.IsFollowing(7))
	assert.Empty(t, user.FollowingIDs)

	user.Unfollow(7)
	assert.Empty(t, user.FollowingIDs)
}

func TestFavoriteSetSync(t *testing.T) {
	user := &User{ID: 1}

	user.FavoriteArticle(3)
	user.FavoriteArticle(3)
	assert.Equal(t, []int64{3}, user.FavoritedArticleIDs)
	assert.True(t, user.IsFavoriteArticle(3))

	user.UnfavoriteArticle(3)
	assert.False(t, user.IsFavoriteArticle(3))
	assert.Empty(t, user.FavoritedArticleIDs)
}
