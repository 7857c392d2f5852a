package auth

import (
	"slices"

	"github.com/golang-jwt/jwt/v5"
)

// User is the persisted account entity. Password holds the bcrypt hash and
// is never serialized. FollowingIDs and FavoritedArticleIDs are the user's
// two relation sets, loaded once when the session is resolved so that view
// construction never goes back to the store per row.
type User struct {
	ID                  int64   `json:"-"`
	Email               string  `json:"email"`
	Username            string  `json:"username"`
	Password            []byte  `json:"-"`
	PlaintextPassword   string  `json:"-"`
	Bio                 *string `json:"bio"`
	Image               *string `json:"image"`
	FollowingIDs        []int64 `json:"-"`
	FavoritedArticleIDs []int64 `json:"-"`
}

func (user *User) IsFollowing(userID int64) bool {
	return slices.Contains(user.FollowingIDs, userID)
}

func (user *User) IsFavoriteArticle(articleID int64) bool {
	return slices.Contains(user.FavoritedArticleIDs, articleID)
}

// Follow records userID in the in-memory follow-set. The store keeps the
// authoritative edge; this only keeps the snapshot consistent within the
// current request. Idempotent, like the store-side mutation.
func (user *User) Follow(userID int64) {
	if !user.IsFollowing(userID) {
		user.FollowingIDs = append(user.FollowingIDs, userID)
	}
}

func (user *User) Unfollow(userID int64) {
	user.FollowingIDs = slices.DeleteFunc(user.FollowingIDs, func(id int64) bool {
		return id == userID
	})
}

func (user *User) FavoriteArticle(articleID int64) {
	if !user.IsFavoriteArticle(articleID) {
		user.FavoritedArticleIDs = append(user.FavoritedArticleIDs, articleID)
	}
}

func (user *User) UnfavoriteArticle(articleID int64) {
	user.FavoritedArticleIDs = slices.DeleteFunc(user.FavoritedArticleIDs, func(id int64) bool {
		return id == articleID
	})
}

// Principal is the already-verified authentication principal. By the time a
// Principal exists the token signature has been checked; it only carries the
// user id the token was issued for, plus the raw token for echoing back.
type Principal struct {
	UserID int64
	Token  string
}

// Session pairs the acting user with the token it presented. It is built
// once per request by session resolution and passed explicitly from there.
type Session struct {
	User  *User
	Token string
}

type UserClaim struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`

	jwt.RegisteredClaims
}
