//go:build integration

package core

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/siahsang/conduit/internal/auth"
	"github.com/siahsang/conduit/internal/filter"
	"github.com/siahsang/conduit/internal/utils/databaseutils"
	"github.com/siahsang/conduit/models"
)

type CoreIntegrationSuite struct {
	suite.Suite
	ctx       context.Context
	container *postgres.PostgresContainer
	db        *sql.DB
	core      *Core
}

func (s *CoreIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()

	migrationsPath, err := filepath.Abs("../../migrations")
	s.Require().NoError(err)

	container, err := postgres.Run(s.ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("conduit_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		postgres.WithInitScripts(
			filepath.Join(migrationsPath, "001_init.up.sql"),
		),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = container

	connStr, err := container.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)

	db, err := sql.Open("postgres", connStr)
	s.Require().NoError(err)
	s.Require().NoError(db.Ping())
	s.db = db

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	sqlTemplate := databaseutils.NewSQLTemplate(db, 10*time.Second)
	session := databaseutils.NewSession(db, logger)
	s.core = NewCore(db, logger, sqlTemplate, session)
}

func (s *CoreIntegrationSuite) TearDownSuite() {
	if s.db != nil {
		s.db.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func (s *CoreIntegrationSuite) SetupTest() {
	_, _ = s.db.ExecContext(s.ctx, "DELETE FROM comments")
	_, _ = s.db.ExecContext(s.ctx, "DELETE FROM favorite_articles")
	_, _ = s.db.ExecContext(s.ctx, "DELETE FROM article_tags")
	_, _ = s.db.ExecContext(s.ctx, "DELETE FROM tags")
	_, _ = s.db.ExecContext(s.ctx, "DELETE FROM articles")
	_, _ = s.db.ExecContext(s.ctx, "DELETE FROM followers")
	_, _ = s.db.ExecContext(s.ctx, "DELETE FROM users")
}

func (s *CoreIntegrationSuite) registerUser(username string) *auth.User {
	user := &auth.User{
		Email:    username + "@example.com",
		Username: username,
	}
	s.Require().NoError(user.SetPassword("password-of-" + username))
	s.Require().NoError(s.core.CreateNewUser(s.ctx, user))
	return user
}

func (s *CoreIntegrationSuite) createArticle(author *auth.User, title string, tags ...string) *models.Article {
	article, err := s.core.CreateArticle(s.ctx, &models.Article{
		Title:       title,
		Description: "description of " + title,
		Body:        "body of " + title,
		Slug:        MakeSlug(title),
		AuthorID:    author.ID,
	}, tags)
	s.Require().NoError(err)
	return article
}

func (s *CoreIntegrationSuite) TestRegistrationConflicts() {
	s.registerUser("alice")

	duplicateEmail := &auth.User{Email: "alice@example.com", Username: "not-alice"}
	s.Require().NoError(duplicateEmail.SetPassword("irrelevant"))
	err := s.core.CreateNewUser(s.ctx, duplicateEmail)
	s.ErrorIs(err, ErrDuplicateEmail)

	duplicateUsername := &auth.User{Email: "other@example.com", Username: "alice"}
	s.Require().NoError(duplicateUsername.SetPassword("irrelevant"))
	err = s.core.CreateNewUser(s.ctx, duplicateUsername)
	s.ErrorIs(err, ErrDuplicateUsername)
}

func (s *CoreIntegrationSuite) TestFollowIsIdempotent() {
	alice := s.registerUser("alice")
	s.registerUser("bob")

	profile, err := s.core.FollowUser(s.ctx, alice, "bob")
	s.Require().NoError(err)
	s.True(profile.Following)

	// following again must change nothing
	profile, err = s.core.FollowUser(s.ctx, alice, "bob")
	s.Require().NoError(err)
	s.True(profile.Following)

	ids, err := s.core.FollowingIDs(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.Len(ids, 1)

	// unfollowing a non-followed user is a no-op
	s.registerUser("carol")
	_, err = s.core.UnfollowUser(s.ctx, alice, "carol")
	s.Require().NoError(err)

	ids, err = s.core.FollowingIDs(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.Len(ids, 1)
}

func (s *CoreIntegrationSuite) TestSelfFollowRejected() {
	alice := s.registerUser("alice")

	_, err := s.core.FollowUser(s.ctx, alice, "alice")
	s.ErrorIs(err, ErrSelfFollow)

	ids, err := s.core.FollowingIDs(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.Empty(ids)
}

func (s *CoreIntegrationSuite) TestFavoriteCountMatchesMembership() {
	alice := s.registerUser("alice")
	bob := s.registerUser("bob")
	author := s.registerUser("carol")
	article := s.createArticle(author, "Counting favorites")

	favorited, err := s.core.FavoriteArticle(s.ctx, alice, article.Slug)
	s.Require().NoError(err)
	s.Equal(int64(1), favorited.FavoritesCount)

	// repeat favorite by the same user must not double count
	favorited, err = s.core.FavoriteArticle(s.ctx, alice, article.Slug)
	s.Require().NoError(err)
	s.Equal(int64(1), favorited.FavoritesCount)

	favorited, err = s.core.FavoriteArticle(s.ctx, bob, article.Slug)
	s.Require().NoError(err)
	s.Equal(int64(2), favorited.FavoritesCount)

	unfavorited, err := s.core.UnfavoriteArticle(s.ctx, alice, article.Slug)
	s.Require().NoError(err)
	s.Equal(int64(1), unfavorited.FavoritesCount)

	// count always equals the number of users holding the article in
	// their favorite set
	var membership int64
	err = s.db.QueryRowContext(s.ctx,
		"SELECT COUNT(*) FROM favorite_articles WHERE article_id = $1", article.ID).Scan(&membership)
	s.Require().NoError(err)

	reloaded, err := s.core.GetArticleBySlug(s.ctx, article.Slug)
	s.Require().NoError(err)
	s.Equal(membership, reloaded.FavoritesCount)
}

func (s *CoreIntegrationSuite) TestSlugStableAcrossTitleEdits() {
	author := s.registerUser("alice")
	article := s.createArticle(author, "Original title")

	newTitle := "Completely different title"
	updated, err := s.core.UpdateArticle(s.ctx, author, article.Slug, &newTitle, nil, nil)
	s.Require().NoError(err)

	s.Equal("original-title", updated.Slug)
	s.Equal(newTitle, updated.Title)
	s.False(updated.UpdatedAt.Before(article.UpdatedAt))
}

func (s *CoreIntegrationSuite) TestUpdateArticleForbiddenForNonOwner() {
	author := s.registerUser("alice")
	intruder := s.registerUser("bob")
	article := s.createArticle(author, "Mine alone")

	newTitle := "Stolen"
	_, err := s.core.UpdateArticle(s.ctx, intruder, article.Slug, &newTitle, nil, nil)
	s.ErrorIs(err, ErrForbidden)

	s.ErrorIs(s.core.DeleteArticle(s.ctx, intruder, article.Slug), ErrForbidden)
}

func (s *CoreIntegrationSuite) TestDeleteArticleCascadesComments() {
	author := s.registerUser("alice")
	commenter := s.registerUser("bob")
	article := s.createArticle(author, "Soon to be gone")

	comment, err := s.core.CreateComment(s.ctx, commenter, article.Slug, "first!")
	s.Require().NoError(err)

	s.Require().NoError(s.core.DeleteArticle(s.ctx, author, article.Slug))

	_, err = s.core.GetArticleBySlug(s.ctx, article.Slug)
	s.ErrorIs(err, NoRecordFound)

	_, err = s.core.GetCommentByID(s.ctx, comment.ID)
	s.ErrorIs(err, NoRecordFound)
}

func (s *CoreIntegrationSuite) TestDeleteCommentPolicy() {
	author := s.registerUser("alice")
	commenter := s.registerUser("bob")
	stranger := s.registerUser("carol")
	article := s.createArticle(author, "Comment policy")

	comment, err := s.core.CreateComment(s.ctx, commenter, article.Slug, "my comment")
	s.Require().NoError(err)

	// a third party may not delete someone else's comment
	err = s.core.DeleteComment(s.ctx, stranger, article.Slug, comment.ID)
	s.ErrorIs(err, ErrForbidden)

	// the article owner may
	s.Require().NoError(s.core.DeleteComment(s.ctx, author, article.Slug, comment.ID))

	_, err = s.core.GetCommentByID(s.ctx, comment.ID)
	s.ErrorIs(err, NoRecordFound)
}

func (s *CoreIntegrationSuite) TestCommentsKeepInsertionOrder() {
	author := s.registerUser("alice")
	article := s.createArticle(author, "Ordered comments")

	for _, body := range []string{"one", "two", "three"} {
		_, err := s.core.CreateComment(s.ctx, author, article.Slug, body)
		s.Require().NoError(err)
	}

	loaded, err := s.core.GetArticleBySlug(s.ctx, article.Slug)
	s.Require().NoError(err)
	s.Require().Len(loaded.Comments, 3)
	s.Equal("one", loaded.Comments[0].Body)
	s.Equal("two", loaded.Comments[1].Body)
	s.Equal("three", loaded.Comments[2].Body)
}

func (s *CoreIntegrationSuite) TestFeedOnlyContainsFollowedAuthors() {
	alice := s.registerUser("alice")
	bob := s.registerUser("bob")
	carol := s.registerUser("carol")

	s.createArticle(bob, "From bob")
	s.createArticle(carol, "From carol")

	_, err := s.core.FollowUser(s.ctx, alice, "bob")
	s.Require().NoError(err)

	feed, err := s.core.GetFeed(s.ctx, alice, filter.NewFilter(20, 0))
	s.Require().NoError(err)
	s.Require().Len(feed, 1)
	s.Equal("from-bob", feed[0].Slug)
}

func (s *CoreIntegrationSuite) TestListArticlesFilters() {
	alice := s.registerUser("alice")
	bob := s.registerUser("bob")

	s.createArticle(alice, "Go tips", "go", "tips")
	s.createArticle(bob, "Cooking", "food")
	tagged := s.createArticle(bob, "More go", "go")

	_, err := s.core.FavoriteArticle(s.ctx, alice, tagged.Slug)
	s.Require().NoError(err)

	byTag, err := s.core.GetArticles(s.ctx, filter.NewFilter(20, 0), "go", "", "")
	s.Require().NoError(err)
	s.Len(byTag, 2)

	byAuthor, err := s.core.GetArticles(s.ctx, filter.NewFilter(20, 0), "", "bob", "")
	s.Require().NoError(err)
	s.Len(byAuthor, 2)

	byFavorited, err := s.core.GetArticles(s.ctx, filter.NewFilter(20, 0), "", "", "alice")
	s.Require().NoError(err)
	s.Require().Len(byFavorited, 1)
	s.Equal(tagged.Slug, byFavorited[0].Slug)
}

func (s *CoreIntegrationSuite) TestDuplicateSlugRejected() {
	alice := s.registerUser("alice")

	s.createArticle(alice, "Same title")
	_, err := s.core.CreateArticle(s.ctx, &models.Article{
		Title:       "Same title",
		Description: "d",
		Body:        "b",
		Slug:        MakeSlug("Same title"),
		AuthorID:    alice.ID,
	}, nil)
	s.ErrorIs(err, ErrDuplicatedSlug)
}

func (s *CoreIntegrationSuite) TestResolveSession() {
	alice := s.registerUser("alice")
	bob := s.registerUser("bob")

	_, err := s.core.FollowUser(s.ctx, alice, "bob")
	s.Require().NoError(err)
	article := s.createArticle(bob, "Favored")
	_, err = s.core.FavoriteArticle(s.ctx, alice, article.Slug)
	s.Require().NoError(err)

	// no authentication context resolves to no session, not an error
	session, err := s.core.ResolveSession(s.ctx, nil)
	s.Require().NoError(err)
	s.Nil(session)

	session, err = s.core.ResolveSession(s.ctx, &auth.Principal{UserID: alice.ID, Token: "tok"})
	s.Require().NoError(err)
	s.Require().NotNil(session)
	s.Equal("tok", session.Token)
	s.Equal([]int64{bob.ID}, session.User.FollowingIDs)
	s.Equal([]int64{article.ID}, session.User.FavoritedArticleIDs)

	// a deleted account resolves silently to no session
	_, err = s.db.ExecContext(s.ctx, "DELETE FROM users WHERE id = $1", alice.ID)
	s.Require().NoError(err)

	session, err = s.core.ResolveSession(s.ctx, &auth.Principal{UserID: alice.ID, Token: "tok"})
	s.Require().NoError(err)
	s.Nil(session)
}

func TestCoreIntegrationSuite(t *testing.T) {
	suite.Run(t, new(CoreIntegrationSuite))
}
