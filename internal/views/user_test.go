package views

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siahsang/conduit/internal/auth"
)

func TestNewUserView(t *testing.T) {
	user := newUser(1, "alice")
	user.Password = []byte("$2a$12$secret-hash")
	session := &auth.Session{User: user, Token: "jwt-token"}

	view := NewUserView(session)

	assert.Equal(t, "alice", view.Username)
	assert.Equal(t, "alice@example.com", view.Email)
	assert.Equal(t, "jwt-token", view.Token)
	assert.Equal(t, user.Bio, view.Bio)
	assert.Equal(t, user.Image, view.Image)
}

func TestUserViewSerializationLeaksNoSecrets(t *testing.T) {
	user := newUser(1, "alice")
	user.Password = []byte("$2a$12$secret-hash")
	user.PlaintextPassword = "hunter22"

	data, err := json.Marshal(NewUserView(&auth.Session{User: user, Token: "jwt-token"}))
	require.NoError(t, err)

	assert.NotContains(t, string(data), "secret-hash")
	assert.NotContains(t, string(data), "hunter22")
}
