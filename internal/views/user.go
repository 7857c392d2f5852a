package views

import "github.com/siahsang/conduit/internal/auth"

// UserView is what an authenticated user sees of its own account. The token
// comes from the session that produced it; the password hash never leaves
// the auth boundary.
type UserView struct {
	Email    string  `json:"email"`
	Token    string  `json:"token"`
	Username string  `json:"username"`
	Bio      *string `json:"bio"`
	Image    *string `json:"image"`
}

func NewUserView(session *auth.Session) UserView {
	return UserView{
		Email:    session.User.Email,
		Token:    session.Token,
		Username: session.User.Username,
		Bio:      session.User.Bio,
		Image:    session.User.Image,
	}
}
