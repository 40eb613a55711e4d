package viewstate

import (
	"github.com/phrazzld/taskflow-api/internal/client"
	"github.com/phrazzld/taskflow-api/internal/domain"
)

// Session is the signed-in user and their token. Views receive it
// explicitly; there is no package-level current user.
type Session struct {
	User  domain.User
	Token string
}

// NewSession builds a session from a register or login result.
func NewSession(res *client.AuthResult) *Session {
	return &Session{User: res.User, Token: res.Token}
}

// Authenticated reports whether the session holds a token.
func (s *Session) Authenticated() bool {
	return s != nil && s.Token != ""
}

// Client returns a copy of base that authenticates as this session.
func (s *Session) Client(base *client.Client) *client.Client {
	return base.WithToken(s.Token)
}

// Clear signs the session out.
func (s *Session) Clear() {
	s.User = domain.User{}
	s.Token = ""
}
