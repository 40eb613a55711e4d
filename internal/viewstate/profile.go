package viewstate

import (
	"context"

	"github.com/phrazzld/taskflow-api/internal/domain"
)

// ProfileAPI is the part of the client the profile view needs.
type ProfileAPI interface {
	UpdateProfile(ctx context.Context, name, email string) (*domain.User, error)
}

// Profile edits the signed-in user's name and email.
type Profile struct {
	api     ProfileAPI
	session *Session
}

// NewProfile returns a profile view bound to session.
func NewProfile(api ProfileAPI, session *Session) *Profile {
	return &Profile{api: api, session: session}
}

// Save sends the new name and email and, on success, replaces the session
// user with the server's copy. The session is untouched on failure.
func (p *Profile) Save(ctx context.Context, name, email string) (*domain.User, error) {
	if !p.session.Authenticated() {
		return nil, ErrNotSignedIn
	}
	user, err := p.api.UpdateProfile(ctx, name, email)
	if err != nil {
		return nil, err
	}
	p.session.User = *user
	return user, nil
}
