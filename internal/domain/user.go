package domain

import (
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// User field limits.
const (
	MaxUserNameLength = 50
	MinPasswordLength = 6
	// MaxPasswordLength is bcrypt's input limit in bytes.
	MaxPasswordLength = 72
)

var emailValidator = validator.New()

// User represents a registered user of the task manager.
type User struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Password       string    `json:"-"` // Plaintext password, used temporarily during registration
	HashedPassword string    `json:"-"` // Never expose password hash in JSON
	Avatar         string    `json:"avatar"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// NewUser creates a new User with a fresh ID, normalized name and email, the
// default avatar and creation timestamps. The plaintext password is kept on
// the struct and must be hashed by the caller before the user is stored.
func NewUser(name, email, password string) (*User, error) {
	now := Stamp(time.Now())
	name = strings.TrimSpace(name)
	user := &User{
		ID:        uuid.New(),
		Name:      name,
		Email:     NormalizeEmail(email),
		Password:  password,
		Avatar:    DefaultAvatar(name),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}

	verr := &ValidationError{}
	validateProfileFields(verr, u.Name, u.Email)

	if u.Password != "" {
		switch {
		case len(u.Password) < MinPasswordLength:
			verr.Add("password", "Password must be at least 6 characters")
		case len(u.Password) > MaxPasswordLength:
			verr.Add("password", "Password cannot exceed 72 characters")
		}
	} else if u.HashedPassword == "" {
		verr.Add("password", "Password is required")
	}

	return verr.OrNil()
}

// ValidateProfile checks a name/email pair submitted for a profile update.
// Both values are expected to be normalized already.
func ValidateProfile(name, email string) error {
	verr := &ValidationError{}
	validateProfileFields(verr, name, email)
	return verr.OrNil()
}

func validateProfileFields(verr *ValidationError, name, email string) {
	switch n := utf8.RuneCountInString(name); {
	case n == 0:
		verr.Add("name", "Name is required")
	case n > MaxUserNameLength:
		verr.Add("name", "Name cannot exceed 50 characters")
	}

	if email == "" {
		verr.Add("email", "Email is required")
	} else if emailValidator.Var(email, "email") != nil {
		verr.Add("email", "Please provide a valid email")
	}
}

// NormalizeEmail trims and lower-cases an address; uniqueness is checked on
// the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// DefaultAvatar returns the generated avatar URL assigned at registration.
func DefaultAvatar(name string) string {
	return "https://ui-avatars.com/api/?name=" + url.QueryEscape(name) + "&background=random"
}
