package viewstate

import (
	"errors"
	"net/http"

	"github.com/phrazzld/taskflow-api/internal/client"
)

// Outcome is how a view should surface an error.
type Outcome int

const (
	// OutcomeNone means there was no error.
	OutcomeNone Outcome = iota
	// OutcomeInline shows the message next to the form, with per-field
	// messages where the server sent them.
	OutcomeInline
	// OutcomeSignIn discards the session and asks the user to sign in again.
	OutcomeSignIn
	// OutcomeNotice shows a generic failure notice.
	OutcomeNotice
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNone:
		return "none"
	case OutcomeInline:
		return "inline"
	case OutcomeSignIn:
		return "sign-in"
	case OutcomeNotice:
		return "notice"
	}
	return "unknown"
}

// GenericNotice is shown for failures that are not the user's to fix.
const GenericNotice = "Something went wrong. Please try again."

// Feedback is a classified error ready to display.
type Feedback struct {
	Outcome Outcome
	Message string
	Fields  map[string]string
}

// Classify maps an error from the client or a view to a UI outcome.
// Validation, conflict and not-found responses are shown inline with the
// server's message; 401s and missing sessions send the user to sign in;
// everything else becomes a generic notice.
func Classify(err error) Feedback {
	if err == nil {
		return Feedback{Outcome: OutcomeNone}
	}
	if errors.Is(err, ErrNotSignedIn) || client.IsUnauthorized(err) {
		return Feedback{Outcome: OutcomeSignIn, Message: "Please sign in again."}
	}

	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Status {
		case http.StatusBadRequest, http.StatusConflict, http.StatusNotFound, http.StatusTooManyRequests:
			return Feedback{Outcome: OutcomeInline, Message: apiErr.Message, Fields: apiErr.Fields}
		}
	}
	return Feedback{Outcome: OutcomeNotice, Message: GenericNotice}
}
