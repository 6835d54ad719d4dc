package neos_go

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/neos-go/neos-go/id"
	"github.com/neos-go/neos-go/types"
)

const redacted = "*****"

// Credentials authenticate requests as a user. The token never shows up
// when Credentials are printed or logged.
type Credentials struct {
	userId id.User
	token  string
}

func NewCredentials(userId id.User, token string) Credentials {
	return Credentials{userId: userId, token: token}
}

func credentialsOf(session types.UserSession) Credentials {
	return NewCredentials(session.UserId, session.Token)
}

func (c Credentials) UserId() id.User {
	return c.userId
}

// AuthHeader is the value of the Authorization header.
func (c Credentials) AuthHeader() string {
	return "neos " + c.userId.String() + ":" + c.token
}

func (c Credentials) IsZero() bool {
	return c.userId == "" && c.token == ""
}

func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{UserId: %s, Token: %s}", c.userId, redacted)
}

func (c Credentials) GoString() string {
	return c.String()
}

// Format keeps %v, %+v and %#v from printing the unexported token.
func (c Credentials) Format(f fmt.State, _ rune) {
	_, _ = io.WriteString(f, c.String())
}

func (c Credentials) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("user_id", c.userId.String()),
		slog.String("token", redacted),
	)
}
