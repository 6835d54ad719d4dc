package types

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/neos-go/neos-go/id"
)

const redacted = "*****"

// UserSession is a login session, the response of POST userSessions.
// Not to be confused with SessionInfo.
//
// Token is secret. String, GoString and LogValue never print it; the
// JSON form does, so it can be saved and restored.
type UserSession struct {
	UserId          id.User   `json:"userId"`
	Token           string    `json:"token"`
	CreationTime    time.Time `json:"created"`
	Expiration      time.Time `json:"expire"`
	RememberMe      bool      `json:"rememberMe"`
	SourceIp        string    `json:"sourceIP"`
	PartitionKey    string    `json:"partitionKey"`
	RowKey          string    `json:"rowKey"`
	Timestamp       time.Time `json:"timestamp"`
	ETag            string    `json:"eTag"`
	SecretMachineId string    `json:"secretMachineId,omitempty"`
}

// AuthHeader is the Authorization header value for this session.
func (s UserSession) AuthHeader() string {
	return "neos " + s.UserId.String() + ":" + s.Token
}

// IsExpired reports if the session expired at the given time.
func (s UserSession) IsExpired(at time.Time) bool {
	return !s.Expiration.IsZero() && !at.Before(s.Expiration)
}

func (s UserSession) String() string {
	return fmt.Sprintf(
		"UserSession{UserId: %s, Token: %s, Created: %s, Expire: %s, RememberMe: %t}",
		s.UserId, redacted, s.CreationTime.Format(time.RFC3339), s.Expiration.Format(time.RFC3339), s.RememberMe,
	)
}

func (s UserSession) GoString() string {
	return s.String()
}

func (s UserSession) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("user_id", s.UserId.String()),
		slog.String("token", redacted),
		slog.Time("expire", s.Expiration),
	)
}
