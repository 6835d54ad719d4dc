// Package id wraps the prefixed string IDs used by the Neos API.
//
// Each kind of ID is its own type, so a user ID can't be passed where a
// group ID is expected. Decoding from JSON checks the prefix
// (case-insensitively, the API returns both "U-" and "u-" forms).
package id

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	PrefixUser    = "U-"
	PrefixGroup   = "G-"
	PrefixSession = "S-"
	PrefixRecord  = "R-"
)

var ErrInvalidPrefix = errors.New("id has an invalid prefix")

// User is an ID of a Neos user (U-{name}).
type User string

// Group is an ID of a Neos group (G-{name}).
type Group string

// Session is an ID of a Neos session (S-{uuid}).
type Session string

// Record is an ID of a Neos record (R-{uuid}).
type Record string

func ParseUser(s string) (User, error) {
	v, err := parse(s, PrefixUser)
	return User(v), err
}

func ParseGroup(s string) (Group, error) {
	v, err := parse(s, PrefixGroup)
	return Group(v), err
}

func ParseSession(s string) (Session, error) {
	v, err := parse(s, PrefixSession)
	return Session(v), err
}

func ParseRecord(s string) (Record, error) {
	v, err := parse(s, PrefixRecord)
	return Record(v), err
}

func (u User) String() string    { return string(u) }
func (g Group) String() string   { return string(g) }
func (s Session) String() string { return string(s) }
func (r Record) String() string  { return string(r) }

func (u *User) UnmarshalJSON(data []byte) error {
	return unmarshal(data, PrefixUser, (*string)(u))
}

func (g *Group) UnmarshalJSON(data []byte) error {
	return unmarshal(data, PrefixGroup, (*string)(g))
}

func (s *Session) UnmarshalJSON(data []byte) error {
	return unmarshal(data, PrefixSession, (*string)(s))
}

func (r *Record) UnmarshalJSON(data []byte) error {
	return unmarshal(data, PrefixRecord, (*string)(r))
}

// Owner is the ID of something that can own records and friend lists:
// either a user or a group.
type Owner string

func (o Owner) IsUser() bool  { return hasPrefix(string(o), PrefixUser) }
func (o Owner) IsGroup() bool { return hasPrefix(string(o), PrefixGroup) }

func (o Owner) User() (User, bool) {
	if !o.IsUser() {
		return "", false
	}
	return User(o), true
}

func (o Owner) Group() (Group, bool) {
	if !o.IsGroup() {
		return "", false
	}
	return Group(o), true
}

func (o Owner) String() string { return string(o) }

func (o *Owner) UnmarshalJSON(data []byte) error {
	return unmarshal(data, "", (*string)(o), PrefixUser, PrefixGroup)
}

// Any is any of the prefixed IDs.
type Any string

// Prefix returns which of the known prefixes the ID starts with.
func (a Any) Prefix() string {
	for _, p := range []string{PrefixUser, PrefixGroup, PrefixSession, PrefixRecord} {
		if hasPrefix(string(a), p) {
			return p
		}
	}
	return ""
}

func (a Any) String() string { return string(a) }

func (a *Any) UnmarshalJSON(data []byte) error {
	return unmarshal(data, "", (*string)(a), PrefixUser, PrefixGroup, PrefixSession, PrefixRecord)
}

func parse(s string, prefix string) (string, error) {
	if !hasPrefix(s, prefix) {
		return "", fmt.Errorf("%w: %q must start with %q", ErrInvalidPrefix, s, prefix)
	}
	return s, nil
}

func unmarshal(data []byte, prefix string, dst *string, oneOf ...string) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if prefix != "" {
		oneOf = append(oneOf, prefix)
	}
	for _, p := range oneOf {
		if hasPrefix(s, p) {
			*dst = s
			return nil
		}
	}
	return fmt.Errorf("%w: %q must start with one of %q", ErrInvalidPrefix, s, oneOf)
}

func hasPrefix(s string, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
