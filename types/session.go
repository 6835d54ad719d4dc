package types

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/neos-go/neos-go/id"
)

// SessionInfo describes a Neos session: a running instance of a world.
// Not to be confused with UserSession, which is a login.
type SessionInfo struct {
	Name              string             `json:"name"`
	World             *RecordId          `json:"correspondingWorldId,omitempty"`
	Tags              []string           `json:"tags"`
	Id                id.Session         `json:"sessionId"`
	NormalizedId      string             `json:"normalizedSessionId"`
	HostId            *id.User           `json:"hostUserId,omitempty"`
	HostMachineId     string             `json:"hostMachineId"`
	HostUsername      string             `json:"hostUsername"`
	CompatibilityHash string             `json:"compatibilityHash"`
	NeosVersion       string             `json:"neosVersion"`
	IsHeadlessHost    bool               `json:"headlessHost"`
	Urls              []string           `json:"sessionURLs"`
	Users             SessionUsers       `json:"sessionUsers"`
	Thumbnail         *AssetUrl          `json:"thumbnail,omitempty"`
	JoinedUsers       uint8              `json:"joinedUsers"`
	ActiveUsers       uint8              `json:"activeUsers"`
	TotalJoinedUsers  uint8              `json:"totalJoinedUsers"`
	TotalActiveUsers  uint8              `json:"totalActiveUsers"`
	MaxUsers          uint8              `json:"maxUsers"`
	IsMobileFriendly  bool               `json:"mobileFriendly"`
	SessionBeginTime  time.Time          `json:"sessionBeginTime"`
	LastUpdateTime    time.Time          `json:"lastUpdate"`
	AccessLevel       SessionAccessLevel `json:"accessLevel"`
	HasEnded          bool               `json:"hasEnded"`
	IsValid           bool               `json:"isValid"`
}

// StrippedName is the session name with <tag> style markup removed.
// It is a plain bracket scan, not an XML parser.
func (s SessionInfo) StrippedName() string {
	var b strings.Builder
	depth := 0
	for _, r := range s.Name {
		switch {
		case r == '<':
			depth++
		case r == '>' && depth > 0:
			depth--
		case depth == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

type RecordId struct {
	Id      id.Record `json:"recordId"`
	OwnerId id.Owner  `json:"ownerId"`
}

type SessionUser struct {
	Username string `json:"username"`
	// Almost always present, but rarely missing.
	Id           *id.User     `json:"userID,omitempty"`
	IsPresent    bool         `json:"isPresent"`
	OutputDevice OutputDevice `json:"outputDevice"`
}

// SessionUsers decodes a list of session users, skipping entries that
// fail to decode instead of failing the whole session.
type SessionUsers []SessionUser

func (s *SessionUsers) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	users := make(SessionUsers, 0, len(raw))
	for _, item := range raw {
		var u SessionUser
		if err := json.Unmarshal(item, &u); err != nil {
			continue
		}
		users = append(users, u)
	}
	*s = users
	return nil
}
