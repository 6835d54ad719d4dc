package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// OutputDevice is the kind of display a user is using.
//
// The API is inconsistent and sends it either as a number or as a name.
type OutputDevice uint8

const (
	OutputDeviceUnknown OutputDevice = iota
	OutputDeviceHeadless
	OutputDeviceScreen
	OutputDeviceVR
	OutputDeviceCamera
)

var outputDeviceNames = []string{"Unknown", "Headless", "Screen", "VR", "Camera"}

func (o OutputDevice) String() string {
	return enumName(outputDeviceNames, uint8(o))
}

func (o OutputDevice) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}

func (o *OutputDevice) UnmarshalJSON(data []byte) error {
	v, err := unmarshalNumberOrName(data, outputDeviceNames, "OutputDevice")
	*o = OutputDevice(v)
	return err
}

// SessionAccessLevel is who may join a session.
//
// Like OutputDevice, the API sends it either as a number or as a name.
type SessionAccessLevel uint8

const (
	SessionAccessLevelPrivate SessionAccessLevel = iota
	SessionAccessLevelLan
	SessionAccessLevelFriends
	SessionAccessLevelFriendsOfFriends
	SessionAccessLevelRegisteredUsers
	SessionAccessLevelAnyone
)

var sessionAccessLevelNames = []string{
	"Private", "LAN", "Friends", "FriendsOfFriends", "RegisteredUsers", "Anyone",
}

func (s SessionAccessLevel) String() string {
	return enumName(sessionAccessLevelNames, uint8(s))
}

func (s SessionAccessLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *SessionAccessLevel) UnmarshalJSON(data []byte) error {
	v, err := unmarshalNumberOrName(data, sessionAccessLevelNames, "SessionAccessLevel")
	*s = SessionAccessLevel(v)
	return err
}

type OnlineStatus string

const (
	OnlineStatusOnline    OnlineStatus = "Online"
	OnlineStatusInvisible OnlineStatus = "Invisible"
	OnlineStatusAway      OnlineStatus = "Away"
	OnlineStatusBusy      OnlineStatus = "Busy"
	OnlineStatusOffline   OnlineStatus = "Offline"
)

// Color is the (R, G, B) color the game's UI uses for the status.
func (s OnlineStatus) Color() (uint8, uint8, uint8) {
	switch s {
	case OnlineStatusOnline:
		return 0, 255, 0
	case OnlineStatusAway:
		return 255, 200, 0
	case OnlineStatusBusy:
		return 255, 0, 0
	default:
		return 127, 127, 127
	}
}

type FriendStatus string

const (
	FriendStatusNone         FriendStatus = "None"
	FriendStatusSearchResult FriendStatus = "SearchResult"
	FriendStatusRequested    FriendStatus = "Requested"
	FriendStatusIgnored      FriendStatus = "Ignored"
	FriendStatusBlocked      FriendStatus = "Blocked"
	FriendStatusAccepted     FriendStatus = "Accepted"
)

type PublicBanType string

const (
	PublicBanTypeStandard PublicBanType = "Standard"
	PublicBanTypeSoft     PublicBanType = "Soft"
	PublicBanTypeHard     PublicBanType = "Hard"
)

type TransactionType string

const (
	TransactionTypeUser2User  TransactionType = "User2User"
	TransactionTypeWithdrawal TransactionType = "Withdrawal"
	TransactionTypeDeposit    TransactionType = "Deposit"
	TransactionTypeTip        TransactionType = "Tip"
	TransactionTypePurchase   TransactionType = "Purchase"
)

type MessageType string

const (
	MessageTypeText           MessageType = "Text"
	MessageTypeObject         MessageType = "Object"
	MessageTypeSound          MessageType = "Sound"
	MessageTypeSessionInvite  MessageType = "SessionInvite"
	MessageTypeCreditTransfer MessageType = "CreditTransfer"
	MessageTypeSugarCubes     MessageType = "SugarCubes"
)

func enumName(names []string, v uint8) string {
	if int(v) < len(names) {
		return names[v]
	}
	return strconv.Itoa(int(v))
}

func unmarshalNumberOrName(data []byte, names []string, typeName string) (uint8, error) {
	var n int64
	if err := json.Unmarshal(data, &n); err == nil {
		if n < 0 || n >= int64(len(names)) {
			return 0, fmt.Errorf("invalid %s value %d", typeName, n)
		}
		return uint8(n), nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return 0, fmt.Errorf("%s must be a string or a number: %w", typeName, err)
	}
	for i, name := range names {
		if strings.EqualFold(name, s) {
			return uint8(i), nil
		}
	}
	return 0, fmt.Errorf("invalid %s value %q", typeName, s)
}
