package types

import (
	"time"

	"github.com/neos-go/neos-go/id"
)

// User is the response of GET users/{userId}.
type User struct {
	Id                       id.User            `json:"id"`
	Username                 string             `json:"username"`
	NormalizedUsername       string             `json:"normalizedUsername"`
	AlternateNormalizedNames []string           `json:"alternateNormalizedNames,omitempty"`
	Email                    string             `json:"email,omitempty"`
	RegistrationDate         time.Time          `json:"registrationDate"`
	IsVerified               bool               `json:"isVerified"`
	AccountBanExpiration     OptionalTime       `json:"accountBanExpiration"`
	PublicBanExpiration      OptionalTime       `json:"publicBanExpiration"`
	PublicBanType            PublicBanType      `json:"publicBanType,omitempty"`
	SpectatorBanExpiration   OptionalTime       `json:"spectatorBanExpiration"`
	MuteBanExpiration        OptionalTime       `json:"muteBanExpiration"`
	ListingBanExpiration     OptionalTime       `json:"listingBanExpiration"`
	QuotaBytes               OptionalBytes      `json:"quotaBytes"`
	UsedBytes                OptionalBytes      `json:"usedBytes"`
	IsLocked                 bool               `json:"isLocked"`
	SupressBanEvasion        bool               `json:"supressBanEvasion"`
	TwoFactorLogin           bool               `json:"2fa_login"`
	Tags                     []string           `json:"tags"`
	Profile                  *UserProfile       `json:"profile,omitempty"`
	ReferralId               string             `json:"referralId,omitempty"`
	PatreonData              *UserPatreonData   `json:"patreonData,omitempty"`
	Credits                  map[string]float64 `json:"credits,omitempty"`
	NcrDepositAddress        string             `json:"NCRdepositAddress,omitempty"`
}

type UserProfile struct {
	IconUrl     *AssetUrl `json:"iconUrl,omitempty"`
	TokenOptOut []string  `json:"tokenOptOut,omitempty"`
}

type UserPatreonData struct {
	IsPatreonSupporter     bool   `json:"isPatreonSupporter"`
	PatreonId              string `json:"patreonId,omitempty"`
	LastPatreonPledgeCents int    `json:"lastPatreonPledgeCents"`
	LastTotalCents         int    `json:"lastTotalCents"`
	RewardType             string `json:"rewardType,omitempty"`
	CustomTier             string `json:"customTier,omitempty"`
}

// UserStatus is the response of GET users/{userId}/status, also
// embedded in Friend.
type UserStatus struct {
	OnlineStatus              OnlineStatus       `json:"onlineStatus"`
	LastStatusChange          OptionalTime       `json:"lastStatusChange"`
	CurrentSessionAccessLevel SessionAccessLevel `json:"currentSessionAccessLevel"`
	CurrentSessionHidden      bool               `json:"currentSessionHidden"`
	CurrentHosting            bool               `json:"currentHosting"`
	OutputDevice              OutputDevice       `json:"outputDevice"`
	// Only present while the user is online.
	CompatibilityHash string         `json:"compatibilityHash,omitempty"`
	NeosVersion       string         `json:"neosVersion,omitempty"`
	PublicRsaKey      *RsaParameters `json:"publicRSAKey,omitempty"`
	IsMobile          bool           `json:"isMobile"`
	ActiveSessions    []SessionInfo  `json:"activeSessions,omitempty"`
}

type RsaParameters struct {
	Exponent string `json:"Exponent"`
	Modulus  string `json:"Modulus"`
}
