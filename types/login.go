package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// LoginIdentifierKind is the JSON key the login identifier is sent under.
type LoginIdentifierKind string

const (
	LoginByUsername LoginIdentifierKind = "username"
	LoginByUserId   LoginIdentifierKind = "ownerID"
	LoginByEmail    LoginIdentifierKind = "email"
)

// LoginIdentifier selects the account to log in to.
type LoginIdentifier struct {
	Kind  LoginIdentifierKind
	Value string
}

func Username(name string) LoginIdentifier {
	return LoginIdentifier{Kind: LoginByUsername, Value: name}
}

func UserIdIdentifier(userId string) LoginIdentifier {
	return LoginIdentifier{Kind: LoginByUserId, Value: userId}
}

func Email(email string) LoginIdentifier {
	return LoginIdentifier{Kind: LoginByEmail, Value: email}
}

// LoginCredentials is the body of POST userSessions.
//
// Without a SecretMachineId a successful login logs out every other
// session of the account.
type LoginCredentials struct {
	Identifier      LoginIdentifier
	Password        string
	Totp            string
	SecretMachineId string
	RememberMe      bool
}

func NewLoginCredentials(identifier LoginIdentifier, password string) LoginCredentials {
	return LoginCredentials{Identifier: identifier, Password: password}
}

// WithTotp sets the two factor code.
func (c LoginCredentials) WithTotp(totp string) LoginCredentials {
	c.Totp = totp
	return c
}

func (c LoginCredentials) WithMachineId(machineId string) LoginCredentials {
	c.SecretMachineId = machineId
	return c
}

// WithGeneratedMachineId sets a random secret machine id.
func (c LoginCredentials) WithGeneratedMachineId() LoginCredentials {
	c.SecretMachineId = uuid.NewString()
	return c
}

// WithRememberMe makes the session last longer.
func (c LoginCredentials) WithRememberMe(rememberMe bool) LoginCredentials {
	c.RememberMe = rememberMe
	return c
}

func (c LoginCredentials) Validate() error {
	switch c.Identifier.Kind {
	case LoginByUsername, LoginByUserId, LoginByEmail:
	default:
		return fmt.Errorf("unknown login identifier kind %q", c.Identifier.Kind)
	}
	if c.Identifier.Value == "" {
		return errors.New("login identifier is empty")
	}
	if c.Password == "" {
		return errors.New("password is empty")
	}
	return nil
}

type loginCredentialsJson struct {
	Username        string  `json:"username,omitempty"`
	OwnerId         string  `json:"ownerID,omitempty"`
	Email           string  `json:"email,omitempty"`
	Password        string  `json:"password"`
	Totp            *string `json:"totp"`
	SecretMachineId *string `json:"secretMachineId"`
	RememberMe      bool    `json:"rememberMe"`
}

// MarshalJSON flattens the identifier into its own key next to the
// password, the way the API expects it.
func (c LoginCredentials) MarshalJSON() ([]byte, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	out := loginCredentialsJson{
		Password:   c.Password,
		RememberMe: c.RememberMe,
	}
	switch c.Identifier.Kind {
	case LoginByUsername:
		out.Username = c.Identifier.Value
	case LoginByUserId:
		out.OwnerId = c.Identifier.Value
	case LoginByEmail:
		out.Email = c.Identifier.Value
	}
	if c.Totp != "" {
		out.Totp = &c.Totp
	}
	if c.SecretMachineId != "" {
		out.SecretMachineId = &c.SecretMachineId
	}
	return json.Marshal(out)
}

func (c *LoginCredentials) UnmarshalJSON(data []byte) error {
	var in loginCredentialsJson
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*c = LoginCredentials{Password: in.Password, RememberMe: in.RememberMe}
	switch {
	case in.Username != "":
		c.Identifier = Username(in.Username)
	case in.OwnerId != "":
		c.Identifier = UserIdIdentifier(in.OwnerId)
	case in.Email != "":
		c.Identifier = Email(in.Email)
	default:
		return errors.New("login credentials have no username, ownerID or email")
	}
	if in.Totp != nil {
		c.Totp = *in.Totp
	}
	if in.SecretMachineId != nil {
		c.SecretMachineId = *in.SecretMachineId
	}
	return nil
}

func (c LoginCredentials) String() string {
	machineId := "None"
	if c.SecretMachineId != "" {
		machineId = "Some(" + redacted + ")"
	}
	return fmt.Sprintf(
		"LoginCredentials{%s: %s, Password: %s, Totp: %q, SecretMachineId: %s, RememberMe: %t}",
		c.Identifier.Kind, c.Identifier.Value, redacted, c.Totp, machineId, c.RememberMe,
	)
}

func (c LoginCredentials) GoString() string {
	return c.String()
}

func (c LoginCredentials) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String(string(c.Identifier.Kind), c.Identifier.Value),
		slog.String("password", redacted),
	)
}
