package id

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	u, err := ParseUser("U-Neos")
	require.NoError(t, err)
	assert.Equal(t, User("U-Neos"), u)

	_, err = ParseUser("G-Neos")
	assert.ErrorIs(t, err, ErrInvalidPrefix)

	_, err = ParseGroup("g-lowercase-is-fine")
	assert.NoError(t, err)

	_, err = ParseSession("S-")
	assert.NoError(t, err)

	_, err = ParseRecord("R")
	assert.ErrorIs(t, err, ErrInvalidPrefix)
}

func TestUnmarshal(t *testing.T) {
	var payload struct {
		User    User    `json:"user"`
		Group   Group   `json:"group"`
		Session Session `json:"session"`
		Record  Record  `json:"record"`
	}
	err := json.Unmarshal([]byte(`{
		"user": "U-ljoonal",
		"group": "G-Neos",
		"session": "S-2fbd3c5a",
		"record": "r-lower"
	}`), &payload)
	require.NoError(t, err)
	assert.Equal(t, User("U-ljoonal"), payload.User)
	assert.Equal(t, Group("G-Neos"), payload.Group)
	assert.Equal(t, Session("S-2fbd3c5a"), payload.Session)
	assert.Equal(t, Record("r-lower"), payload.Record)

	var u User
	assert.ErrorIs(t, json.Unmarshal([]byte(`"G-wrong"`), &u), ErrInvalidPrefix)
	assert.Error(t, json.Unmarshal([]byte(`42`), &u))

	out, err := json.Marshal(User("U-ljoonal"))
	require.NoError(t, err)
	assert.Equal(t, `"U-ljoonal"`, string(out))
}

func TestOwner(t *testing.T) {
	var o Owner
	require.NoError(t, json.Unmarshal([]byte(`"U-ljoonal"`), &o))
	assert.True(t, o.IsUser())
	u, ok := o.User()
	assert.True(t, ok)
	assert.Equal(t, User("U-ljoonal"), u)
	_, ok = o.Group()
	assert.False(t, ok)

	require.NoError(t, json.Unmarshal([]byte(`"G-Neos"`), &o))
	assert.True(t, o.IsGroup())

	assert.ErrorIs(t, json.Unmarshal([]byte(`"S-session"`), &o), ErrInvalidPrefix)
}

func TestAny(t *testing.T) {
	var a Any
	require.NoError(t, json.Unmarshal([]byte(`"S-session"`), &a))
	assert.Equal(t, PrefixSession, a.Prefix())

	assert.ErrorIs(t, json.Unmarshal([]byte(`"X-nope"`), &a), ErrInvalidPrefix)
	assert.Equal(t, "", Any("X-nope").Prefix())
}
