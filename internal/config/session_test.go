package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neos-go/neos-go/id"
	"github.com/neos-go/neos-go/types"
)

func TestSaveSession_LoadSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	session := types.UserSession{
		UserId:     "U-Neo",
		Token:      "s3cr3t",
		Expiration: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
		RememberMe: true,
	}

	require.NoError(t, SaveSession(path, session))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := LoadSession(path)
	require.NoError(t, err)
	assert.Equal(t, id.User("U-Neo"), loaded.UserId)
	assert.Equal(t, "s3cr3t", loaded.Token)
	assert.True(t, loaded.Expiration.Equal(session.Expiration))

	require.NoError(t, RemoveSession(path))
	require.NoError(t, RemoveSession(path))
	_, err = LoadSession(path)
	assert.ErrorContains(t, err, "neosctl login")
}

func TestLoadSession_comments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
	// bot account
	"userId": "U-Bot",
	"token": "abc", /* rotated monthly */
	"rememberMe": false,
}`), 0600))

	loaded, err := LoadSession(path)
	require.NoError(t, err)
	assert.Equal(t, id.User("U-Bot"), loaded.UserId)
	assert.Equal(t, "abc", loaded.Token)
}

func TestLoadSession_invalid(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{name: "not json", content: `userId=U-Neo`},
		{name: "bad user id", content: `{"userId":"G-Neo","token":"abc"}`},
		{name: "no user id", content: `{"token":"abc"}`},
		{name: "no token", content: `{"userId":"U-Neo"}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), "session.json")
			require.NoError(t, os.WriteFile(path, []byte(tc.content), 0600))
			_, err := LoadSession(path)
			assert.Error(t, err)
		})
	}
}

func TestDefaultSessionFile(t *testing.T) {
	t.Setenv("NEOS_SESSION_FILE", "/custom/session.json")
	assert.Equal(t, "/custom/session.json", DefaultSessionFile())

	t.Setenv("NEOS_SESSION_FILE", "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	assert.Equal(t, "/xdg/neosctl/session.json", DefaultSessionFile())
}
