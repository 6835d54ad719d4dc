package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"

	"github.com/neos-go/neos-go/types"
)

// DefaultSessionFile is where "neosctl login" stores the user session:
// $NEOS_SESSION_FILE, else $XDG_CONFIG_HOME/neosctl/session.json, else
// ~/.config/neosctl/session.json.
func DefaultSessionFile() string {
	if path := os.Getenv("NEOS_SESSION_FILE"); path != "" {
		return path
	}
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), "neosctl-session.json")
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "neosctl", "session.json")
}

// LoadSession reads a saved user session. The file may contain comments.
func LoadSession(path string) (*types.UserSession, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no Neos session found at %s, run \"neosctl login\" first", path)
		}
		return nil, fmt.Errorf("reading session file %s: %w", path, err)
	}

	var session types.UserSession
	if err := json.Unmarshal(jsonc.ToJSON(data), &session); err != nil {
		return nil, fmt.Errorf("parsing session file %s: %w", path, err)
	}
	if session.UserId == "" {
		return nil, fmt.Errorf("session file %s has no userId", path)
	}
	if session.Token == "" {
		return nil, fmt.Errorf("session file %s has no token", path)
	}
	return &session, nil
}

// SaveSession writes session to path, readable by the owner only.
func SaveSession(path string, session types.UserSession) error {
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating session directory %s: %w", dir, err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing session file %s: %w", path, err)
	}
	return nil
}

// RemoveSession deletes the session file. A missing file is not an error.
func RemoveSession(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing session file %s: %w", path, err)
	}
	return nil
}
