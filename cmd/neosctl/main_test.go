package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neos-go/neos-go/id"
	"github.com/neos-go/neos-go/types"
)

// fakeNeos is a minimal Neos API serving canned responses.
type fakeNeos struct {
	mu       sync.Mutex
	requests []string
	auth     []string
	bodies   [][]byte

	pingFailures int
	statsStatus  int
}

func newFakeNeos(t *testing.T) (*fakeNeos, string) {
	f := &fakeNeos{statsStatus: http.StatusOK}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/testing/ping", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		fail := f.pingFailures > 0
		f.pingFailures--
		f.mu.Unlock()
		if fail {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	})
	mux.HandleFunc("GET /api/stats/onlineUsers", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(f.StatsStatus())
		_, _ = io.WriteString(w, `"42"`)
	})
	mux.HandleFunc("GET /api/stats/onlineInstances", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(f.StatsStatus())
		_, _ = io.WriteString(w, `7`)
	})
	mux.HandleFunc("GET /api/sessions", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[
			{"name":"<color=red>Party</color>","sessionId":"S-party","hostUsername":"alice","activeUsers":3,"maxUsers":16,"accessLevel":"Anyone","headlessHost":true},
			{"name":"Quiet Room","sessionId":"S-quiet","hostUsername":"bob","activeUsers":1,"maxUsers":4,"accessLevel":"Friends"},
			{"name":"Old","sessionId":"S-old","activeUsers":9,"accessLevel":"Anyone","hasEnded":true}
		]`)
	})
	mux.HandleFunc("GET /api/users/{user}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"id":"U-alice","username":"alice"}`)
	})
	mux.HandleFunc("POST /api/userSessions", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"userId":"U-alice","token":"tok","created":"2026-10-19T10:00:00Z","expire":"2026-10-20T10:00:00Z"}`)
	})
	mux.HandleFunc("DELETE /api/userSessions/{userId}", func(w http.ResponseWriter, r *http.Request) {})
	mux.HandleFunc("PATCH /api/userSessions", func(w http.ResponseWriter, r *http.Request) {})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.requests = append(f.requests, r.Method+" "+r.URL.RequestURI())
		f.auth = append(f.auth, r.Header.Get("Authorization"))
		f.bodies = append(f.bodies, body)
		f.mu.Unlock()
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	return f, srv.URL + "/api/"
}

func (f *fakeNeos) SetStatsStatus(status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statsStatus = status
}

func (f *fakeNeos) FailPings(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pingFailures = n
}

func (f *fakeNeos) StatsStatus() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statsStatus
}

func (f *fakeNeos) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

func (f *fakeNeos) Auth(i int) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.auth[i]
}

func (f *fakeNeos) Body(i int) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies[i]
}

type cliResult struct {
	code   int
	stdout string
	stderr string
}

func runCli(t *testing.T, baseUrl string, sessionFile string, args ...string) cliResult {
	t.Helper()
	var stdout, stderr bytes.Buffer
	global := []string{"--dotenv=false", "--base-url", baseUrl, "--session-file", sessionFile, "--log-level", "error"}
	code := run(context.Background(), append(global, args...), &stdout, &stderr)
	return cliResult{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func TestRun_usage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 2, run(context.Background(), nil, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "Usage: neosctl")

	stdout.Reset()
	assert.Equal(t, 0, run(context.Background(), []string{"help"}, &stdout, &stderr))
	for _, c := range commands {
		assert.Contains(t, stdout.String(), c.name)
	}

	assert.Equal(t, 2, run(context.Background(), []string{"frobnicate"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), `unknown command "frobnicate"`)

	stderr.Reset()
	assert.Equal(t, 2, run(context.Background(), []string{"--no-such-flag"}, &stdout, &stderr))
}

func TestRun_ping(t *testing.T) {
	f, baseUrl := newFakeNeos(t)
	res := runCli(t, baseUrl, filepath.Join(t.TempDir(), "session.json"), "ping")

	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "pong\n", res.stdout)
	assert.Equal(t, []string{"GET /api/testing/ping"}, f.Requests())
	assert.Empty(t, f.Auth(0))
}

func TestRun_pingRetriesTransientFailures(t *testing.T) {
	f, baseUrl := newFakeNeos(t)
	f.FailPings(1)
	res := runCli(t, baseUrl, filepath.Join(t.TempDir(), "session.json"), "ping")

	require.Equal(t, 0, res.code, res.stderr)
	assert.Len(t, f.Requests(), 2)
}

func TestRun_stats(t *testing.T) {
	_, baseUrl := newFakeNeos(t)
	res := runCli(t, baseUrl, filepath.Join(t.TempDir(), "session.json"), "stats")
	require.Equal(t, 0, res.code, res.stderr)

	var out statsOutput
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &out))
	assert.Equal(t, statsOutput{OnlineUsers: 42, OnlineInstances: 7}, out)
}

func TestRun_statsFailure(t *testing.T) {
	f, baseUrl := newFakeNeos(t)
	f.SetStatsStatus(http.StatusBadRequest)
	res := runCli(t, baseUrl, filepath.Join(t.TempDir(), "session.json"), "stats")

	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "status code 400")
}

func TestRun_sessions(t *testing.T) {
	_, baseUrl := newFakeNeos(t)
	session := filepath.Join(t.TempDir(), "session.json")

	testCases := []struct {
		name   string
		args   []string
		expect []id.Session
	}{
		{name: "all", args: []string{"sessions"}, expect: []id.Session{"S-party", "S-quiet", "S-old"}},
		{name: "filter on stripped name", args: []string{"sessions", "--name", "PARTY"}, expect: []id.Session{"S-party"}},
		{name: "markup is not matched", args: []string{"sessions", "-n", "color"}, expect: []id.Session{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res := runCli(t, baseUrl, session, tc.args...)
			require.Equal(t, 0, res.code, res.stderr)

			var lines []sessionLine
			require.NoError(t, json.Unmarshal([]byte(res.stdout), &lines))
			ids := make([]id.Session, 0, len(lines))
			for _, l := range lines {
				ids = append(ids, l.Id)
			}
			assert.Equal(t, tc.expect, ids)
		})
	}

	res := runCli(t, baseUrl, session, "sessions", "--name", "party")
	assert.Contains(t, res.stdout, `"name": "Party"`)
}

func TestRun_user(t *testing.T) {
	testCases := []struct {
		arg    string
		expect string
	}{
		{arg: "U-alice", expect: "GET /api/users/U-alice?byUsername=false"},
		{arg: "u-alice", expect: "GET /api/users/u-alice?byUsername=false"},
		{arg: "alice", expect: "GET /api/users/alice?byUsername=true"},
	}

	for _, tc := range testCases {
		t.Run(tc.arg, func(t *testing.T) {
			f, baseUrl := newFakeNeos(t)
			res := runCli(t, baseUrl, filepath.Join(t.TempDir(), "session.json"), "user", tc.arg)

			require.Equal(t, 0, res.code, res.stderr)
			assert.Equal(t, []string{tc.expect}, f.Requests())

			var user types.User
			require.NoError(t, json.Unmarshal([]byte(res.stdout), &user))
			assert.Equal(t, id.User("U-alice"), user.Id)
		})
	}
}

func TestRun_badArguments(t *testing.T) {
	_, baseUrl := newFakeNeos(t)
	session := filepath.Join(t.TempDir(), "session.json")

	for _, args := range [][]string{
		{"user"},
		{"ping", "extra"},
		{"session", "U-not-a-session"},
		{"group", "S-not-a-group"},
		{"friends", "--since", "yesterday"},
	} {
		res := runCli(t, baseUrl, session, args...)
		assert.Equal(t, 2, res.code, "%v", args)
	}
}

func TestRun_requiresSession(t *testing.T) {
	f, baseUrl := newFakeNeos(t)
	for _, cmd := range []string{"extend", "logout", "friends", "messages"} {
		res := runCli(t, baseUrl, filepath.Join(t.TempDir(), "session.json"), cmd)
		assert.Equal(t, 1, res.code)
		assert.Contains(t, res.stderr, "neosctl login")
	}
	assert.Empty(t, f.Requests())
}

func TestRun_loginExtendLogout(t *testing.T) {
	t.Setenv("NEOS_PASSWORD", "hunter2")
	f, baseUrl := newFakeNeos(t)
	session := filepath.Join(t.TempDir(), "neosctl", "session.json")

	res := runCli(t, baseUrl, session, "login", "--username", "alice", "--remember-me")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "U-alice\n", res.stdout)

	var body map[string]any
	require.NoError(t, json.Unmarshal(f.Body(0), &body))
	assert.Equal(t, "alice", body["username"])
	assert.Equal(t, "hunter2", body["password"])
	assert.Equal(t, true, body["rememberMe"])
	assert.NotEmpty(t, body["secretMachineId"])
	assert.Empty(t, f.Auth(0))

	info, err := os.Stat(session)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	res = runCli(t, baseUrl, session, "extend")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "neos U-alice:tok", f.Auth(1))

	res = runCli(t, baseUrl, session, "logout")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "DELETE /api/userSessions/U-alice", f.Requests()[2])
	assert.Equal(t, "neos U-alice:tok", f.Auth(2))

	_, err = os.Stat(session)
	assert.True(t, os.IsNotExist(err))
}

func TestRun_loginRequiresPassword(t *testing.T) {
	t.Setenv("NEOS_PASSWORD", "")
	f, baseUrl := newFakeNeos(t)
	res := runCli(t, baseUrl, filepath.Join(t.TempDir(), "session.json"), "login", "-u", "alice")

	assert.Equal(t, 2, res.code)
	assert.Contains(t, res.stderr, "NEOS_PASSWORD")
	assert.Empty(t, f.Requests())
}

func TestNewLoginCredentials(t *testing.T) {
	testCases := []struct {
		identifier string
		expect     types.LoginIdentifierKind
	}{
		{identifier: "alice", expect: types.LoginByUsername},
		{identifier: "U-alice", expect: types.LoginByUserId},
		{identifier: "u-alice", expect: types.LoginByUserId},
		{identifier: "alice@example.com", expect: types.LoginByEmail},
	}

	for _, tc := range testCases {
		t.Run(tc.identifier, func(t *testing.T) {
			t.Parallel()
			c := newLoginCredentials(tc.identifier, "pw")
			assert.Equal(t, tc.expect, c.Identifier.Kind)
			assert.Equal(t, tc.identifier, c.Identifier.Value)
		})
	}
}
