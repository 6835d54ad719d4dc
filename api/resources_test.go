package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neos-go/neos-go/errors"
	"github.com/neos-go/neos-go/id"
	"github.com/neos-go/neos-go/types"
)

func TestTesting_Ping(t *testing.T) {
	tr := newTestTransport(testResponse{status: 200})
	d, _ := newTestDispatcher(tr)

	require.NoError(t, NewTestingApi(d).Ping(context.Background()))
	assert.Equal(t, testBaseUrl+"testing/ping", tr.Request(0).URL.String())
}

func TestStats(t *testing.T) {
	testCases := []struct {
		name       string
		body       string
		expect     uint32
		expectKind string
	}{
		{name: "string", body: `"1234"`, expect: 1234},
		{name: "number", body: `567`, expect: 567},
		{name: "not a number", body: `"many"`, expectKind: errors.KIND_DESERIALIZATION},
		{name: "negative", body: `-1`, expectKind: errors.KIND_DESERIALIZATION},
		{name: "not json", body: `many`, expectKind: errors.KIND_DESERIALIZATION},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			tr := newTestTransport(testResponse{status: 200, body: tc.body})
			d, _ := newTestDispatcher(tr)
			stats := NewStatsApi(d)

			users, err := stats.OnlineUsers(context.Background())
			if tc.expectKind != "" {
				assert.Equal(t, tc.expectKind, errors.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expect, users)

			instances, err := stats.OnlineInstances(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tc.expect, instances)

			assert.Equal(t, testBaseUrl+"stats/onlineUsers", tr.Request(0).URL.String())
			assert.Equal(t, testBaseUrl+"stats/onlineInstances", tr.Request(1).URL.String())
		})
	}
}

func TestSessions(t *testing.T) {
	tr := newTestTransport(
		testResponse{status: 200, body: `[{"name":"A","sessionId":"S-a"},{"name":"B","sessionId":"S-b"}]`},
		testResponse{status: 200, body: `{"name":"A","sessionId":"S-a","accessLevel":5}`},
		testResponse{status: 200, body: `[{"name":"Bad","sessionId":"U-not-a-session"}]`},
	)
	d, _ := newTestDispatcher(tr)
	sessions := NewSessionsApi(d)
	ctx := context.Background()

	list, err := sessions.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, id.Session("S-b"), list[1].Id)

	one, err := sessions.Get(ctx, "S-a")
	require.NoError(t, err)
	assert.Equal(t, types.SessionAccessLevelAnyone, one.AccessLevel)
	assert.Equal(t, testBaseUrl+"sessions/S-a", tr.Request(1).URL.String())

	_, err = sessions.List(ctx)
	assert.Equal(t, errors.KIND_DESERIALIZATION, errors.KindOf(err))
}

func TestUsers(t *testing.T) {
	userJson := `{"id":"U-Neo","username":"Neo Kun","registrationDate":"2020-01-01T00:00:00Z",` +
		`"quotaBytes":-1,"usedBytes":2048,"publicBanExpiration":"0001-01-01T00:00:00"}`
	tr := newTestTransport(
		testResponse{status: 200, body: userJson},
		testResponse{status: 200, body: userJson},
		testResponse{status: 200, body: `[` + userJson + `]`},
		testResponse{status: 200, body: `{"onlineStatus":"Online","outputDevice":"VR"}`},
	)
	d, _ := newTestDispatcher(tr)
	users := NewUsersApi(d)
	ctx := context.Background()

	user, err := users.Get(ctx, types.ByUsername("Neo Kun"))
	require.NoError(t, err)
	assert.Equal(t, id.User("U-Neo"), user.Id)
	assert.False(t, user.QuotaBytes.Valid)
	assert.Equal(t, uint64(2048), user.UsedBytes.Bytes)
	assert.False(t, user.PublicBanExpiration.Valid)
	assert.Equal(t, testBaseUrl+"users/Neo%20Kun?byUsername=true", tr.Request(0).URL.String())

	_, err = users.Get(ctx, types.ByUserId("U-Neo"))
	require.NoError(t, err)
	assert.Equal(t, testBaseUrl+"users/U-Neo?byUsername=false", tr.Request(1).URL.String())

	found, err := users.Search(ctx, "neo")
	require.NoError(t, err)
	assert.Len(t, found, 1)
	assert.Equal(t, testBaseUrl+"users?name=neo", tr.Request(2).URL.String())

	status, err := users.Status(ctx, "U-Neo")
	require.NoError(t, err)
	assert.Equal(t, types.OnlineStatusOnline, status.OnlineStatus)
	assert.Equal(t, types.OutputDeviceVR, status.OutputDevice)
	assert.Equal(t, testBaseUrl+"users/U-Neo/status", tr.Request(3).URL.String())
}

func TestGroups_Get(t *testing.T) {
	tr := newTestTransport(testResponse{
		status: 200,
		body:   `{"id":"G-Neos","adminUserId":"U-Admin","name":"Neos","quotaBytes":100,"usedBytes":-1}`,
	})
	d, _ := newTestDispatcher(tr)

	group, err := NewGroupsApi(d).Get(context.Background(), "G-Neos")
	require.NoError(t, err)
	assert.Equal(t, "Neos", group.Name)
	assert.Equal(t, id.User("U-Admin"), group.AdminId)
	assert.False(t, group.UsedBytes.Valid)
	assert.Equal(t, testBaseUrl+"groups/G-Neos", tr.Request(0).URL.String())
}

func TestUserSessions(t *testing.T) {
	tr := newTestTransport(
		testResponse{status: 200, body: `{"userId":"U-Neo","token":"tkn","expire":"2030-01-02T00:00:00Z"}`},
		testResponse{status: 200},
		testResponse{status: 200},
	)
	d, _ := newTestDispatcher(tr)
	sessions := NewUserSessionsApi(d)
	ctx := context.Background()

	session, err := sessions.Create(ctx, types.NewLoginCredentials(types.Username("Neo"), "pw"))
	require.NoError(t, err)
	assert.Equal(t, id.User("U-Neo"), session.UserId)
	assert.Equal(t, "tkn", session.Token)
	assert.Equal(t, http.MethodPost, tr.Request(0).Method)
	assert.Equal(t, testBaseUrl+"userSessions", tr.Request(0).URL.String())
	assert.JSONEq(t,
		`{"username":"Neo","password":"pw","totp":null,"secretMachineId":null,"rememberMe":false}`,
		tr.RequestBody(0),
	)

	require.NoError(t, sessions.Extend(ctx))
	assert.Equal(t, http.MethodPatch, tr.Request(1).Method)
	assert.Equal(t, testBaseUrl+"userSessions", tr.Request(1).URL.String())

	require.NoError(t, sessions.Destroy(ctx, "U-Neo"))
	assert.Equal(t, http.MethodDelete, tr.Request(2).Method)
	assert.Equal(t, testBaseUrl+"userSessions/U-Neo", tr.Request(2).URL.String())
}

func TestUserSessions_CreateInvalidCredentials(t *testing.T) {
	tr := newTestTransport(testResponse{status: 200})
	d, _ := newTestDispatcher(tr)

	_, err := NewUserSessionsApi(d).Create(context.Background(), types.LoginCredentials{})
	require.Error(t, err)
	assert.Equal(t, errors.KIND_OTHER, errors.KindOf(err))
	assert.Equal(t, 0, tr.Count())
}

func TestFriends(t *testing.T) {
	tr := newTestTransport(
		testResponse{status: 200, body: `[{"id":"U-Friend","friendUsername":"Friend","friendStatus":"Accepted",` +
			`"isAccepted":true,"userStatus":{"onlineStatus":"Away"},"ownerId":"U-Me",` +
			`"latestMessageTime":"0001-01-01T00:00:00"}]`},
		testResponse{status: 200, body: `[]`},
		testResponse{status: 200},
		testResponse{status: 200},
	)
	d, _ := newTestDispatcher(tr)
	friends := NewFriendsApi(d, "U-Me")
	ctx := context.Background()

	list, err := friends.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, types.OnlineStatusAway, list[0].Status.OnlineStatus)
	assert.False(t, list[0].LatestMessageTime.Valid)
	assert.Equal(t, testBaseUrl+"users/U-Me/friends", tr.Request(0).URL.String())

	since := time.Date(2022, 4, 1, 12, 0, 0, 0, time.UTC)
	_, err = friends.ListFor(ctx, "U-Other", &since)
	require.NoError(t, err)
	assert.Equal(t, "/api/users/U-Other/friends", tr.Request(1).URL.Path)
	assert.Equal(t, "2022-04-01T12:00:00Z", tr.Request(1).URL.Query().Get("lastStatusUpdate"))

	require.NoError(t, friends.Add(ctx, "U-New"))
	assert.Equal(t, http.MethodPut, tr.Request(2).Method)
	assert.Equal(t, testBaseUrl+"users/U-Me/friends/U-New", tr.Request(2).URL.String())
	assert.JSONEq(t, `{"ownerId":"U-Me","friendStatus":"Accepted"}`, tr.RequestBody(2))

	require.NoError(t, friends.Remove(ctx, "U-New"))
	assert.Equal(t, http.MethodDelete, tr.Request(3).Method)
	assert.JSONEq(t, `{"ownerId":"U-Me","friendStatus":"Ignored"}`, tr.RequestBody(3))
}

func TestMessages(t *testing.T) {
	messageJson := `{"id":"MSG-1","ownerId":"U-Me","senderId":"U-Me","recipientId":"U-Friend",` +
		`"messageType":"Text","content":"hi","sendTime":"2022-04-01T12:00:00Z",` +
		`"lastUpdateTime":"2022-04-01T12:00:00Z","readTime":null}`
	tr := newTestTransport(
		testResponse{status: 200, body: `[` + messageJson + `]`},
		testResponse{status: 200, body: `[]`},
		testResponse{status: 200, body: messageJson},
	)
	d, _ := newTestDispatcher(tr)
	messages := NewMessagesApi(d, "U-Me")
	ctx := context.Background()

	list, err := messages.List(ctx, types.MessagesQuery{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	text, ok := list[0].Text()
	assert.True(t, ok)
	assert.Equal(t, "hi", text)
	assert.Equal(t, testBaseUrl+"users/U-Me/messages?maxItems=100", tr.Request(0).URL.String())

	from := time.Date(2022, 4, 1, 0, 0, 0, 0, time.UTC)
	friend := id.User("U-Friend")
	_, err = messages.List(ctx, types.MessagesQuery{
		MaxAmount:  10,
		UnreadOnly: true,
		FromTime:   &from,
		WithUser:   &friend,
	})
	require.NoError(t, err)
	query := tr.Request(1).URL.Query()
	assert.Equal(t, "10", query.Get("maxItems"))
	assert.Equal(t, "true", query.Get("unread"))
	assert.Equal(t, "2022-04-01T00:00:00Z", query.Get("fromTime"))
	assert.Equal(t, "U-Friend", query.Get("user"))

	sent, err := messages.SendText(ctx, "U-Friend", "hi")
	require.NoError(t, err)
	assert.Equal(t, "MSG-1", sent.Id)
	assert.Equal(t, http.MethodPost, tr.Request(2).Method)
	assert.Equal(t, testBaseUrl+"users/U-Friend/messages", tr.Request(2).URL.String())
	assert.Contains(t, tr.RequestBody(2), `"content":"hi"`)
	assert.Contains(t, tr.RequestBody(2), `"recipientId":"U-Friend"`)
}
