package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neos-go/neos-go/id"
)

const sessionJson = `{
	"name": "<color=red>Chill</color> Lounge",
	"correspondingWorldId": {"recordId": "R-1234", "ownerId": "G-Neos"},
	"tags": ["chill"],
	"sessionId": "S-U-Host:abc",
	"normalizedSessionId": "s-u-host:abc",
	"hostUserId": "U-Host",
	"hostMachineId": "machine",
	"hostUsername": "Host",
	"compatibilityHash": "hash",
	"neosVersion": "2022.1.28.1310",
	"headlessHost": true,
	"sessionURLs": ["lnl-nat:///S-U-Host:abc"],
	"sessionUsers": [
		{"username": "Host", "userID": "U-Host", "isPresent": true, "outputDevice": 1},
		{"username": "Guest", "isPresent": false, "outputDevice": "Screen"},
		{"username": "Broken", "userID": "G-NotAUser", "outputDevice": 2}
	],
	"joinedUsers": 2,
	"activeUsers": 1,
	"totalJoinedUsers": 2,
	"totalActiveUsers": 1,
	"maxUsers": 16,
	"mobileFriendly": false,
	"sessionBeginTime": "2022-04-01T12:00:00Z",
	"lastUpdate": "2022-04-01T12:30:00Z",
	"accessLevel": "Anyone",
	"hasEnded": false,
	"isValid": true
}`

func TestSessionInfo_Unmarshal(t *testing.T) {
	var s SessionInfo
	require.NoError(t, json.Unmarshal([]byte(sessionJson), &s))

	assert.Equal(t, id.Session("S-U-Host:abc"), s.Id)
	require.NotNil(t, s.HostId)
	assert.Equal(t, id.User("U-Host"), *s.HostId)
	require.NotNil(t, s.World)
	assert.True(t, s.World.OwnerId.IsGroup())
	assert.Equal(t, SessionAccessLevelAnyone, s.AccessLevel)
	assert.True(t, s.IsHeadlessHost)

	require.Len(t, s.Users, 2)
	assert.Equal(t, OutputDeviceHeadless, s.Users[0].OutputDevice)
	assert.Nil(t, s.Users[1].Id)
	assert.Equal(t, OutputDeviceScreen, s.Users[1].OutputDevice)
}

func TestSessionInfo_StrippedName(t *testing.T) {
	testCases := []struct {
		name string
		want string
	}{
		{name: "<color=red>Chill</color> Lounge", want: "Chill Lounge"},
		{name: "Plain", want: "Plain"},
		{name: "a > b", want: "a > b"},
		{name: "<b><i>Nested</i></b>", want: "Nested"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, SessionInfo{Name: tc.name}.StrippedName())
		})
	}
}
