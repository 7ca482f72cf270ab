package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		code    CommandCode
		payload string
	}{
		{
			name:    "register with credentials",
			line:    "1 alice secret",
			code:    CmdRegister,
			payload: "alice secret",
		},
		{
			name:    "login",
			line:    "2 bob hunter2",
			code:    CmdLogin,
			payload: "bob hunter2",
		},
		{
			name:    "logout without payload",
			line:    "3",
			code:    CmdLogout,
			payload: "",
		},
		{
			name:    "broadcast preserves inner spaces",
			line:    "4 hello   world",
			code:    CmdMessage,
			payload: "hello   world",
		},
		{
			name:    "non-numeric prefix yields unknown",
			line:    "hello world",
			code:    CmdUnknown,
			payload: "",
		},
		{
			name:    "empty line yields unknown",
			line:    "",
			code:    CmdUnknown,
			payload: "",
		},
		{
			name:    "float code yields unknown",
			line:    "4.2 text",
			code:    CmdUnknown,
			payload: "",
		},
		{
			name:    "unmapped numeric code is preserved",
			line:    "99 whatever",
			code:    CommandCode(99),
			payload: "whatever",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := ParseCommand(tt.line)
			assert.Equal(t, tt.code, cmd.Code)
			assert.Equal(t, tt.payload, cmd.Payload)
		})
	}
}

func TestSplitCredentials(t *testing.T) {
	user, pass, ok := SplitCredentials("alice secret")
	require.True(t, ok)
	assert.Equal(t, "alice", user)
	assert.Equal(t, "secret", pass)

	// Passwords may contain spaces; everything after the first space is the
	// password.
	user, pass, ok = SplitCredentials("bob pass with spaces")
	require.True(t, ok)
	assert.Equal(t, "bob", user)
	assert.Equal(t, "pass with spaces", pass)

	_, _, ok = SplitCredentials("justusername")
	assert.False(t, ok)

	_, _, ok = SplitCredentials("trailing ")
	assert.False(t, ok)

	_, _, ok = SplitCredentials("")
	assert.False(t, ok)
}

func TestSplitPrivate(t *testing.T) {
	id, body, ok := SplitPrivate("42 hello there")
	require.True(t, ok)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, "hello there", body)

	// Bare recipient id, empty body.
	id, body, ok = SplitPrivate("7")
	require.True(t, ok)
	assert.Equal(t, int64(7), id)
	assert.Equal(t, "", body)

	_, _, ok = SplitPrivate("notanumber hi")
	assert.False(t, ok)

	_, _, ok = SplitPrivate("")
	assert.False(t, ok)
}

func TestEncodeResponses(t *testing.T) {
	assert.Equal(t, "2", EncodeError(RespUsernameExists))
	assert.Equal(t, "1 7 alice", EncodeAuthOK(RespRegistered, 7, "alice"))
	assert.Equal(t, "3 7 alice", EncodeAuthOK(RespLoginOK, 7, "alice"))
	assert.Equal(t, "6 newname", EncodeRenamed("newname"))
	assert.Equal(t, "8 7 alice hi all", EncodeBroadcast(7, "alice", "hi all"))
	assert.Equal(t, "9 7 alice psst", EncodePrivate(7, "alice", "psst"))
}

func TestEncodeOnlineList(t *testing.T) {
	assert.Equal(t, "10", EncodeOnlineList(nil))

	line := EncodeOnlineList([]UserEntry{{ID: 1, Name: "alice"}, {ID: 2, Name: "bob"}})
	assert.Equal(t, "10 1 alice 2 bob", line)

	resp := ParseResponse(line)
	assert.Equal(t, RespUpdateOnline, resp.Code)
	assert.Equal(t, "1 alice 2 bob", resp.Payload)
}

func TestEncodeCommand(t *testing.T) {
	assert.Equal(t, "3", EncodeCommand(CmdLogout, ""))
	assert.Equal(t, "1 alice secret", EncodeCommand(CmdRegister, "alice secret"))
}

func TestCodeStrings(t *testing.T) {
	assert.Equal(t, "REGISTER", CmdRegister.String())
	assert.Equal(t, "UNKNOWN", CmdUnknown.String())
	assert.Equal(t, "UNKNOWN", CommandCode(250).String())
	assert.Equal(t, "UPDATE_ONLINE", RespUpdateOnline.String())
	assert.Equal(t, "UNKNOWN", ResponseCode(250).String())
}
