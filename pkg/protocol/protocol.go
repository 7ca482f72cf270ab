// Package protocol implements the text wire format spoken between the chat
// server and its clients.
//
// A frame is one UTF-8 line terminated by '\n'; one transport write carries
// exactly one frame. The first whitespace-delimited token is an integer code,
// the remainder of the line is the payload. A line whose first token does not
// parse as an integer yields CmdUnknown (0), which matches no command and is
// dropped by the dispatcher.
package protocol

import (
	"strconv"
	"strings"
)

// ProtocolVersion is the current wire format version. The wire itself carries
// no version marker; this exists so a future incompatible format has a number
// to bump.
const ProtocolVersion = 1

// CommandCode identifies a client → server command.
type CommandCode int

const (
	CmdUnknown        CommandCode = 0
	CmdRegister       CommandCode = 1
	CmdLogin          CommandCode = 2
	CmdLogout         CommandCode = 3
	CmdMessage        CommandCode = 4
	CmdPrivateMessage CommandCode = 5
	CmdNameChange     CommandCode = 6
)

// ResponseCode identifies a server → client response or event.
type ResponseCode int

const (
	RespRegistered     ResponseCode = 1
	RespUsernameExists ResponseCode = 2
	RespLoginOK        ResponseCode = 3
	RespWrongPassword  ResponseCode = 4
	RespUserNotFound   ResponseCode = 5
	RespSuccessful     ResponseCode = 6
	RespNameTooLong    ResponseCode = 7
	RespMessage        ResponseCode = 8
	RespPrivateMessage ResponseCode = 9
	RespUpdateOnline   ResponseCode = 10
)

// Command is a decoded inbound frame.
type Command struct {
	Code    CommandCode
	Payload string
}

// Response is a decoded outbound frame, as seen by a client.
type Response struct {
	Code    ResponseCode
	Payload string
}

// UserEntry is one id/name pair in an UpdateOnline snapshot.
type UserEntry struct {
	ID   int64
	Name string
}

// splitCode splits a frame into its leading integer code and the payload.
// The payload is everything after the first space, untrimmed.
func splitCode(line string) (int, string) {
	head := line
	rest := ""
	if idx := strings.IndexByte(line, ' '); idx >= 0 {
		head = line[:idx]
		rest = line[idx+1:]
	}

	code, err := strconv.Atoi(head)
	if err != nil {
		return 0, ""
	}
	return code, rest
}

// ParseCommand decodes one inbound frame. Unparseable codes yield CmdUnknown.
func ParseCommand(line string) Command {
	code, payload := splitCode(line)
	return Command{Code: CommandCode(code), Payload: payload}
}

// ParseResponse decodes one outbound frame. Used by clients and tests.
func ParseResponse(line string) Response {
	code, payload := splitCode(line)
	return Response{Code: ResponseCode(code), Payload: payload}
}

// EncodeCommand encodes a command frame. An empty payload produces a bare
// numeric code.
func EncodeCommand(code CommandCode, payload string) string {
	if payload == "" {
		return strconv.Itoa(int(code))
	}
	return strconv.Itoa(int(code)) + " " + payload
}

// EncodeError encodes a failure response: just the numeric code.
func EncodeError(code ResponseCode) string {
	return strconv.Itoa(int(code))
}

// EncodeAuthOK encodes a Registered or LoginOK response.
func EncodeAuthOK(code ResponseCode, userID int64, username string) string {
	return strconv.Itoa(int(code)) + " " + strconv.FormatInt(userID, 10) + " " + username
}

// EncodeRenamed encodes the Successful response to a name change.
func EncodeRenamed(newName string) string {
	return strconv.Itoa(int(RespSuccessful)) + " " + newName
}

// EncodeBroadcast encodes a chat message fanned out to other sessions.
func EncodeBroadcast(senderID int64, senderName, text string) string {
	return strconv.Itoa(int(RespMessage)) + " " + strconv.FormatInt(senderID, 10) + " " + senderName + " " + text
}

// EncodePrivate encodes a direct message to a single session.
func EncodePrivate(senderID int64, senderName, body string) string {
	return strconv.Itoa(int(RespPrivateMessage)) + " " + strconv.FormatInt(senderID, 10) + " " + senderName + " " + body
}

// EncodeOnlineList encodes an UpdateOnline presence snapshot. Entry order is
// whatever the caller supplies; consumers must not depend on it.
func EncodeOnlineList(entries []UserEntry) string {
	var sb strings.Builder
	sb.WriteString(strconv.Itoa(int(RespUpdateOnline)))
	for _, e := range entries {
		sb.WriteByte(' ')
		sb.WriteString(strconv.FormatInt(e.ID, 10))
		sb.WriteByte(' ')
		sb.WriteString(e.Name)
	}
	return sb.String()
}

// SplitCredentials splits a Register/Login payload into username and
// password. The username is the first token; the password is the remainder.
func SplitCredentials(payload string) (username, password string, ok bool) {
	idx := strings.IndexByte(payload, ' ')
	if idx <= 0 {
		return "", "", false
	}
	username = payload[:idx]
	password = payload[idx+1:]
	if password == "" {
		return "", "", false
	}
	return username, password, true
}

// SplitPrivate splits a PrivateMessage payload into the numeric recipient
// user id and the message body.
func SplitPrivate(payload string) (recipientID int64, body string, ok bool) {
	head := payload
	if idx := strings.IndexByte(payload, ' '); idx >= 0 {
		head = payload[:idx]
		body = payload[idx+1:]
	}

	id, err := strconv.ParseInt(head, 10, 64)
	if err != nil {
		return 0, "", false
	}
	return id, body, true
}

// String returns the command name for log output.
func (c CommandCode) String() string {
	switch c {
	case CmdRegister:
		return "REGISTER"
	case CmdLogin:
		return "LOGIN"
	case CmdLogout:
		return "LOGOUT"
	case CmdMessage:
		return "MESSAGE"
	case CmdPrivateMessage:
		return "PRIVATE_MESSAGE"
	case CmdNameChange:
		return "NAME_CHANGE"
	default:
		return "UNKNOWN"
	}
}

// String returns the response name for log output.
func (r ResponseCode) String() string {
	switch r {
	case RespRegistered:
		return "REGISTERED"
	case RespUsernameExists:
		return "USERNAME_EXISTS"
	case RespLoginOK:
		return "LOGIN_OK"
	case RespWrongPassword:
		return "WRONG_PASSWORD"
	case RespUserNotFound:
		return "USER_NOT_FOUND"
	case RespSuccessful:
		return "SUCCESSFUL"
	case RespNameTooLong:
		return "NAME_TOO_LONG"
	case RespMessage:
		return "MESSAGE"
	case RespPrivateMessage:
		return "PRIVATE_MESSAGE"
	case RespUpdateOnline:
		return "UPDATE_ONLINE"
	default:
		return "UNKNOWN"
	}
}
