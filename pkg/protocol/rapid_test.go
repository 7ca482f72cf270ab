package protocol

import (
	"strconv"
	"strings"
	"testing"

	"pgregory.net/rapid"
)

// linePayload generates payloads that fit inside one frame: any text without
// the line terminator.
func linePayload() *rapid.Generator[string] {
	return rapid.StringMatching(`[^\n\r]*`)
}

// token generates a single whitespace-free, non-empty token (usernames,
// names).
func token() *rapid.Generator[string] {
	return rapid.StringMatching(`[^\s\v\x{85}\x{2028}\x{2029}\p{Zs}]{1,20}`)
}

// TestCommandRoundTrip tests that any encoded command decodes to the same
// code and payload.
func TestCommandRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		code := CommandCode(rapid.IntRange(1, 6).Draw(t, "code"))
		payload := linePayload().Draw(t, "payload")

		cmd := ParseCommand(EncodeCommand(code, payload))

		if cmd.Code != code {
			t.Fatalf("code mismatch: got %d, want %d", cmd.Code, code)
		}
		if cmd.Payload != payload {
			t.Fatalf("payload mismatch: got %q, want %q", cmd.Payload, payload)
		}
	})
}

// TestBroadcastRoundTrip tests that broadcast frames decode back to their
// sender id, sender name and text.
func TestBroadcastRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		senderID := rapid.Int64Range(1, 1<<40).Draw(t, "senderID")
		senderName := token().Draw(t, "senderName")
		text := linePayload().Draw(t, "text")

		resp := ParseResponse(EncodeBroadcast(senderID, senderName, text))

		if resp.Code != RespMessage {
			t.Fatalf("code mismatch: got %d, want %d", resp.Code, RespMessage)
		}

		id, rest, ok := SplitPrivate(resp.Payload)
		if !ok {
			t.Fatalf("payload %q did not split", resp.Payload)
		}
		if id != senderID {
			t.Fatalf("sender id mismatch: got %d, want %d", id, senderID)
		}
		if rest != senderName+" "+text {
			t.Fatalf("body mismatch: got %q, want %q", rest, senderName+" "+text)
		}
	})
}

// TestOnlineListRoundTrip tests that a presence snapshot decodes back to the
// same id/name pairs.
func TestOnlineListRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 20).Draw(t, "n")
		entries := make([]UserEntry, 0, n)
		for i := 0; i < n; i++ {
			entries = append(entries, UserEntry{
				ID:   rapid.Int64Range(1, 1<<40).Draw(t, "id"),
				Name: token().Draw(t, "name"),
			})
		}

		resp := ParseResponse(EncodeOnlineList(entries))
		if resp.Code != RespUpdateOnline {
			t.Fatalf("code mismatch: got %d, want %d", resp.Code, RespUpdateOnline)
		}

		if len(entries) == 0 {
			if resp.Payload != "" {
				t.Fatalf("expected empty payload, got %q", resp.Payload)
			}
			return
		}

		fields := strings.Fields(resp.Payload)
		if len(fields) != 2*len(entries) {
			t.Fatalf("expected %d fields, got %d", 2*len(entries), len(fields))
		}
		for i, e := range entries {
			gotID, gotName := fields[2*i], fields[2*i+1]
			if gotName != e.Name {
				t.Fatalf("entry %d name mismatch: got %q, want %q", i, gotName, e.Name)
			}
			id, err := strconv.ParseInt(gotID, 10, 64)
			if err != nil || id != e.ID {
				t.Fatalf("entry %d id mismatch: got %s, want %d", i, gotID, e.ID)
			}
		}
	})
}
