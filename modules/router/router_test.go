package router

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/go-monolith/mono/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SachinX01/WEBCHAT/domain/signaling"
)

type sentFrame struct {
	session string
	event   string
	payload any
}

type broadcastFrame struct {
	roomID  string
	event   string
	payload any
	exclude string
}

// fakeSender records deliveries; known sessions are configurable.
type fakeSender struct {
	known      map[string]bool
	sends      []sentFrame
	broadcasts []broadcastFrame
}

func (f *fakeSender) SendToSession(sessionHandle, event string, payload any) bool {
	if !f.known[sessionHandle] {
		return false
	}
	f.sends = append(f.sends, sentFrame{session: sessionHandle, event: event, payload: payload})
	return true
}

func (f *fakeSender) BroadcastToRoom(roomID, event string, payload any, excludeSession string) int {
	f.broadcasts = append(f.broadcasts, broadcastFrame{roomID: roomID, event: event, payload: payload, exclude: excludeSession})
	return 3
}

type nopLogger struct{}

func (nopLogger) Debug(_ string, _ ...any) {}
func (nopLogger) Info(_ string, _ ...any)  {}
func (nopLogger) Warn(_ string, _ ...any)  {}
func (nopLogger) Error(_ string, _ ...any) {}

func (l nopLogger) With(_ ...any) types.Logger       { return l }
func (l nopLogger) WithModule(_ string) types.Logger { return l }
func (l nopLogger) WithError(_ error) types.Logger   { return l }

func TestModule_ForwardDeliversVerbatim(t *testing.T) {
	sender := &fakeSender{known: map[string]bool{"s2": true}}
	m := NewModule(sender, nopLogger{})

	payload := json.RawMessage(`{"target_session":"s2","sdp":"v=0...","from_session":"s1"}`)
	m.Forward("s2", signaling.EventSDPOffer, payload)

	require.Len(t, sender.sends, 1)
	assert.Equal(t, "s2", sender.sends[0].session)
	assert.Equal(t, signaling.EventSDPOffer, sender.sends[0].event)

	raw, ok := sender.sends[0].payload.(json.RawMessage)
	require.True(t, ok)
	assert.JSONEq(t, string(payload), string(raw), "negotiation payload must pass through untouched")
}

func TestModule_ForwardUnknownTargetIsNoOp(t *testing.T) {
	sender := &fakeSender{known: map[string]bool{}}
	m := NewModule(sender, nopLogger{})

	m.Forward("gone", signaling.EventICECandidate, json.RawMessage(`{"target_session":"gone"}`))

	assert.Empty(t, sender.sends, "stale target drops silently")
}

func TestModule_BroadcastStampsTimestamp(t *testing.T) {
	sender := &fakeSender{}
	m := NewModule(sender, nopLogger{})

	before := time.Now()
	payload := map[string]any{
		"room_id":   "room-1",
		"text":      "hello",
		"timestamp": "client-supplied",
	}
	m.Broadcast("room-1", payload)
	after := time.Now()

	require.Len(t, sender.broadcasts, 1)
	call := sender.broadcasts[0]
	assert.Equal(t, "room-1", call.roomID)
	assert.Equal(t, signaling.EventMessage, call.event)
	assert.Equal(t, "", call.exclude, "sender receives its own broadcast")

	sent, ok := call.payload.(map[string]any)
	require.True(t, ok)
	stamp, ok := sent["timestamp"].(time.Time)
	require.True(t, ok, "server must override the client timestamp")
	assert.False(t, stamp.Before(before))
	assert.False(t, stamp.After(after))
	assert.Equal(t, "hello", sent["text"])
}

func TestModule_Name(t *testing.T) {
	m := NewModule(&fakeSender{}, nopLogger{})
	assert.Equal(t, "router", m.Name())
}
