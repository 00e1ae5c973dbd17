package live

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub, cancel
}

func TestHub_BroadcastReachesRoomOnly(t *testing.T) {
	hub, _ := startHub(t)

	inRoom := NewClient(hub, nil, DataRoom)
	elsewhere := NewClient(hub, nil, "other")
	require.True(t, hub.Join(inRoom))
	require.True(t, hub.Join(elsewhere))
	require.Eventually(t, func() bool { return hub.RoomSize(DataRoom) == 1 && hub.RoomSize("other") == 1 },
		time.Second, 5*time.Millisecond)

	at := time.Date(2026, 9, 25, 8, 0, 0, 0, time.UTC)
	hub.DocumentUpdated("sports_data.json", at)

	select {
	case raw := <-inRoom.Send:
		var msg struct {
			Type    string         `json:"type"`
			Payload DocumentUpdate `json:"payload"`
			RoomID  string         `json:"room_id"`
		}
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, TypeDocumentUpdated, msg.Type)
		assert.Equal(t, DataRoom, msg.RoomID)
		assert.Equal(t, "sports_data.json", msg.Payload.Key)
		assert.True(t, at.Equal(msg.Payload.Timestamp))
	case <-time.After(time.Second):
		t.Fatal("broadcast not delivered")
	}

	select {
	case <-elsewhere.Send:
		t.Fatal("message leaked into another room")
	default:
	}
}

func TestHub_LeaveClosesSendChannel(t *testing.T) {
	hub, _ := startHub(t)

	c := NewClient(hub, nil, DataRoom)
	require.True(t, hub.Join(c))
	hub.Leave(c)

	require.Eventually(t, func() bool { return hub.RoomSize(DataRoom) == 0 }, time.Second, 5*time.Millisecond)
	_, ok := <-c.Send
	assert.False(t, ok)

	// broadcasting to an empty room is a no-op
	hub.DocumentUpdated("x", time.Now())
}

func TestHub_StopClosesClientsAndRejectsJoins(t *testing.T) {
	hub, cancel := startHub(t)

	c := NewClient(hub, nil, DataRoom)
	require.True(t, hub.Join(c))
	cancel()

	select {
	case _, ok := <-c.Send:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("client not closed on hub stop")
	}

	assert.False(t, hub.Join(NewClient(hub, nil, DataRoom)))
	hub.Leave(c)
}

func TestHub_FullBufferDropsMessage(t *testing.T) {
	hub, _ := startHub(t)

	c := NewClient(hub, nil, DataRoom)
	require.True(t, hub.Join(c))
	require.Eventually(t, func() bool { return hub.RoomSize(DataRoom) == 1 }, time.Second, 5*time.Millisecond)

	for i := 0; i < sendBuffer+10; i++ {
		hub.DocumentUpdated("k", time.Now())
	}
	assert.Len(t, c.Send, sendBuffer)
}

func TestNewClient_UniqueIDs(t *testing.T) {
	hub := NewHub(nil)
	a := NewClient(hub, nil, DataRoom)
	b := NewClient(hub, nil, DataRoom)
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
}
