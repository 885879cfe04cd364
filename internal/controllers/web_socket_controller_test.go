package controllers

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart_tracker/internal/models"
)

func dialHub(t *testing.T, hub *ActivityHub) *websocket.Conn {
	t.Helper()
	r := gin.New()
	r.GET("/ws/activities", hub.HandleActivityWebSocket)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/activities"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool { return hub.Subscribers() == 1 }, 2*time.Second, 10*time.Millisecond)
	return conn
}

func TestHubDeliversEvents(t *testing.T) {
	hub := NewActivityHub()
	defer hub.Close()
	conn := dialHub(t, hub)

	hub.Publish(ActivityEvent{Type: EventCreated, Data: models.Activity{ID: "a1"}, At: time.Now()})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var got ActivityEvent
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, EventCreated, got.Type)
	assert.Equal(t, "a1", got.Data.ID)
}

func TestHubUnregistersOnDisconnect(t *testing.T) {
	hub := NewActivityHub()
	defer hub.Close()
	conn := dialHub(t, hub)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye")))
	conn.Close()

	assert.Eventually(t, func() bool { return hub.Subscribers() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHubPublishAfterCloseIsNoop(t *testing.T) {
	hub := NewActivityHub()
	hub.Close()
	hub.Close()

	assert.NotPanics(t, func() {
		hub.Publish(ActivityEvent{Type: EventDeleted})
	})
	assert.Zero(t, hub.Subscribers())
}

func TestHubDropsWhenBufferFull(t *testing.T) {
	hub := &ActivityHub{
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan ActivityEvent, 1),
		done:      make(chan struct{}),
	}

	hub.Publish(ActivityEvent{Type: EventCreated})
	assert.NotPanics(t, func() { hub.Publish(ActivityEvent{Type: EventUpdated}) })
	assert.Len(t, hub.broadcast, 1)
}

func TestHubPublishDoesNotWaitOnStalledSubscriber(t *testing.T) {
	hub := NewActivityHub()
	conn := dialHub(t, hub)

	// The client never reads, so the socket buffers fill and writes stall.
	big := models.Activity{ID: "big", ImagePath: strings.Repeat("x", 1<<20)}
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 64; i++ {
			hub.Publish(ActivityEvent{Type: EventUpdated, Data: big, At: time.Now()})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked behind a stalled subscriber")
	}

	conn.Close()
	hub.Close()
}
