package shell

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialHub(t *testing.T, h *Hub) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var ev Event
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

func TestBroadcastReachesConnectedShell(t *testing.T) {
	h := NewHub(nil)
	conn := dialHub(t, h)

	// Connection registration races the dial; poll until the broadcast
	// lands.
	go func() {
		for i := 0; i < 50; i++ {
			h.Display("listening....")
			time.Sleep(20 * time.Millisecond)
		}
	}()

	ev := readEvent(t, conn)
	assert.Equal(t, "display", ev.Kind)
	assert.Equal(t, "listening....", ev.Text)
}

func TestAskCommandGetsReply(t *testing.T) {
	h := NewHub(nil)
	h.SetHandlers(Handlers{
		Ask: func(text string) string { return "echo: " + text },
	})
	conn := dialHub(t, h)

	require.NoError(t, conn.WriteJSON(Command{Kind: "ask", Text: "hello"}))

	ev := readEvent(t, conn)
	assert.Equal(t, "reply", ev.Kind)
	assert.Equal(t, "echo: hello", ev.Text)
}

func TestListenCommandTogglesGuard(t *testing.T) {
	h := NewHub(nil)
	toggles := make(chan bool, 2)
	h.SetHandlers(Handlers{
		Listen: func(active bool) { toggles <- active },
	})
	conn := dialHub(t, h)

	require.NoError(t, conn.WriteJSON(Command{Kind: "listen", Active: true}))
	require.NoError(t, conn.WriteJSON(Command{Kind: "listen", Active: false}))

	assert.True(t, <-toggles)
	assert.False(t, <-toggles)
}

func TestListenTogglesKeepArrivalOrder(t *testing.T) {
	// Rapid on/off flips from one shell must apply in order; an
	// off observed before its on would leave the guard held.
	const flips = 40
	h := NewHub(nil)
	toggles := make(chan bool, flips)
	h.SetHandlers(Handlers{
		Listen: func(active bool) { toggles <- active },
	})
	conn := dialHub(t, h)

	for i := 0; i < flips; i++ {
		require.NoError(t, conn.WriteJSON(Command{Kind: "listen", Active: i%2 == 0}))
	}
	for i := 0; i < flips; i++ {
		assert.Equal(t, i%2 == 0, <-toggles, "toggle %d out of order", i)
	}
}

func TestUnknownCommandIsIgnored(t *testing.T) {
	h := NewHub(nil)
	h.SetHandlers(Handlers{
		Ask: func(text string) string { return "ok" },
	})
	conn := dialHub(t, h)

	require.NoError(t, conn.WriteJSON(Command{Kind: "frobnicate"}))
	require.NoError(t, conn.WriteJSON(Command{Kind: "ask", Text: "still alive?"}))

	ev := readEvent(t, conn)
	assert.Equal(t, "reply", ev.Kind)
	assert.Equal(t, "ok", ev.Text)
}

func TestChatEventCarriesSender(t *testing.T) {
	h := NewHub(nil)
	conn := dialHub(t, h)

	go func() {
		for i := 0; i < 50; i++ {
			h.Chat("ray", "Hello!")
			time.Sleep(20 * time.Millisecond)
		}
	}()

	ev := readEvent(t, conn)
	assert.Equal(t, "chat", ev.Kind)
	assert.Equal(t, "ray", ev.From)
	assert.Equal(t, "Hello!", ev.Text)
}
