package handlers

import (
	"errors"
	"net"
	"testing"
	"time"

	"mathking/models"

	fastws "github.com/fasthttp/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// serveTicker runs the socket route on a real listener. The returned channel
// receives once per finished handler call.
func serveTicker(t *testing.T) (string, <-chan struct{}) {
	t.Helper()
	setupApp(t)

	exited := make(chan struct{}, 4)
	app := fiber.New()
	app.Use("/ws", WebSocketUpgrade)
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		BroadcastSocket(c)
		exited <- struct{}{}
	}))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go app.Listener(ln)
	t.Cleanup(func() { _ = app.Shutdown() })

	return "ws://" + ln.Addr().String() + "/ws", exited
}

func waitSubscribers(t *testing.T, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return broadcastHub.Subscribers() == n }, 2*time.Second, 10*time.Millisecond)
}

func waitExit(t *testing.T, exited <-chan struct{}) {
	t.Helper()
	select {
	case <-exited:
	case <-time.After(2 * time.Second):
		t.Fatal("socket handler did not return")
	}
}

func TestBroadcastSocketPushesAndExitsOnClientClose(t *testing.T) {
	url, exited := serveTicker(t)

	client, _, err := fastws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	waitSubscribers(t, 1)

	broadcastHub.Publish(models.Broadcast{ClassName: "Class 1", Name: "Alice", Element: models.ElementFire})
	var got models.Broadcast
	require.NoError(t, client.ReadJSON(&got))
	assert.Equal(t, "Alice", got.Name)
	assert.Equal(t, models.ElementFire, got.Element)

	require.NoError(t, client.Close())
	waitExit(t, exited)
	assert.Equal(t, 0, broadcastHub.Subscribers())
}

func TestBroadcastSocketExitsWhenFeedCloses(t *testing.T) {
	url, exited := serveTicker(t)

	client, _, err := fastws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer client.Close()
	waitSubscribers(t, 1)

	// The client stays connected; the handler must still stop its reader
	// before returning.
	broadcastHub.Close()
	waitExit(t, exited)

	_ = client.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = client.ReadMessage()
	assert.Error(t, err)
}

type failingWriter struct {
	writes int
}

func (w *failingWriter) SetWriteDeadline(time.Time) error { return nil }

func (w *failingWriter) WriteJSON(interface{}) error {
	w.writes++
	return errors.New("broken pipe")
}

func TestPushFeedStopsOnWriteError(t *testing.T) {
	feed := make(chan models.Broadcast, 2)
	feed <- models.Broadcast{Name: "a"}
	feed <- models.Broadcast{Name: "b"}

	w := &failingWriter{}
	pushFeed(w, feed)
	assert.Equal(t, 1, w.writes)
}
