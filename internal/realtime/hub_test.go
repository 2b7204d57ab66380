package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

var testUpgrader = websocket.Upgrader{}

func TestHub_BroadcastAndUnregister(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub()
	go hub.Run(ctx)

	// Dials a real websocket into a test server and hands back both
	// ends: the external connection and the hub-side Client.
	connect := func(hub *Hub) (*websocket.Conn, *Client, func()) {
		var internal *Client
		var ready sync.WaitGroup
		ready.Add(1)

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			conn, err := testUpgrader.Upgrade(w, r, nil)
			if err != nil {
				t.Errorf("upgrade: %v", err)
				return
			}
			client := &Client{
				hub:  hub,
				conn: conn,
				send: make(chan []byte, 256),
			}
			internal = client
			ready.Done()

			go client.writePump()
			go client.readPump()
		}))

		url := "ws" + strings.TrimPrefix(server.URL, "http")
		ws, _, err := websocket.DefaultDialer.Dial(url, nil)
		if err != nil {
			t.Fatalf("dial: %v", err)
		}
		ready.Wait()

		return ws, internal, func() {
			server.Close()
			ws.Close()
		}
	}

	t.Run("broadcast reaches registered client", func(t *testing.T) {
		ws, internal, cleanup := connect(hub)
		defer cleanup()

		hub.register <- internal
		time.Sleep(50 * time.Millisecond)

		msg := []byte(`{"type":"player.state_changed"}`)
		hub.Broadcast(msg)

		_ = ws.SetReadDeadline(time.Now().Add(time.Second))
		_, received, err := ws.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if string(received) != string(msg) {
			t.Errorf("received %q, want %q", received, msg)
		}
	})

	t.Run("shutdown closes connected clients", func(t *testing.T) {
		shutCtx, shutCancel := context.WithCancel(context.Background())
		shut := NewHub()
		go shut.Run(shutCtx)

		ws, internal, cleanup := connect(shut)
		defer cleanup()

		shut.register <- internal
		time.Sleep(10 * time.Millisecond)

		shutCancel()

		_ = ws.SetReadDeadline(time.Now().Add(time.Second))
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				break
			}
		}

		select {
		case _, ok := <-internal.send:
			if ok {
				t.Error("send channel still open after shutdown")
			}
		case <-time.After(time.Second):
			t.Error("timed out waiting for send channel close")
		}
	})

	t.Run("unregister closes send channel", func(t *testing.T) {
		_, internal, cleanup := connect(hub)
		defer cleanup()

		hub.register <- internal
		time.Sleep(10 * time.Millisecond)

		hub.unregister <- internal

		select {
		case _, ok := <-internal.send:
			if ok {
				t.Error("send channel still open after unregister")
			}
		case <-time.After(time.Second):
			t.Error("timed out waiting for send channel close")
		}
	})
}
