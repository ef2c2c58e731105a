package multiplayer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	apperrors "github.com/pverge/blindtest/internal/errors"
)

var upgrader = websocket.Upgrader{}

// wsServer upgrades one connection and hands it to fn.
func wsServer(t *testing.T, fn func(conn *websocket.Conn)) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		fn(conn)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestDialAndSend(t *testing.T) {
	frames := make(chan outFrame, 4)
	url := wsServer(t, func(conn *websocket.Conn) {
		for {
			var f outFrame
			if err := conn.ReadJSON(&f); err != nil {
				return
			}
			frames <- f
		}
	})

	c, err := Dial(context.Background(), url, "p1")
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer c.Close()

	if err := c.SendReady(); err != nil {
		t.Fatalf("SendReady() error = %v", err)
	}
	if err := c.SendAnswer("yesterday"); err != nil {
		t.Fatalf("SendAnswer() error = %v", err)
	}

	select {
	case f := <-frames:
		if f.Destination != DestReady {
			t.Errorf("Destination = %q, want %q", f.Destination, DestReady)
		}
	case <-time.After(time.Second):
		t.Fatal("ready intent never arrived")
	}

	select {
	case f := <-frames:
		if f.Destination != DestSubmit {
			t.Errorf("Destination = %q, want %q", f.Destination, DestSubmit)
		}
		body, _ := json.Marshal(f.Body)
		var intent submitIntent
		if err := json.Unmarshal(body, &intent); err != nil {
			t.Fatalf("decode submit body: %v", err)
		}
		if intent.PlayerID != "p1" || intent.Answer != "yesterday" {
			t.Errorf("submit intent = %+v", intent)
		}
	case <-time.After(time.Second):
		t.Fatal("submit intent never arrived")
	}
}

func TestBroadcastsDelivered(t *testing.T) {
	url := wsServer(t, func(conn *websocket.Conn) {
		msg := `{"type":"PLAYERS_READY","payload":{"readyCount":2}}`
		if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
			return
		}
		// Hold the connection open until the client hangs up.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	c, err := Dial(context.Background(), url, "p1")
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer c.Close()

	select {
	case b := <-c.Broadcasts():
		if b.Type != BroadcastPlayersReady {
			t.Errorf("Type = %q, want PLAYERS_READY", b.Type)
		}
		var p PlayersReadyPayload
		if err := json.Unmarshal(b.Payload, &p); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if p.ReadyCount != 2 {
			t.Errorf("ReadyCount = %d, want 2", p.ReadyCount)
		}
	case <-time.After(time.Second):
		t.Fatal("broadcast never delivered")
	}
}

func TestSendAfterDisconnectDropsIntent(t *testing.T) {
	url := wsServer(t, func(conn *websocket.Conn) {})

	c, err := Dial(context.Background(), url, "p1")
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer c.Close()

	// The server hung up; the read loop closes the stream and nils the
	// connection.
	select {
	case _, ok := <-c.Broadcasts():
		if ok {
			t.Fatal("unexpected broadcast")
		}
	case <-time.After(time.Second):
		t.Fatal("broadcast stream never closed")
	}

	err = c.SendReady()
	if !errors.Is(err, apperrors.ErrChannelUnavailable) {
		t.Errorf("SendReady() error = %v, want ErrChannelUnavailable", err)
	}
}

func TestSetLogFuncDuringReadLoop(t *testing.T) {
	// The server hangs up immediately, so the read loop is logging its
	// teardown while the caller is still installing the log function,
	// the same ordering the join command uses after Dial.
	url := wsServer(t, func(conn *websocket.Conn) {})

	c, err := Dial(context.Background(), url, "p1")
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer c.Close()

	var lines atomic.Int32
	c.SetLogFunc(func(format string, args ...interface{}) {
		lines.Add(1)
	})

	select {
	case _, ok := <-c.Broadcasts():
		if ok {
			t.Fatal("unexpected broadcast")
		}
	case <-time.After(time.Second):
		t.Fatal("broadcast stream never closed")
	}

	// A dropped intent goes through the same guarded log path.
	if err := c.SendReady(); !errors.Is(err, apperrors.ErrChannelUnavailable) {
		t.Fatalf("SendReady() error = %v, want ErrChannelUnavailable", err)
	}
	if lines.Load() == 0 {
		t.Error("dropped intent was not logged")
	}
}

func TestDialFailure(t *testing.T) {
	_, err := Dial(context.Background(), "ws://127.0.0.1:1/ws", "p1")
	if err == nil {
		t.Error("Dial() error = nil, want connection failure")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	url := wsServer(t, func(conn *websocket.Conn) {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	c, err := Dial(context.Background(), url, "p1")
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}
