package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"tilecolony/internal/protocol"
	"tilecolony/internal/sim/catalogs"
	"tilecolony/internal/sim/world"
)

func startTestServer(t *testing.T) (*world.World, *httptest.Server) {
	t.Helper()
	cats, err := catalogs.Load("../../../configs")
	if err != nil {
		t.Fatalf("load catalogs: %v", err)
	}
	w, err := world.New(world.WorldConfig{
		ID:         "ws_test",
		Seed:       7,
		FlatWorld:  true,
		BoundaryR:  100,
		TickRateHz: 50, // fast ticks keep the test short
	}, cats)
	if err != nil {
		t.Fatalf("world.New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go w.Run(ctx)

	srv := NewServer(w, log.New(os.Stderr, "", 0))
	hs := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		hs.Close()
		cancel()
		w.Stop()
	})
	return w, hs
}

func dial(t *testing.T, hs *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(hs.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHandshakeAndFrameStream(t *testing.T) {
	w, hs := startTestServer(t)
	conn := dial(t, hs)

	hello, _ := json.Marshal(protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		ObserverName:    "itest",
	})
	if err := conn.WriteMessage(websocket.TextMessage, hello); err != nil {
		t.Fatalf("write HELLO: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read WELCOME: %v", err)
	}
	var welcome protocol.WelcomeMsg
	if err := json.Unmarshal(msg, &welcome); err != nil {
		t.Fatalf("unmarshal WELCOME: %v", err)
	}
	if welcome.Type != protocol.TypeWelcome || welcome.ObserverID == "" {
		t.Fatalf("bad WELCOME: %+v", welcome)
	}
	if welcome.WorldParams.Seed != 7 {
		t.Fatalf("seed = %d", welcome.WorldParams.Seed)
	}

	// Frames are only broadcast on activity; spawning an agent produces one.
	reply := make(chan world.CommandResult, 1)
	w.Enqueue(world.Command{Kind: world.CmdSpawnAgent, AgentName: "frame_trigger", Reply: reply})
	select {
	case res := <-reply:
		if !res.OK {
			t.Fatalf("spawn rejected: %+v", res)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("spawn command not applied")
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err = conn.ReadMessage()
	if err != nil {
		t.Fatalf("read FRAME: %v", err)
	}
	var frame protocol.FrameMsg
	if err := json.Unmarshal(msg, &frame); err != nil {
		t.Fatalf("unmarshal FRAME: %v", err)
	}
	if frame.Type != protocol.TypeFrame || frame.Tick == 0 {
		t.Fatalf("bad FRAME: %+v", frame)
	}
	if frame.World.Agents != 1 {
		t.Fatalf("frame agents = %d, want 1", frame.World.Agents)
	}
}

func TestHandshakeRejectsWrongVersion(t *testing.T) {
	_, hs := startTestServer(t)
	conn := dial(t, hs)

	hello, _ := json.Marshal(protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: "0.0",
		ObserverName:    "itest",
	})
	if err := conn.WriteMessage(websocket.TextMessage, hello); err != nil {
		t.Fatalf("write HELLO: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatal("expected close on version mismatch")
	}
}

func TestHandshakeRejectsNonHello(t *testing.T) {
	_, hs := startTestServer(t)
	conn := dial(t, hs)

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"FRAME"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatal("expected close on non-HELLO first message")
	}
}
