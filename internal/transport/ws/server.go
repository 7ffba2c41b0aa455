// Package ws serves the observer WebSocket stream: HELLO in, WELCOME out,
// then one FRAME per tick with activity.
package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"tilecolony/internal/protocol"
	"tilecolony/internal/sim/world"
)

type Server struct {
	world *world.World
	log   *log.Logger

	upgrader websocket.Upgrader
}

func NewServer(w *world.World, logger *log.Logger) *Server {
	return &Server{
		world: w,
		log:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		handle, ok := s.handshake(conn)
		if !ok {
			return
		}
		defer s.world.LeaveObserver(handle.ID)

		done := make(chan struct{})

		// Reader: observers send nothing after HELLO; the read loop only
		// detects disconnects and answers pings via the default handler.
		go func() {
			defer close(done)
			for {
				_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case <-done:
				return
			case b, open := <-handle.Frames:
				if !open {
					return
				}
				_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
					return
				}
			}
		}
	}
}

func (s *Server) handshake(conn *websocket.Conn) (world.ObserverHandle, bool) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return world.ObserverHandle{}, false
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		closePolicy(conn, "expected HELLO")
		return world.ObserverHandle{}, false
	}

	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return world.ObserverHandle{}, false
	}
	if hello.ProtocolVersion != protocol.Version {
		closePolicy(conn, "bad protocol_version")
		return world.ObserverHandle{}, false
	}
	if hello.ObserverName == "" {
		hello.ObserverName = "observer"
	}

	handle, err := s.world.JoinObserver(hello.ObserverName)
	if err != nil {
		return world.ObserverHandle{}, false
	}

	b, err := json.Marshal(handle.Welcome)
	if err != nil {
		s.world.LeaveObserver(handle.ID)
		return world.ObserverHandle{}, false
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		s.world.LeaveObserver(handle.ID)
		return world.ObserverHandle{}, false
	}
	return handle, true
}

func closePolicy(conn *websocket.Conn, reason string) {
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason),
		time.Now().Add(time.Second))
}
