package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/japap-media/server/pkg/api/events/packets"
	"github.com/japap-media/server/pkg/logging"
	"github.com/sirupsen/logrus"
)

const (
	pingInterval = 45_000 // 45 seconds
	writeWait    = 10 * time.Second
)

type Session struct {
	id     string
	server *Server

	viewerId string

	// Only the run loop writes to conn
	send chan *packets.V0Packet

	conn        *websocket.Conn
	protoFormat int8 // 0: json, 1: msgpack

	ctx    context.Context
	cancel context.CancelFunc
}

func newSession(server *Server, conn *websocket.Conn, viewerId string, protoFormat int8) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		id:     uuid.New().String(),
		server: server,

		viewerId: viewerId,

		send: make(chan *packets.V0Packet, 256),

		conn:        conn,
		protoFormat: protoFormat,

		ctx:    ctx,
		cancel: cancel,
	}
}

// run writes hello, then every feed snapshot and queued packet until the
// connection goes away.
func (s *Session) run() {
	defer s.end()

	// Read incoming messages until connection ends, clients never send
	// anything meaningful
	go func() {
		defer s.cancel()
		for {
			if _, _, err := s.conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// Send hello
	if err := s.write(&packets.V0Packet{
		Cmd: packets.CmdHello,
		Val: &packets.V0Hello{
			SessionId:    s.id,
			ViewerId:     s.viewerId,
			PingInterval: pingInterval,
		},
	}); err != nil {
		return
	}

	snapshots := s.server.sync.Subscribe(s.ctx, s.viewerId)

	ticker := time.NewTicker(time.Millisecond * pingInterval)
	defer ticker.Stop()

	for {
		var err error
		select {
		case <-s.ctx.Done():
			return
		case snap, ok := <-snapshots:
			if !ok {
				return
			}
			err = s.write(feedPacket(snap, s.viewerId))
		case packet := <-s.send:
			err = s.write(packet)
		case <-ticker.C:
			err = s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
		}
		if err != nil {
			logging.Log.WithFields(logrus.Fields{
				"session": s.id,
			}).WithError(err).Debug("session write failed")
			return
		}
	}
}

// enqueue hands packet to the run loop without blocking the caller. A session
// that cannot keep up loses the packet.
func (s *Session) enqueue(packet *packets.V0Packet) {
	select {
	case s.send <- packet:
	case <-s.ctx.Done():
	default:
		logging.Log.WithFields(logrus.Fields{
			"session": s.id,
			"cmd":     packet.Cmd,
		}).Warn("session send queue is full, dropping packet")
	}
}

// write stamps the packet with the next nonce, so nonces seen by one client
// only ever go up.
func (s *Session) write(packet *packets.V0Packet) error {
	packet.Nonce = s.server.getNextNonce()

	encoded, msgType, err := encodePacket(packet, s.protoFormat)
	if err != nil {
		return err
	}

	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(msgType, encoded)
}

func (s *Session) end() {
	s.cancel()
	s.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait),
	)
	s.conn.Close()
}
