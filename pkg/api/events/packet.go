package events

import (
	"encoding/json"

	"github.com/gorilla/websocket"
	"github.com/japap-media/server/pkg/api/events/packets"
	"github.com/japap-media/server/pkg/feed"
	"github.com/japap-media/server/pkg/structs"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	formatJSON    int8 = 0
	formatMsgpack int8 = 1
)

func parseFormat(raw string) (int8, bool) {
	switch raw {
	case "", "json":
		return formatJSON, true
	case "msgpack":
		return formatMsgpack, true
	}
	return 0, false
}

// encodePacket returns the wire bytes of p and the websocket message type to
// send them with.
func encodePacket(p *packets.V0Packet, format int8) ([]byte, int, error) {
	if format == formatMsgpack {
		encoded, err := msgpack.Marshal(p)
		return encoded, websocket.BinaryMessage, err
	}
	encoded, err := json.Marshal(p)
	return encoded, websocket.TextMessage, err
}

func feedPacket(snap feed.Snapshot, viewerId string) *packets.V0Packet {
	v0 := &packets.V0Feed{
		Version: snap.Version,
		Posts:   make([]structs.V0Post, 0, len(snap.Posts)),
	}
	for i := range snap.Posts {
		v0.Posts = append(v0.Posts, snap.Posts[i].V0(viewerId))
	}
	return &packets.V0Packet{Cmd: packets.CmdFeed, Val: v0}
}
