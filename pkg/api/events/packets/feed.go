package packets

import "github.com/japap-media/server/pkg/structs"

// V0Feed is the whole feed as seen by one viewer, newest first.
type V0Feed struct {
	Version int64            `json:"version" msgpack:"version"`
	Posts   []structs.V0Post `json:"posts" msgpack:"posts"`
}
