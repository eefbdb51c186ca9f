package packets

type V0Hello struct {
	SessionId    string `json:"session_id" msgpack:"session_id"`
	ViewerId     string `json:"viewer_id,omitempty" msgpack:"viewer_id,omitempty"`
	PingInterval int    `json:"ping_interval" msgpack:"ping_interval"`
}
