package structs

type V0Session struct {
	ViewerId string `json:"viewer_id" msgpack:"viewer_id"`
	IssuedAt int64  `json:"issued_at" msgpack:"issued_at"`
	Token    string `json:"token" msgpack:"token"`
}
