package packets

const (
	CmdHello         = "hello"
	CmdFeed          = "feed"
	CmdCommentCreate = "comment_create"
	CmdCommentUpdate = "comment_update"
)

type V0Packet struct {
	Cmd   string      `json:"cmd" msgpack:"cmd"`
	Val   interface{} `json:"val" msgpack:"val"`
	Nonce int64       `json:"nonce" msgpack:"nonce"`
}
