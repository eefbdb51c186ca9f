package v0_rest

import (
	"github.com/japap-media/server/pkg/structs"
)

type BaseResp struct {
	Error bool `json:"error"`
}

type ErrResp struct {
	Error  bool              `json:"error"`
	Type   string            `json:"type"`
	Fields map[string]string `json:"fields,omitempty"`
}

type ListResp struct {
	Error   bool        `json:"error"`
	Autoget interface{} `json:"autoget"`

	// Id to pass as ?before= for the next page, empty on the last page
	Next string `json:"next,omitempty"`
}

type WelcomeResp struct {
	Error    bool   `json:"error"`
	Name     string `json:"name"`
	Frontend string `json:"frontend"`
}

type StatusResp struct {
	IPBlocked bool `json:"ipBlocked"`
	Uploads   bool `json:"uploads"`
}

type StatisticsResp struct {
	PostCount int64 `json:"posts"`
}

type SessionResp struct {
	Error bool `json:"error"`
	structs.V0Session
}

type ProfileResp struct {
	Error bool `json:"error"`
	structs.V0Profile
}

type PostResp struct {
	Error bool `json:"error"`
	structs.V0Post
}

type CommentResp struct {
	Error bool `json:"error"`
	structs.V0Comment
}

type ShareResp struct {
	Error bool   `json:"error"`
	URL   string `json:"url"`
}

type ReportResp struct {
	Error bool `json:"error"`
	structs.V0Report
}

type MediaResp struct {
	Error bool   `json:"error"`
	URL   string `json:"url"`
	Kind  string `json:"kind"`
}

type NetblockResp struct {
	Error     bool   `json:"error"`
	Id        string `json:"id"`
	Address   string `json:"address"`
	ExpiresAt int64  `json:"expires_at"`
}
