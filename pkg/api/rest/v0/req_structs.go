package v0_rest

type OnboardReq struct {
	Pseudonym string `json:"pseudonym" validate:"required,min=3,max=32"`
	Avatar    string `json:"avatar" validate:"omitempty,url,max=2048"`
	Bio       string `json:"bio" validate:"max=280"`
}

type UpdateProfileReq struct {
	Pseudonym *string `json:"pseudonym" validate:"omitempty,min=3,max=32"`
	Avatar    *string `json:"avatar" validate:"omitempty,max=2048"`
	Bio       *string `json:"bio" validate:"omitempty,max=280"`
}

type CreatePostReq struct {
	Kind    string `json:"kind" validate:"required,oneof=text image video audio"`
	Content string `json:"content" validate:"required,max=2048"`
	Caption string `json:"caption" validate:"max=500"`
}

type ReactionReq struct {
	Emoji string `json:"emoji" validate:"required,max=16"`
}

type CreateCommentReq struct {
	Text    string `json:"text" validate:"required,max=1000"`
	ReplyTo string `json:"reply_to" validate:"omitempty,uuid"`
}

type CreateReportReq struct {
	Reason  string `json:"reason" validate:"required,max=100"`
	Comment string `json:"comment" validate:"max=2000"`
}

type CreateNetblockReq struct {
	Address   string `json:"address" validate:"required,max=64"`
	Reason    string `json:"reason" validate:"max=200"`
	ExpiresAt int64  `json:"expires_at" validate:"min=0"`
}
