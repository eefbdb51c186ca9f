package structs

type V0Author struct {
	Id       string `json:"id" msgpack:"id"`
	Username string `json:"username" msgpack:"username"`
	Avatar   string `json:"avatar,omitempty" msgpack:"avatar,omitempty"`
}

type V0Profile struct {
	Id        string `json:"id" msgpack:"id"`
	Pseudonym string `json:"pseudonym" msgpack:"pseudonym"`
	Avatar    string `json:"avatar,omitempty" msgpack:"avatar,omitempty"`
	Bio       string `json:"bio,omitempty" msgpack:"bio,omitempty"`
	Onboarded bool   `json:"onboarded" msgpack:"onboarded"`
	CreatedAt int64  `json:"created_at" msgpack:"created_at"`
}
