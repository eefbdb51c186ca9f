package v0_rest

import "errors"

var (
	ErrBadRequest         = errors.New("badRequest")         // 400
	ErrContentRejected    = errors.New("contentRejected")    // 400
	ErrUnauthorized       = errors.New("Unauthorized")       // 401
	ErrIPBlocked          = errors.New("ipBlocked")          // 403
	ErrMissingPermissions = errors.New("missingPermissions") // 403
	ErrNotFound           = errors.New("notFound")           // 404
	ErrPseudonymTaken     = errors.New("pseudonymTaken")     // 409
	ErrAlreadyOnboarded   = errors.New("alreadyOnboarded")   // 409
	ErrConflict           = errors.New("conflict")           // 409
	ErrFileTooLarge       = errors.New("fileTooLarge")       // 413
	ErrUnsupportedType    = errors.New("unsupportedType")    // 415
	ErrRatelimited        = errors.New("tooManyRequests")    // 429
	ErrInternal           = errors.New("Internal")           // 500
	ErrUploadsDisabled    = errors.New("uploadsDisabled")    // 503
)
