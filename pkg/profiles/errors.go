package profiles

import "errors"

var (
	ErrProfileNotFound  = errors.New("profile not found")
	ErrPseudonymTaken   = errors.New("pseudonym taken")
	ErrInvalidPseudonym = errors.New("invalid pseudonym")
	ErrAlreadyOnboarded = errors.New("profile already onboarded")
	ErrInvalidProfile   = errors.New("invalid profile field")
)
