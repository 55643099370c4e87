package game

import "errors"

var (
	ErrInsufficientElements = errors.New("not enough elements")
	ErrInsufficientRare     = errors.New("not enough rare elements")
	ErrInsufficientOther    = errors.New("not enough other elements")
	ErrUnknownElement       = errors.New("unknown element")
	ErrInvalidAmount        = errors.New("gift amount must be positive")
	ErrSelfGift             = errors.New("cannot gift elements to yourself")
)
