package service

import "errors"

// Common service errors
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("resource not found")
)

// Player service specific errors
var (
	ErrPlayerNotFound      = errors.New("player not found")
	ErrPlayerInactive      = errors.New("player is inactive")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrPlayerAlreadyExists = errors.New("player already exists")
	ErrInvalidUsername     = errors.New("username must not contain spaces")
)

// Match workflow specific errors
var (
	ErrMatchNotFound        = errors.New("match not found")
	ErrSelfMatch            = errors.New("cannot play a match against yourself")
	ErrTiedScore            = errors.New("a match cannot end in a tie")
	ErrInvalidMatchType     = errors.New("unknown match type")
	ErrMatchAlreadyResolved = errors.New("match already confirmed or rejected")
	ErrConfirmContended     = errors.New("match is being resolved by another request")
)
