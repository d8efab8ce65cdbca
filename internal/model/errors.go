package model

import "errors"

// Common errors used across the application
var (
	// Session errors
	ErrAlreadyActive = errors.New("player already has an active game")
	ErrNotOwner      = errors.New("actor is not the owner of this game")
	ErrNoActiveGame  = errors.New("no active game")
	ErrDeckExhausted = errors.New("deck exhausted")

	// Card errors
	ErrInvalidCard = errors.New("invalid card code")

	// History errors
	ErrHistoryNotFound = errors.New("no history for player")

	// Persistence errors
	ErrPersistence = errors.New("persistence failure")

	// Player errors
	ErrPlayerNotFound = errors.New("player not found")

	// Channel errors
	ErrChannelNotAllowed     = errors.New("channel is not allowed")
	ErrChannelAlreadyAllowed = errors.New("channel is already allowed")
	ErrChannelNotListed      = errors.New("channel is not in the allow-list")
)
