package domain

import "errors"

var (
	ErrSnippetNotFound = errors.New("snippet not found")
	ErrSnippetExpired  = errors.New("snippet expired")
	ErrSnippetExists   = errors.New("snippet already exists")
	ErrInvalidLanguage = errors.New("invalid language")
	ErrInvalidExpiry   = errors.New("invalid expiry")
	ErrInvalidText     = errors.New("invalid text")
)
