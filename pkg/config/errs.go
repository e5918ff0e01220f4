package config

import "errors"

var (
	// ErrConfigNotFound indicates that the configuration file does not exist.
	ErrConfigNotFound = errors.New("config: configuration file not found")

	// ErrConfigUnreadable indicates that the configuration file exists but
	// could not be opened or read.
	ErrConfigUnreadable = errors.New("config: configuration file unreadable")

	// ErrInvalidValueSyntax marks a line whose value is not a voltage number.
	// The line is skipped; parsing continues.
	ErrInvalidValueSyntax = errors.New("config: invalid voltage value")

	// ErrUnrecognizedKey marks a line whose key names no voltage plane.
	// The line is skipped; parsing continues.
	ErrUnrecognizedKey = errors.New("config: unrecognized key")
)
