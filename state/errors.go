package state

import "errors"

var (
	// ErrInvalidTopology is returned when a topology references unknown nodes or carries malformed links.
	ErrInvalidTopology = errors.New("invalid topology")
	// ErrInvalidParameter is returned when a configuration value is outside its accepted range.
	ErrInvalidParameter = errors.New("invalid parameter")
)
