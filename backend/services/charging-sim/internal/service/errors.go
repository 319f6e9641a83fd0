package service

import "errors"

var (
	// ErrStationNotFound is returned when the catalog has no such station.
	ErrStationNotFound = errors.New("station not found")
	// ErrConnectorNotFound is returned when the station has no such connector.
	ErrConnectorNotFound = errors.New("connector not found")
	// ErrConnectorUnavailable means the connector did not sample as Available.
	ErrConnectorUnavailable = errors.New("connector not available")
	// ErrSessionNotFound is returned for unknown session ids.
	ErrSessionNotFound = errors.New("session not found")
	// ErrInvalidState is returned when a transition is not allowed from the current state.
	ErrInvalidState = errors.New("session is not in a reserved state")
)
