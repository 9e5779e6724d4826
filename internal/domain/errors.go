package domain

import "errors"

var (
	// ErrNoStats indica que el feed no tiene estadísticas usables para un equipo.
	ErrNoStats = errors.New("no usable team stats")
	// ErrBetNotFound indica que no existe una apuesta con ese ID.
	ErrBetNotFound = errors.New("bet not found")
	// ErrBetSettled indica que la apuesta ya está en un estado terminal.
	ErrBetSettled = errors.New("bet already settled")
	// ErrInvalidResult indica un resultado de liquidación desconocido.
	ErrInvalidResult = errors.New("invalid bet result")
)
