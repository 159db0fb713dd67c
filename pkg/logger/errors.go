package logger

import "errors"

var (
	ErrInvalidLevel  = errors.New("logger: invalid log level")
	ErrInvalidFormat = errors.New("logger: invalid log format")
)
