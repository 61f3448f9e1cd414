package config

import "errors"

var (
	ErrReadConfig    = errors.New("config: read config file")
	ErrInvalidConfig = errors.New("config: invalid config")
)
