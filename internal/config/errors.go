package config

import "errors"

var (
	ErrDotenv          = errors.New("config: failed to load dotenv file")
	ErrParse           = errors.New("config: failed to parse environment")
	ErrInvalid         = errors.New("config: invalid configuration")
	ErrUnknownProvider = errors.New("config: unknown mailer provider")
)
