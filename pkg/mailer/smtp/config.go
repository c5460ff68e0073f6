package smtp

import "time"

// TLS modes.
const (
	TLSModeStartTLS = "starttls"
	TLSModeTLS      = "tls"
	TLSModePlain    = "plain"
)

// Config holds SMTP server configuration. Username and Password are optional
// for relays that accept unauthenticated mail, e.g. a local Mailpit.
type Config struct {
	Host        string        `env:"SMTP_HOST"`
	Port        int           `env:"SMTP_PORT" envDefault:"587"`
	Username    string        `env:"SMTP_USERNAME"`
	Password    string        `env:"SMTP_PASSWORD"`
	TLSMode     string        `env:"SMTP_TLS_MODE" envDefault:"starttls"`
	SenderEmail string        `env:"SMTP_FROM_EMAIL"`
	SenderName  string        `env:"SMTP_FROM_NAME"`
	Timeout     time.Duration `env:"SMTP_TIMEOUT" envDefault:"10s"`
}
