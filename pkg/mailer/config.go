package mailer

// DefaultLayout is the layout wrapped around markdown templates.
const DefaultLayout = "layout.html"

// Config holds mailer configuration.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	FallbackSubject string `env:"MAILER_FALLBACK_SUBJECT" envDefault:"Notification"`
	Layout          string `env:"MAILER_LAYOUT" envDefault:"layout.html"`
	From            string `env:"MAILER_FROM"`
	ReplyTo         string `env:"MAILER_REPLY_TO"`
	ButtonStyle     string `env:"MAILER_BUTTON_STYLE"`
}

func (c Config) layout() string {
	if c.Layout == "" {
		return DefaultLayout
	}
	return c.Layout
}
