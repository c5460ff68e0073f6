package config

import (
	"fmt"

	"github.com/dmitrymomot/mailroom/pkg/mailer"
	"github.com/dmitrymomot/mailroom/pkg/mailer/filesender"
	"github.com/dmitrymomot/mailroom/pkg/mailer/postmark"
	"github.com/dmitrymomot/mailroom/pkg/mailer/resend"
	"github.com/dmitrymomot/mailroom/pkg/mailer/smtp"
)

// NewSender builds the mailer.Sender selected by Provider.
func (c *Config) NewSender() (mailer.Sender, error) {
	var (
		s   mailer.Sender
		err error
	)
	switch c.Provider {
	case ProviderFile, "":
		s, err = filesender.New(c.File)
	case ProviderResend:
		s, err = resend.New(c.Resend)
	case ProviderPostmark:
		s, err = postmark.New(c.Postmark)
	case ProviderSMTP:
		s, err = smtp.New(c.SMTP)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, c.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("%s sender: %w", c.Provider, err)
	}
	return s, nil
}
