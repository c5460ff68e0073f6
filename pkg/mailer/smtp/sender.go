// Package smtp delivers mailer emails over SMTP.
package smtp

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"time"

	"github.com/dmitrymomot/mailroom/pkg/mailer"
)

// Sender implements mailer.Sender over SMTP. It opens one connection per
// email and is safe for concurrent use.
type Sender struct {
	auth   smtp.Auth
	from   mail.Address
	config Config
}

var _ mailer.Sender = (*Sender)(nil)

// New creates an SMTP sender.
func New(cfg Config) (*Sender, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("%w: SMTP host is required", mailer.ErrInvalidConfig)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("%w: SMTP port must be between 1 and 65535", mailer.ErrInvalidConfig)
	}
	switch cfg.TLSMode {
	case TLSModeStartTLS, TLSModeTLS, TLSModePlain:
	default:
		return nil, fmt.Errorf("%w: SMTP TLS mode must be starttls, tls, or plain", mailer.ErrInvalidConfig)
	}
	if (cfg.Username == "") != (cfg.Password == "") {
		return nil, fmt.Errorf("%w: SMTP username and password must be set together", mailer.ErrInvalidConfig)
	}
	addr, err := mail.ParseAddress(cfg.SenderEmail)
	if err != nil {
		return nil, fmt.Errorf("%w: SMTP sender email: %v", mailer.ErrInvalidConfig, err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	s := &Sender{
		config: cfg,
		from:   mail.Address{Name: cfg.SenderName, Address: addr.Address},
	}
	if cfg.Username != "" {
		s.auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return s, nil
}

// Send implements mailer.Sender. The SMTP session is bounded by the context
// deadline or Config.Timeout, whichever comes first.
func (s *Sender) Send(ctx context.Context, email *mailer.Email) error {
	if err := email.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	from := s.from
	if email.From != "" {
		addr, err := mail.ParseAddress(email.From)
		if err != nil {
			return fmt.Errorf("smtp: invalid from address: %w", err)
		}
		from = *addr
	}

	rcpt, err := envelopeRecipients(email)
	if err != nil {
		return err
	}

	msg, err := buildMessage(from, email, time.Now())
	if err != nil {
		return fmt.Errorf("smtp: failed to build message: %w", err)
	}

	return s.deliver(ctx, from.Address, rcpt, msg)
}

func (s *Sender) deliver(ctx context.Context, from string, rcpt []string, msg []byte) error {
	deadline := time.Now().Add(s.config.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	addr := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
	dialer := &net.Dialer{Deadline: deadline}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("smtp: failed to connect to %s: %w", addr, err)
	}
	defer func() { _ = conn.Close() }()
	_ = conn.SetDeadline(deadline)

	if s.config.TLSMode == TLSModeTLS {
		conn = tls.Client(conn, &tls.Config{ServerName: s.config.Host, MinVersion: tls.VersionTLS12})
	}

	client, err := smtp.NewClient(conn, s.config.Host)
	if err != nil {
		return fmt.Errorf("smtp: failed to create client: %w", err)
	}
	defer func() { _ = client.Close() }()

	if s.config.TLSMode == TLSModeStartTLS {
		if ok, _ := client.Extension("STARTTLS"); !ok {
			return errors.New("smtp: server does not support STARTTLS")
		}
		if err := client.StartTLS(&tls.Config{ServerName: s.config.Host, MinVersion: tls.VersionTLS12}); err != nil {
			return fmt.Errorf("smtp: failed to start TLS: %w", err)
		}
	}

	if s.auth != nil {
		if err := client.Auth(s.auth); err != nil {
			return fmt.Errorf("smtp: authentication failed: %w", err)
		}
	}

	if err := client.Mail(from); err != nil {
		return fmt.Errorf("smtp: MAIL FROM rejected: %w", err)
	}
	for _, to := range rcpt {
		if err := client.Rcpt(to); err != nil {
			return fmt.Errorf("smtp: RCPT TO %s rejected: %w", to, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp: DATA rejected: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		_ = w.Close()
		return fmt.Errorf("smtp: failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp: message rejected: %w", err)
	}

	// The message is accepted once DATA closes; some servers drop the
	// connection before answering QUIT.
	_ = client.Quit()
	return nil
}

// envelopeRecipients returns the bare addresses of To, CC and BCC.
func envelopeRecipients(email *mailer.Email) ([]string, error) {
	all := make([]string, 0, len(email.To)+len(email.CC)+len(email.BCC))
	for _, list := range [][]string{email.To, email.CC, email.BCC} {
		for _, raw := range list {
			addr, err := mail.ParseAddress(raw)
			if err != nil {
				return nil, fmt.Errorf("smtp: invalid recipient %q: %w", raw, err)
			}
			all = append(all, addr.Address)
		}
	}
	return all, nil
}
