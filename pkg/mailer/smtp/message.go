package smtp

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"net/textproto"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/mailroom/pkg/mailer"
)

// buildMessage renders email as an RFC 5322 message with a
// multipart/alternative body, wrapped in multipart/mixed when attachments
// are present. BCC recipients are left out of the headers.
func buildMessage(from mail.Address, email *mailer.Email, date time.Time) ([]byte, error) {
	var body bytes.Buffer
	contentType, err := writeBody(&body, email)
	if err != nil {
		return nil, err
	}

	var msg bytes.Buffer
	header := func(name, value string) {
		if value != "" {
			fmt.Fprintf(&msg, "%s: %s\r\n", name, value)
		}
	}

	header("From", from.String())
	header("To", strings.Join(email.To, ", "))
	header("Cc", strings.Join(email.CC, ", "))
	header("Reply-To", email.ReplyTo)
	header("Subject", mime.QEncoding.Encode("utf-8", email.Subject))
	header("Date", date.Format(time.RFC1123Z))
	header("Message-ID", messageID(from.Address))
	header("MIME-Version", "1.0")

	names := make([]string, 0, len(email.Headers))
	for name := range email.Headers {
		names = append(names, textproto.CanonicalMIMEHeaderKey(name))
	}
	sort.Strings(names)
	for _, name := range names {
		header(name, headerValue(email.Headers, name))
	}

	header("Content-Type", contentType)
	msg.WriteString("\r\n")
	msg.Write(body.Bytes())
	return msg.Bytes(), nil
}

func headerValue(headers map[string]string, canonical string) string {
	for k, v := range headers {
		if textproto.CanonicalMIMEHeaderKey(k) == canonical {
			return mime.QEncoding.Encode("utf-8", v)
		}
	}
	return ""
}

func messageID(sender string) string {
	domain := "localhost"
	if i := strings.LastIndexByte(sender, '@'); i >= 0 && i < len(sender)-1 {
		domain = sender[i+1:]
	}
	return "<" + uuid.NewString() + "@" + domain + ">"
}

func writeBody(w *bytes.Buffer, email *mailer.Email) (string, error) {
	if len(email.Attachments) == 0 {
		return writeAlternative(w, email)
	}

	mixed := multipart.NewWriter(w)

	var alt bytes.Buffer
	altType, err := writeAlternative(&alt, email)
	if err != nil {
		return "", err
	}
	part, err := mixed.CreatePart(textproto.MIMEHeader{"Content-Type": {altType}})
	if err != nil {
		return "", err
	}
	if _, err := part.Write(alt.Bytes()); err != nil {
		return "", err
	}

	for _, a := range email.Attachments {
		if err := writeAttachment(mixed, a); err != nil {
			return "", err
		}
	}
	if err := mixed.Close(); err != nil {
		return "", err
	}
	return mime.FormatMediaType("multipart/mixed", map[string]string{"boundary": mixed.Boundary()}), nil
}

func writeAlternative(w *bytes.Buffer, email *mailer.Email) (string, error) {
	alt := multipart.NewWriter(w)
	if email.Text != "" {
		if err := writeQuotedPrintable(alt, "text/plain; charset=UTF-8", email.Text); err != nil {
			return "", err
		}
	}
	if err := writeQuotedPrintable(alt, "text/html; charset=UTF-8", email.HTML); err != nil {
		return "", err
	}
	if err := alt.Close(); err != nil {
		return "", err
	}
	return mime.FormatMediaType("multipart/alternative", map[string]string{"boundary": alt.Boundary()}), nil
}

func writeQuotedPrintable(mw *multipart.Writer, contentType, content string) error {
	part, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {contentType},
		"Content-Transfer-Encoding": {"quoted-printable"},
	})
	if err != nil {
		return err
	}
	qw := quotedprintable.NewWriter(part)
	if _, err := qw.Write([]byte(content)); err != nil {
		return err
	}
	return qw.Close()
}

func writeAttachment(mw *multipart.Writer, a mailer.Attachment) error {
	contentType := a.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	disposition := "attachment"
	h := textproto.MIMEHeader{
		"Content-Type":              {mime.FormatMediaType(contentType, map[string]string{"name": a.Filename})},
		"Content-Transfer-Encoding": {"base64"},
	}
	if a.ContentID != "" {
		disposition = "inline"
		h.Set("Content-Id", "<"+a.ContentID+">")
	}
	h.Set("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": a.Filename}))

	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}

	encoded := base64.StdEncoding.EncodeToString(a.Content)
	for len(encoded) > 76 {
		if _, err := fmt.Fprintf(part, "%s\r\n", encoded[:76]); err != nil {
			return err
		}
		encoded = encoded[76:]
	}
	_, err = fmt.Fprintf(part, "%s\r\n", encoded)
	return err
}
