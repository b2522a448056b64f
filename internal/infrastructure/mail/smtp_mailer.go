package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

const resetTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif;">
    <h2>Password reset</h2>
    <p>Someone asked to reset the password of the JobBoard account registered with this address.</p>
    <p><a href="{{.Link}}">Choose a new password</a></p>
    <p>The link is valid for a limited time. If you did not ask for it, ignore this message.</p>
</body>
</html>
`

var resetTmpl = template.Must(template.New("reset").Parse(resetTemplate))

// sendFunc matches smtp.SendMail.
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer sends reset links as HTML mail through an SMTP relay.
type SMTPMailer struct {
	config SMTPConfig
	send   sendFunc
}

func NewSMTPMailer(config SMTPConfig) *SMTPMailer {
	return &SMTPMailer{config: config, send: smtp.SendMail}
}

func (m *SMTPMailer) Deliver(ctx context.Context, email, resetLink string) error {
	if strings.ContainsAny(email, "\r\n") {
		return fmt.Errorf("invalid recipient address")
	}

	msg, err := m.message(email, resetLink)
	if err != nil {
		return err
	}

	var auth smtp.Auth
	if m.config.Username != "" {
		auth = smtp.PlainAuth("", m.config.Username, m.config.Password, m.config.Host)
	}
	addr := fmt.Sprintf("%s:%d", m.config.Host, m.config.Port)

	if err := m.send(addr, auth, m.config.From, []string{email}, msg); err != nil {
		return fmt.Errorf("sending mail: %w", err)
	}
	return nil
}

func (m *SMTPMailer) message(to, resetLink string) ([]byte, error) {
	var body bytes.Buffer
	if err := resetTmpl.Execute(&body, struct{ Link string }{resetLink}); err != nil {
		return nil, fmt.Errorf("executing template: %w", err)
	}

	headers := []struct{ key, value string }{
		{"From", m.config.From},
		{"To", to},
		{"Subject", "Reset your JobBoard password"},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/html; charset=UTF-8"},
	}

	var message bytes.Buffer
	for _, h := range headers {
		fmt.Fprintf(&message, "%s: %s\r\n", h.key, h.value)
	}
	message.WriteString("\r\n")
	message.Write(body.Bytes())
	return message.Bytes(), nil
}
