package notify

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"
)

// EmailChannel sends rendered reports over SMTP. The report's first line
// becomes the subject.
type EmailChannel struct {
	host     string
	port     string
	username string
	password string
	from     string
	to       string
}

func NewEmailChannel(host, port, username, password, from, to string) *EmailChannel {
	return &EmailChannel{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		to:       to,
	}
}

func (c *EmailChannel) Kind() string { return "email" }

func (c *EmailChannel) Deliver(_ context.Context, text string) error {
	subject, _, _ := strings.Cut(text, "\n")

	e := email.NewEmail()
	e.From = c.from
	e.To = []string{c.to}
	e.Subject = subject
	e.Text = []byte(text)

	var auth smtp.Auth
	if c.username != "" {
		auth = smtp.PlainAuth("", c.username, c.password, c.host)
	}
	if err := e.Send(net.JoinHostPort(c.host, c.port), auth); err != nil {
		return fmt.Errorf("send email to %s: %w", c.to, err)
	}
	return nil
}
