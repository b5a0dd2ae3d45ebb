package notify

import (
	"crypto/tls"
	"fmt"

	mail "github.com/go-mail/mail"
)

// Mailer sends plain-text mail over SMTP.
type Mailer struct {
	Host string
	Port int
	User string
	Pass string
	From string
	// InsecureSkipVerify disables TLS certificate checks. Dev only.
	InsecureSkipVerify bool
}

// NewMailer returns a Mailer for the given SMTP endpoint. From is the
// From header on every message.
func NewMailer(host string, port int, user, pass, from string) *Mailer {
	return &Mailer{Host: host, Port: port, User: user, Pass: pass, From: from}
}

// Send delivers a plain-text message to the given address. STARTTLS is
// negotiated when the server offers it.
func (m *Mailer) Send(to, subject, body string) error {
	msg := mail.NewMessage()
	msg.SetHeader("From", m.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	d := mail.NewDialer(m.Host, m.Port, m.User, m.Pass)
	d.TLSConfig = &tls.Config{
		ServerName:         m.Host,
		InsecureSkipVerify: m.InsecureSkipVerify,
	}
	if err := d.DialAndSend(msg); err != nil {
		return fmt.Errorf("mail send to %s: %w", to, err)
	}
	return nil
}
