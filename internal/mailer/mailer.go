package mailer

import (
	"github.com/rs/zerolog/log"
	gomail "gopkg.in/gomail.v2"
)

// Sender delivers one message to one recipient with no retry.
type Sender interface {
	Send(to, subject, text, html string) error
}

// SMTP sends mail through a plain user/password SMTP account. When the
// credentials are empty every Send is a no-op that succeeds, so the rest of
// the system keeps working without email configured.
type SMTP struct {
	host string
	port int
	user string
	pass string
	dial func(m *gomail.Message) error
}

var _ Sender = (*SMTP)(nil)

// NewSMTP creates a sender for the given account.
func NewSMTP(host string, port int, user, pass string) *SMTP {
	s := &SMTP{host: host, port: port, user: user, pass: pass}
	s.dial = func(m *gomail.Message) error {
		d := gomail.NewDialer(s.host, s.port, s.user, s.pass)
		return d.DialAndSend(m)
	}
	return s
}

// Send attempts a single delivery with plain-text and HTML alternatives.
func (s *SMTP) Send(to, subject, text, html string) error {
	if s.user == "" || s.pass == "" {
		log.Warn().Str("to", to).Msg("email credentials not set, skipping send")
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.user)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", text)
	m.AddAlternative("text/html", html)

	return s.dial(m)
}
