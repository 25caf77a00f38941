package mailer

import (
	"gopkg.in/gomail.v2"
)

// Mailer sends a single message. Handlers depend on the interface so tests
// can substitute a fake.
type Mailer interface {
	Send(to, subject, text, html string) error
}

// SMTPMailer delivers mail through an SMTP relay using gomail.
type SMTPMailer struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

func NewSMTPMailer(host string, port int, user, pass, from string) *SMTPMailer {
	return &SMTPMailer{Host: host, Port: port, User: user, Pass: pass, From: from}
}

func (m *SMTPMailer) Send(to, subject, text, html string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	if text != "" {
		msg.SetBody("text/plain", text)
		if html != "" {
			msg.AddAlternative("text/html", html)
		}
	} else {
		msg.SetBody("text/html", html)
	}

	d := gomail.NewDialer(m.Host, m.Port, m.User, m.Pass)
	return d.DialAndSend(msg)
}
