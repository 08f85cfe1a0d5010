// Package mailer sends account activation mail. Delivery is behind an
// interface so services and tests never talk SMTP directly.
package mailer

import (
	"fmt"
	"net/smtp"
)

type Mailer interface {
	SendActivation(to, fullName, activationURL, code string) error
}

type smtpMailer struct {
	addr string
	from string
}

// NewSMTP returns a Mailer backed by the SMTP server at addr (host:port).
func NewSMTP(addr, from string) Mailer {
	return &smtpMailer{addr: addr, from: from}
}

func (m *smtpMailer) SendActivation(to, fullName, activationURL, code string) error {
	body := fmt.Sprintf(
		"To: %s\r\nFrom: %s\r\nSubject: Account activation\r\n\r\n"+
			"Hello %s,\r\n\r\n"+
			"Your activation code is %s.\r\n"+
			"Activate your account at %s\r\n",
		to, m.from, fullName, code, activationURL)
	return smtp.SendMail(m.addr, nil, m.from, []string{to}, []byte(body))
}

// Noop discards mail, used in dev when SMTP_ADDR is unset.
type Noop struct{}

func (Noop) SendActivation(string, string, string, string) error { return nil }
