package utils

import (
	"fmt"
	"time"

	"gopkg.in/gomail.v2"
)

// Transport is the wire collaborator that actually delivers a message. The
// engine never depends on a specific provider's API shape: ok=false with an
// error detail is a recorded per-recipient failure, nothing more. messageID
// is the Message-ID header to stamp on the outgoing mail; empty omits it.
type Transport interface {
	Send(to, subject, body, messageID string) (ok bool, errorDetail string)
}

// SMTPMailer delivers messages over SMTP via gomail. Every send runs under
// a bounded timeout; a timeout counts as an ordinary transport failure.
type SMTPMailer struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string
	Timeout   time.Duration
}

func NewSMTPMailer(host string, port int, username, password, fromName, fromEmail string, timeout time.Duration) *SMTPMailer {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SMTPMailer{
		Host:      host,
		Port:      port,
		Username:  username,
		Password:  password,
		FromName:  fromName,
		FromEmail: fromEmail,
		Timeout:   timeout,
	}
}

func (m *SMTPMailer) Send(to, subject, body, messageID string) (bool, string) {
	msg := gomail.NewMessage()
	msg.SetHeader("From", fmt.Sprintf("%s <%s>", m.FromName, m.FromEmail))
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	if messageID != "" {
		msg.SetHeader("Message-ID", messageID)
	}
	msg.SetBody("text/html", body)

	dialer := gomail.NewDialer(m.Host, m.Port, m.Username, m.Password)

	done := make(chan error, 1)
	go func() {
		done <- dialer.DialAndSend(msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			return false, err.Error()
		}
		return true, ""
	case <-time.After(m.Timeout):
		return false, fmt.Sprintf("smtp send to %s timed out after %s", to, m.Timeout)
	}
}
