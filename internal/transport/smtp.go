package transport

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"
)

// SMTPTransport sends through a plain SMTP relay via gomail. SMTP has no
// provider-assigned id, so a Message-ID is generated here and doubles as
// the ledger's provider message id for callback matching.
type SMTPTransport struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

func NewSMTP(host string, port int, user, pass, from string) *SMTPTransport {
	return &SMTPTransport{Host: host, Port: port, User: user, Pass: pass, From: from}
}

func (t *SMTPTransport) Available() bool {
	return t.Host != ""
}

func (t *SMTPTransport) Send(ctx context.Context, msg Message) (string, error) {
	if !t.Available() {
		return "", fmt.Errorf("smtp transport not configured")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	messageID := fmt.Sprintf("<%s@%s>", uuid.NewString(), t.Host)

	m := gomail.NewMessage()
	m.SetHeader("From", t.From)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetHeader("Message-ID", messageID)
	if msg.ReplyTo != "" {
		m.SetHeader("Reply-To", msg.ReplyTo)
	}
	if msg.Text != "" {
		m.SetBody("text/plain", msg.Text)
		if msg.HTML != "" {
			m.AddAlternative("text/html", msg.HTML)
		}
	} else {
		m.SetBody("text/html", msg.HTML)
	}

	d := gomail.NewDialer(t.Host, t.Port, t.User, t.Pass)
	if err := d.DialAndSend(m); err != nil {
		return "", fmt.Errorf("smtp send error: %w", err)
	}

	return messageID, nil
}

var _ Transport = (*SMTPTransport)(nil)
