package alert

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"github.com/dreschagin/system-diagnostics/internal/application/port"
)

// EmailChannel delivers alerts over SMTP with PLAIN auth. One message per
// alert; recipients share a single send.
type EmailChannel struct {
	host       string
	port       string
	username   string
	password   string
	sender     string
	recipients []string
}

type EmailConfig struct {
	Host       string
	Port       string
	Username   string
	Password   string
	Sender     string
	Recipients []string
}

func NewEmailChannel(cfg EmailConfig) *EmailChannel {
	return &EmailChannel{
		host:       cfg.Host,
		port:       cfg.Port,
		username:   cfg.Username,
		password:   cfg.Password,
		sender:     cfg.Sender,
		recipients: cfg.Recipients,
	}
}

func (c *EmailChannel) Name() string {
	return "email"
}

func (c *EmailChannel) Send(ctx context.Context, n port.AlertNotification) error {
	if len(c.recipients) == 0 {
		return fmt.Errorf("email: no recipients configured")
	}

	subject := fmt.Sprintf("[%s] %s alert: %s", strings.ToUpper(n.Severity.String()), n.Category, n.Message)
	body := fmt.Sprintf(
		"Category: %s\r\nSeverity: %s\r\nTime: %s\r\n\r\n%s\r\n",
		n.Category, n.Severity, n.Timestamp.Format("2006-01-02 15:04:05 MST"), n.Message,
	)

	msg := strings.Builder{}
	msg.WriteString("From: " + c.sender + "\r\n")
	msg.WriteString("To: " + strings.Join(c.recipients, ", ") + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	addr := net.JoinHostPort(c.host, c.port)
	auth := smtp.PlainAuth("", c.username, c.password, c.host)

	// net/smtp has no context support; run the send in a goroutine and
	// abandon it if the context expires first.
	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(addr, auth, c.sender, c.recipients, []byte(msg.String()))
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("email: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("email: %w", ctx.Err())
	}
}
