package smtp

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/Redwolfc4/nusantarago-backend/internal/config"
)

// sendFunc matches net/smtp.SendMail so tests can capture outgoing mail.
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer sends emails over SMTP.
type Mailer struct {
	host     string
	port     string
	from     string
	username string
	password string
	send     sendFunc
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		from:     cfg.SMTPFrom,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		send:     smtp.SendMail,
	}
}

func (m *Mailer) SendEmail(to, subject, body string) error {
	headers := []string{
		"From: " + m.from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		`Content-Type: text/plain; charset="UTF-8"`,
	}
	msg := strings.Join(headers, "\r\n") + "\r\n\r\n" + body
	addr := fmt.Sprintf("%s:%s", m.host, m.port)

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	return m.send(addr, auth, m.from, []string{to}, []byte(msg))
}

// SendOTP mails a registration code with its validity window. net/smtp has
// no context support; ctx is only checked before dialing.
func (m *Mailer) SendOTP(ctx context.Context, to, code string, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body := fmt.Sprintf(
		"Hello,\r\n\r\nYour verification code is: %s\r\n\r\nUse it within %s. If you did not request this code, ignore this email.\r\n\r\nNusantaraGo",
		code, humanDuration(ttl),
	)
	if err := m.SendEmail(to, "Your OTP Code", body); err != nil {
		return fmt.Errorf("send otp to %s: %w", to, err)
	}
	return nil
}

func humanDuration(d time.Duration) string {
	if d%time.Minute == 0 {
		n := int(d / time.Minute)
		if n == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", n)
	}
	return d.String()
}
