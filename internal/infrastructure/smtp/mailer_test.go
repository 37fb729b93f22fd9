package smtp

import (
	"context"
	"errors"
	"net/smtp"
	"testing"
	"time"

	"github.com/Redwolfc4/nusantarago-backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMail struct {
	addr string
	auth smtp.Auth
	from string
	to   []string
	msg  string
}

func newCapturingMailer(cfg *config.Config, out *sentMail, err error) *Mailer {
	m := NewMailer(cfg)
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		*out = sentMail{addr: addr, auth: a, from: from, to: to, msg: string(msg)}
		return err
	}
	return m
}

func TestSendOTP_ComposesMessage(t *testing.T) {
	var got sentMail
	m := newCapturingMailer(&config.Config{SMTPHost: "mail.local", SMTPPort: "2525", SMTPFrom: "noreply@nusantarago.id"}, &got, nil)

	require.NoError(t, m.SendOTP(context.Background(), "alice@gmail.com", "042917", 3*time.Minute))

	assert.Equal(t, "mail.local:2525", got.addr)
	assert.Nil(t, got.auth)
	assert.Equal(t, []string{"alice@gmail.com"}, got.to)
	assert.Contains(t, got.msg, "Subject: Your OTP Code\r\n")
	assert.Contains(t, got.msg, "042917")
	assert.Contains(t, got.msg, "3 minutes")
}

func TestSendOTP_UsesAuthWhenConfigured(t *testing.T) {
	var got sentMail
	m := newCapturingMailer(&config.Config{SMTPHost: "mail.local", SMTPPort: "587", SMTPUsername: "u", SMTPPassword: "p"}, &got, nil)

	require.NoError(t, m.SendOTP(context.Background(), "alice@gmail.com", "123456", time.Minute))
	assert.NotNil(t, got.auth)
}

func TestSendOTP_PropagatesFailure(t *testing.T) {
	var got sentMail
	m := newCapturingMailer(&config.Config{}, &got, errors.New("connection refused"))

	err := m.SendOTP(context.Background(), "alice@gmail.com", "123456", time.Minute)
	assert.ErrorContains(t, err, "connection refused")
}

func TestSendOTP_CancelledContext(t *testing.T) {
	var got sentMail
	m := newCapturingMailer(&config.Config{}, &got, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, m.SendOTP(ctx, "alice@gmail.com", "123456", time.Minute), context.Canceled)
	assert.Empty(t, got.addr)
}

func TestHumanDuration(t *testing.T) {
	assert.Equal(t, "1 minute", humanDuration(time.Minute))
	assert.Equal(t, "5 minutes", humanDuration(5*time.Minute))
	assert.Equal(t, "1m30s", humanDuration(90*time.Second))
}
