package mailer_test

import (
	"testing"

	"github.com/notifeed/notifeed/internal/mailer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSMTPSender(t *testing.T) {
	_, err := mailer.NewSMTPSender(mailer.SMTPConfig{})
	assert.Error(t, err)

	_, err = mailer.NewSMTPSender(mailer.SMTPConfig{Host: "smtp.example.com"})
	assert.Error(t, err)

	sender, err := mailer.NewSMTPSender(mailer.SMTPConfig{
		Host:     "smtp.example.com",
		Username: "digest",
		Password: "secret",
		FromName: "Notifeed",
		FromAddr: "digest@example.com",
	})
	require.NoError(t, err)
	assert.NotNil(t, sender)
}
