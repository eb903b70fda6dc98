package email

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnconfiguredSenderLogsCode(t *testing.T) {
	var buf bytes.Buffer
	sender := NewSMTPSender(SMTPConfig{Host: "smtp.example.com"}, zerolog.New(&buf))

	err := sender.SendVerificationCode(context.Background(), "ada@uni.edu", "123456", 30*time.Minute)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "123456")
	assert.Contains(t, buf.String(), "ada@uni.edu")
}

func TestVerificationBody(t *testing.T) {
	body := verificationBody("004211", 90*time.Minute)
	assert.Contains(t, body, "004211")
	assert.Contains(t, body, "1 hour 30 minutes")
}
