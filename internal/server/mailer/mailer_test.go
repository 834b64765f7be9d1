package mailer

import (
	"bytes"
	"context"
	"testing"

	"github.com/dmitrijs2005/gophmarket/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogMailer(t *testing.T) {
	var buf bytes.Buffer
	m := NewLogMailer(logging.NewJSONLogger(&buf, "info"), "http://localhost:8080")

	require.NoError(t, m.SendVerification(context.Background(), "a@b.co", "abc123"))
	out := buf.String()
	assert.Contains(t, out, `"to":"a@b.co"`)
	assert.Contains(t, out, "http://localhost:8080/verify-email?token=abc123")
	assert.Contains(t, out, `"module":"mailer"`)

	buf.Reset()
	require.NoError(t, m.SendPasswordReset(context.Background(), "a@b.co", "r&1"))
	assert.Contains(t, buf.String(), "/reset-password?token=r%261")
}
