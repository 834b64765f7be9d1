// Package mailer delivers account emails. Only a logging implementation
// exists; it writes the links it would have sent.
package mailer

import (
	"context"
	"net/url"

	"github.com/dmitrijs2005/gophmarket/internal/logging"
)

type Mailer interface {
	SendVerification(ctx context.Context, email, token string) error
	SendPasswordReset(ctx context.Context, email, token string) error
}

type LogMailer struct {
	log     logging.Logger
	baseURL string
}

// NewLogMailer returns a mailer that logs links rooted at baseURL, e.g.
// "http://localhost:8080".
func NewLogMailer(log logging.Logger, baseURL string) *LogMailer {
	return &LogMailer{log: log.With("module", "mailer"), baseURL: baseURL}
}

func (m *LogMailer) link(path, token string) string {
	return m.baseURL + path + "?token=" + url.QueryEscape(token)
}

func (m *LogMailer) SendVerification(ctx context.Context, email, token string) error {
	m.log.Info(ctx, "verification email", "to", email, "link", m.link("/verify-email", token))
	return nil
}

func (m *LogMailer) SendPasswordReset(ctx context.Context, email, token string) error {
	m.log.Info(ctx, "password reset email", "to", email, "link", m.link("/reset-password", token))
	return nil
}
