package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophmarket/internal/logging"
	"github.com/dmitrijs2005/gophmarket/internal/server/auth"
	"github.com/dmitrijs2005/gophmarket/internal/server/config"
	"github.com/dmitrijs2005/gophmarket/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const strongPassword = "Secr3t!pass"

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type recordingMailer struct {
	mu            sync.Mutex
	verifications map[string]string
	resets        map[string]string
	err           error
}

func newRecordingMailer() *recordingMailer {
	return &recordingMailer{verifications: map[string]string{}, resets: map[string]string{}}
}

func (m *recordingMailer) SendVerification(_ context.Context, email, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verifications[email] = token
	return m.err
}

func (m *recordingMailer) SendPasswordReset(_ context.Context, email, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resets[email] = token
	return m.err
}

func (m *recordingMailer) verification(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.verifications[email]
}

func (m *recordingMailer) reset(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resets[email]
}

type userFixture struct {
	svc    *UserService
	repos  repomanager.RepositoryManager
	codec  *auth.TokenCodec
	mailer *recordingMailer
	clock  *fakeClock
}

func newUserFixture(t *testing.T, repos repomanager.RepositoryManager) *userFixture {
	t.Helper()
	clock := newFakeClock()
	codec, err := auth.NewTokenCodec([]byte("test-secret"), time.Hour, auth.WithClock(clock.Now))
	require.NoError(t, err)

	cfg := &config.Config{RefreshTokenTTL: 24 * time.Hour, ResetTokenTTL: time.Hour}
	m := newRecordingMailer()
	svc := NewUserService(repos, codec, auth.NewHasher(bcrypt.MinCost), m, cfg, logging.Nop(), WithUserClock(clock.Now))

	return &userFixture{svc: svc, repos: repos, codec: codec, mailer: m, clock: clock}
}

// registerVerified creates a verified account and returns its id.
func (f *userFixture) registerVerified(t *testing.T, email string) string {
	t.Helper()
	ctx := context.Background()
	res, err := f.svc.Register(ctx, RegisterInput{Email: email, Password: strongPassword, FirstName: "Ada"})
	require.NoError(t, err)
	require.NoError(t, f.svc.VerifyEmail(ctx, f.mailer.verification(email)))
	return res.User.ID
}
