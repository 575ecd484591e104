package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/skilladmin/internal/session"
)

type fakePinger struct {
	status int
	err    error
}

func (f fakePinger) Ping(context.Context) (int, error) { return f.status, f.err }
func (f fakePinger) BaseURL() string                   { return "https://api.example.test" }

func TestAPIChecker(t *testing.T) {
	tests := []struct {
		name   string
		pinger fakePinger
		want   Status
	}{
		{"reachable", fakePinger{status: 200}, StatusHealthy},
		{"not found is still reachable", fakePinger{status: 404}, StatusHealthy},
		{"server errors", fakePinger{status: 502}, StatusDegraded},
		{"transport failure", fakePinger{err: errors.New("connection refused")}, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewAPIChecker(tt.pinger).Check(context.Background())
			assert.Equal(t, tt.want, r.Status)
			assert.Equal(t, "https://api.example.test", r.Details["url"])
		})
	}
}

func signed(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "admin-1",
		"exp": exp.Unix(),
	}).SignedString([]byte("test"))
	require.NoError(t, err)
	return tok
}

func TestSessionChecker(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()
	checker := NewSessionChecker(store, "memory")

	r := checker.Check(ctx)
	assert.Equal(t, StatusDegraded, r.Status)
	assert.Contains(t, r.Message, "login")

	token := signed(t, time.Now().Add(time.Hour))
	require.NoError(t, store.Set(ctx, session.Session{Token: token, Admin: session.Admin{ID: "admin-1", Email: "a@example.test"}}))
	r = checker.Check(ctx)
	assert.Equal(t, StatusHealthy, r.Status)
	assert.Equal(t, session.Fingerprint(token), r.Details["token"])
	assert.NotContains(t, r.Details, token)

	checker.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	r = checker.Check(ctx)
	assert.Equal(t, StatusDegraded, r.Status)
	assert.Contains(t, r.Message, "expired")
}

type brokenStore struct{ session.Store }

func (brokenStore) Get(context.Context) (session.Session, error) {
	return session.Session{}, errors.New("disk on fire")
}

func TestSessionCheckerStoreFailure(t *testing.T) {
	r := NewSessionChecker(brokenStore{}, "file").Check(context.Background())
	assert.Equal(t, StatusUnhealthy, r.Status)
	assert.Equal(t, "disk on fire", r.Details["error"])
}

func TestContractChecker(t *testing.T) {
	r := ContractChecker().Check(context.Background())
	require.Equal(t, StatusHealthy, r.Status, r.Message)
	assert.Greater(t, r.Details["endpoints"], 0)
}
