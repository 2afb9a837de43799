package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/Legendary90/erp-zen-fix-47-sub001/internal/credential"
	"github.com/Legendary90/erp-zen-fix-47-sub001/internal/model"
	"github.com/Legendary90/erp-zen-fix-47-sub001/internal/notify"
	"github.com/Legendary90/erp-zen-fix-47-sub001/internal/session"
	"github.com/Legendary90/erp-zen-fix-47-sub001/internal/store"
	"github.com/Legendary90/erp-zen-fix-47-sub001/pkg/config"
	"github.com/Legendary90/erp-zen-fix-47-sub001/pkg/statestore"
	"github.com/Legendary90/erp-zen-fix-47-sub001/prometheus"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	prometheus.InitMetrics(&config.Config{
		Metrics: config.MetricsConfig{Prefix: "erp_test"},
	})
	os.Exit(m.Run())
}

const entryRoute = "/auth"

func newSessionStore(t *testing.T, restore bool) *session.Store {
	t.Helper()

	states, err := statestore.Open(filepath.Join(t.TempDir(), "session_state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { states.Close() })

	mem := store.NewMemoryStore()
	hash, err := bcrypt.GenerateFromPassword([]byte("pass"), bcrypt.MinCost)
	require.NoError(t, err)
	mem.Seed(store.TableClients, model.Client{
		ClientID:     "CL-000001",
		CompanyName:  "Acme",
		Username:     "Acme",
		Password:     string(hash),
		AccessStatus: true,
	})
	mem.Seed(store.TableAdmins, model.Admin{
		Username: "root",
		Password: string(hash),
	})

	verifier := credential.NewVerifier(mem, zap.NewNop())
	sessions := session.New(verifier, states, notify.NewFeed(10, zap.NewNop()), zap.NewNop())
	if restore {
		sessions.Restore()
	}
	return sessions
}

func invokeGuard(t *testing.T, sessions *session.Store, cfg GuardConfig) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/sales", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := RequireSession(sessions, entryRoute, cfg)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))
	return rec, c
}

func TestGuardWhileRestoring(t *testing.T) {
	sessions := newSessionStore(t, false)

	rec, _ := invokeGuard(t, sessions, GuardConfig{RequireClient: true})

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestGuardRedirectsWithoutClientSession(t *testing.T) {
	sessions := newSessionStore(t, true)

	rec, _ := invokeGuard(t, sessions, GuardConfig{RequireClient: true})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, entryRoute, rec.Header().Get("Location"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestGuardPassesWithClientSession(t *testing.T) {
	sessions := newSessionStore(t, true)
	require.True(t, sessions.LoginAsClient(context.Background(), "Acme", "pass"))

	rec, c := invokeGuard(t, sessions, GuardConfig{RequireClient: true})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "CL-000001", c.Get("client_id"))
}

func TestGuardAdminRequirementIgnoresClientSession(t *testing.T) {
	sessions := newSessionStore(t, true)
	require.True(t, sessions.LoginAsClient(context.Background(), "Acme", "pass"))

	rec, _ := invokeGuard(t, sessions, GuardConfig{RequireAdmin: true})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, entryRoute, rec.Header().Get("Location"))
}

func TestGuardRequiresBothKindsIndependently(t *testing.T) {
	sessions := newSessionStore(t, true)
	require.True(t, sessions.LoginAsClient(context.Background(), "Acme", "pass"))

	// Client alone is not enough when both kinds are required
	rec, _ := invokeGuard(t, sessions, GuardConfig{RequireClient: true, RequireAdmin: true})
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	require.True(t, sessions.LoginAsAdmin(context.Background(), "root", "pass"))

	rec, c := invokeGuard(t, sessions, GuardConfig{RequireClient: true, RequireAdmin: true})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "CL-000001", c.Get("client_id"))
	assert.Equal(t, "root", c.Get("admin_id"))
}
