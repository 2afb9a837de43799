package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
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
		Metrics: config.MetricsConfig{Prefix: "erp_handler_test"},
	})
	os.Exit(m.Run())
}

type authFixture struct {
	mem     *store.MemoryStore
	handler *AuthHandler
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	states, err := statestore.Open(filepath.Join(t.TempDir(), "session_state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { states.Close() })

	mem := store.NewMemoryStore()
	hash, err := bcrypt.GenerateFromPassword([]byte("rightpass"), bcrypt.MinCost)
	require.NoError(t, err)
	mem.Seed(store.TableClients, model.Client{
		ClientID:     "CL-000001",
		CompanyName:  "Acme",
		Username:     "Acme",
		Password:     string(hash),
		AccessStatus: true,
	})
	mem.Seed(store.TableAdmins, model.Admin{Username: "root", Password: string(hash)})

	feed := notify.NewFeed(10, zap.NewNop())
	verifier := credential.NewVerifier(mem, zap.NewNop())
	sessions := session.New(verifier, states, feed, zap.NewNop())
	sessions.Restore()

	return &authFixture{mem: mem, handler: NewAuthHandler(sessions, feed)}
}

func postJSON(t *testing.T, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestClientLoginEndpoint(t *testing.T) {
	f := newAuthFixture(t)

	c, rec := postJSON(t, "/auth/client/login", `{"username":"Acme","password":"rightpass"}`)
	require.NoError(t, f.handler.ClientLogin(c))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "CL-000001", body["client_id"])
	assert.True(t, strings.HasPrefix(body["session"].(string), "client_"))
}

func TestClientLoginEndpointRejected(t *testing.T) {
	f := newAuthFixture(t)

	c, rec := postJSON(t, "/auth/client/login", `{"username":"Acme","password":"wrong"}`)
	require.NoError(t, f.handler.ClientLogin(c))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, credential.ErrCredentialRejected.Error(), body["error"])
}

func TestClientLoginEndpointValidation(t *testing.T) {
	f := newAuthFixture(t)

	c, rec := postJSON(t, "/auth/client/login", `{"username":"Acme"}`)
	require.NoError(t, f.handler.ClientLogin(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClientRegisterEndpoint(t *testing.T) {
	f := newAuthFixture(t)

	c, rec := postJSON(t, "/auth/client/register", `{"company_name":"Initech","password":"hunter2"}`)
	require.NoError(t, f.handler.ClientRegister(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	// Same name again fails
	c, rec = postJSON(t, "/auth/client/register", `{"company_name":"Initech","password":"other"}`)
	require.NoError(t, f.handler.ClientRegister(c))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestAdminLoginEndpoint(t *testing.T) {
	f := newAuthFixture(t)

	c, rec := postJSON(t, "/auth/admin/login", `{"username":"root","password":"rightpass"}`)
	require.NoError(t, f.handler.AdminLogin(c))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "root", body["admin_id"])
	assert.True(t, strings.HasPrefix(body["session"].(string), "admin_"))
}

func TestLogoutEndpoint(t *testing.T) {
	f := newAuthFixture(t)

	c, rec := postJSON(t, "/auth/client/login", `{"username":"Acme","password":"rightpass"}`)
	require.NoError(t, f.handler.ClientLogin(c))
	require.Equal(t, http.StatusOK, rec.Code)

	c, rec = postJSON(t, "/auth/logout", `{"kinds":["client"]}`)
	require.NoError(t, f.handler.Logout(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	// Logging out again is still a 200
	c, rec = postJSON(t, "/auth/logout", `{}`)
	require.NoError(t, f.handler.Logout(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	c, rec = postJSON(t, "/auth/logout", `{"kinds":["browser"]}`)
	require.NoError(t, f.handler.Logout(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionInfoEndpoint(t *testing.T) {
	f := newAuthFixture(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/auth/session", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, f.handler.SessionInfo(e.NewContext(req, rec)))

	body := decode(t, rec)
	assert.Equal(t, false, body["loading"])
	assert.Equal(t, false, body["client"])
	assert.Equal(t, false, body["admin"])

	c, loginRec := postJSON(t, "/auth/client/login", `{"username":"Acme","password":"rightpass"}`)
	require.NoError(t, f.handler.ClientLogin(c))
	require.Equal(t, http.StatusOK, loginRec.Code)

	rec = httptest.NewRecorder()
	require.NoError(t, f.handler.SessionInfo(e.NewContext(req, rec)))
	body = decode(t, rec)
	assert.Equal(t, true, body["client"])
	assert.Equal(t, "CL-000001", body["client_id"])
	assert.Equal(t, "Acme", body["company_name"])
}

func TestNotificationsEndpoint(t *testing.T) {
	f := newAuthFixture(t)

	c, rec := postJSON(t, "/auth/client/login", `{"username":"Acme","password":"wrong"}`)
	require.NoError(t, f.handler.ClientLogin(c))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/auth/notifications", nil)
	rec = httptest.NewRecorder()
	require.NoError(t, f.handler.Notifications(e.NewContext(req, rec)))

	body := decode(t, rec)
	notifications := body["notifications"].([]any)
	require.Len(t, notifications, 1)
	first := notifications[0].(map[string]any)
	assert.Equal(t, "error", first["severity"])
}
