package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Legendary90/erp-zen-fix-47-sub001/internal/model"
	"github.com/Legendary90/erp-zen-fix-47-sub001/internal/store"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedAdminClients(mem *store.MemoryStore) {
	mem.Seed(store.TableClients, model.Client{
		ClientID: "CL-000001", CompanyName: "Acme", Username: "Acme", AccessStatus: true,
	})
	mem.Seed(store.TableClients, model.Client{
		ClientID: "CL-000002", CompanyName: "Globex", Username: "Globex", AccessStatus: true,
	})
}

func TestListClients(t *testing.T) {
	mem := store.NewMemoryStore()
	seedAdminClients(mem)
	h := NewAdminHandler(mem)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/clients", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h.ListClients(e.NewContext(req, rec)))
	require.Equal(t, http.StatusOK, rec.Code)

	var clients []model.Client
	decodeInto(t, rec, &clients)
	require.Len(t, clients, 2)
	assert.Equal(t, "CL-000001", clients[0].ClientID)

	// Password hashes never leave the service
	assert.NotContains(t, rec.Body.String(), "password")
}

func patchAccess(t *testing.T, h *AdminHandler, clientID, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPatch, "/api/admin/clients/"+clientID+"/access", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("clientID")
	c.SetParamValues(clientID)
	require.NoError(t, h.SetClientAccess(c))
	return rec
}

func TestSetClientAccess(t *testing.T) {
	mem := store.NewMemoryStore()
	seedAdminClients(mem)
	h := NewAdminHandler(mem)

	rec := patchAccess(t, h, "CL-000001", `{"access_status":false}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rows := mem.Rows(store.TableClients)
	var updated model.Client
	for _, row := range rows {
		client := row.(model.Client)
		if client.ClientID == "CL-000001" {
			updated = client
		}
	}
	assert.False(t, updated.AccessStatus)

	// The other tenant's gate is untouched
	for _, row := range rows {
		client := row.(model.Client)
		if client.ClientID == "CL-000002" {
			assert.True(t, client.AccessStatus)
		}
	}
}

func TestSetClientAccessUnknownClient(t *testing.T) {
	mem := store.NewMemoryStore()
	h := NewAdminHandler(mem)

	rec := patchAccess(t, h, "CL-999999", `{"access_status":false}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSetClientAccessValidation(t *testing.T) {
	mem := store.NewMemoryStore()
	seedAdminClients(mem)
	h := NewAdminHandler(mem)

	rec := patchAccess(t, h, "CL-000001", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
