package handlers

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"go-ticket-pos/internal/models"
	"go-ticket-pos/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/skip2/go-qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserManagement(t *testing.T) {
	s := newTestServer(t)
	adminUser, admin := s.user("admin1", models.RoleAdmin)

	w := s.do(http.MethodPost, "/api/user-management/users", admin, gin.H{
		"username": "cashier9", "name": "Cashier Nine", "password": "password123", "role_id": models.RoleCashier,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)
	id := idOf(t, created)
	assert.Equal(t, "active", created["status"])

	errs := validationErrors(t, s.do(http.MethodPost, "/api/user-management/users", admin, gin.H{
		"username": "cashier9", "name": "Again", "password": "password123", "role_id": models.RoleCashier,
	}))
	assert.Contains(t, errs, "username")

	errs = validationErrors(t, s.do(http.MethodPost, "/api/user-management/users", admin, gin.H{
		"username": "boss", "name": "Boss", "password": "password123", "role_id": models.RoleSuperAdmin,
	}))
	assert.Contains(t, errs, "role_id")

	errs = validationErrors(t, s.do(http.MethodPost, "/api/user-management/users", admin, gin.H{
		"username": " ", "name": "", "password": "short", "role_id": 0, "email": "nope",
	}))
	for _, field := range []string{"username", "name", "password", "role_id", "email"} {
		assert.Contains(t, errs, field)
	}

	w = s.do(http.MethodGet, "/api/user-management/users?role_id=4&search=nine", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode(t, w)
	data := page["data"].([]interface{})
	require.Len(t, data, 1)
	assert.Equal(t, "cashier9", data[0].(map[string]interface{})["username"])
	assert.EqualValues(t, 1, page["meta"].(map[string]interface{})["total"])

	w = s.do(http.MethodDelete, fmt.Sprintf("/api/user-management/users/%d", adminUser.ID), admin, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodDelete, fmt.Sprintf("/api/user-management/users/%d", id), admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, fmt.Sprintf("/api/user-management/users/%d", id), admin, nil).Code)

	w = s.do(http.MethodGet, "/api/user-management/users?only_trashed=true", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["data"], 1)

	w = s.do(http.MethodPost, fmt.Sprintf("/api/user-management/users/%d/restore", id), admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, fmt.Sprintf("/api/user-management/users/%d", id), admin, nil).Code)

	errs = validationErrors(t, s.do(http.MethodPut, fmt.Sprintf("/api/user-management/users/%d/password", id), admin, gin.H{
		"password": "newpassword1", "password_confirmation": "different1",
	}))
	assert.Contains(t, errs, "password_confirmation")

	w = s.do(http.MethodPut, fmt.Sprintf("/api/user-management/users/%d/password", id), admin, gin.H{
		"password": "newpassword1", "password_confirmation": "newpassword1",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/api/auth/login", "", gin.H{"tenant_code": "MAIN", "username": "cashier9", "password": "newpassword1"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRolesAndPermissions(t *testing.T) {
	s := newTestServer(t)
	root := testutil.Token(t, testutil.Admin(t, s.db, s.tenant.ID))

	w := s.do(http.MethodPost, "/api/user-management/roles", root, gin.H{"name": "Gatekeeper", "description": "Scans tickets"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	roleID := idOf(t, decode(t, w))

	var tickets, cashier models.Navigation
	require.NoError(t, s.db.Where("slug = ?", "tickets").First(&tickets).Error)
	require.NoError(t, s.db.Where("slug = ?", "cashier").First(&cashier).Error)

	w = s.do(http.MethodPut, fmt.Sprintf("/api/user-management/roles/%d/permissions", roleID), root, gin.H{
		"permissions": []gin.H{{"navigation_id": 99999, "can_view": true}},
	})
	assert.Contains(t, validationErrors(t, w), "permissions")

	w = s.do(http.MethodPut, fmt.Sprintf("/api/user-management/roles/%d/permissions", roleID), root, gin.H{
		"permissions": []gin.H{{"navigation_id": tickets.ID, "can_view": true, "can_update": true}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, fmt.Sprintf("/api/user-management/roles/%d/routes", roleID), root, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"cashier"`, "ancestor of a permitted node is included")
	assert.Contains(t, w.Body.String(), `"tickets"`)
	assert.NotContains(t, w.Body.String(), `"pos"`)

	gate := testutil.CreateUser(t, s.db, s.tenant.ID, "gate1", roleID)
	gateToken := testutil.Token(t, gate)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/cashier/catalog", gateToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/cashier/tickets/NOPE", gateToken, nil).Code)

	assert.Equal(t, http.StatusConflict, s.do(http.MethodDelete, fmt.Sprintf("/api/user-management/roles/%d", roleID), root, nil).Code)
	assert.Equal(t, http.StatusConflict, s.do(http.MethodDelete, fmt.Sprintf("/api/user-management/roles/%d", models.RoleCashier), root, nil).Code)
	assert.Equal(t, http.StatusConflict, s.do(http.MethodPut, fmt.Sprintf("/api/user-management/roles/%d/permissions", models.RoleSuperAdmin), root, gin.H{"permissions": []gin.H{}}).Code)
}

func TestNavigationTree(t *testing.T) {
	s := newTestServer(t)
	root := testutil.Token(t, testutil.Admin(t, s.db, s.tenant.ID))

	var reports models.Navigation
	require.NoError(t, s.db.Where("slug = ?", "reports").First(&reports).Error)

	w := s.do(http.MethodPost, "/api/user-management/navigations", root, gin.H{
		"parent_id": reports.ID, "name": "Tickets Report", "slug": "tickets-report", "path": "/reports/tickets",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	childID := idOf(t, decode(t, w))

	errs := validationErrors(t, s.do(http.MethodPut, fmt.Sprintf("/api/user-management/navigations/%d", reports.ID), root, gin.H{
		"parent_id": childID, "name": "Reports", "slug": "reports",
	}))
	assert.Contains(t, errs, "parent_id")

	errs = validationErrors(t, s.do(http.MethodPost, "/api/user-management/navigations", root, gin.H{
		"parent_id": 99999, "name": "Orphan", "slug": "orphan",
	}))
	assert.Contains(t, errs, "parent_id")

	assert.Equal(t, http.StatusConflict, s.do(http.MethodDelete, fmt.Sprintf("/api/user-management/navigations/%d", reports.ID), root, nil).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodDelete, fmt.Sprintf("/api/user-management/navigations/%d", childID), root, nil).Code)

	w = s.do(http.MethodGet, "/api/user-management/navigations/flat", root, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "tickets-report")
}

func upload(t *testing.T, s *testServer, token, name string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("alt_text", "  banner  "))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/content-management/media", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestMediaLibrary(t *testing.T) {
	s := newTestServer(t)
	_, admin := s.user("admin1", models.RoleAdmin)

	png, err := qrcode.Encode("media", qrcode.Low, 64)
	require.NoError(t, err)

	w := upload(t, s, admin, "banner.bin", png)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	media := decode(t, w)
	id := idOf(t, media)
	assert.Equal(t, "image/png", media["mime_type"])
	assert.Equal(t, "banner", media["alt_text"])
	assert.Regexp(t, fmt.Sprintf(`^http://localhost:8080/uploads/%d/[0-9a-f-]{36}\.png$`, s.tenant.ID), media["url"])

	var stored models.MediaLibrary
	require.NoError(t, s.db.First(&stored, id).Error)
	_, err = os.Stat(stored.Path)
	require.NoError(t, err)

	errs := validationErrors(t, upload(t, s, admin, "notes.png", []byte("just some text, not an image")))
	assert.Contains(t, errs, "file")

	w = s.do(http.MethodGet, "/api/content-management/media?type=image/", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["data"], 1)

	w = s.do(http.MethodPut, fmt.Sprintf("/api/content-management/media/%d", id), admin, gin.H{"alt_text": "hero"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hero", decode(t, w)["alt_text"])

	w = s.do(http.MethodDelete, fmt.Sprintf("/api/content-management/media/%d/force", id), admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	_, err = os.Stat(stored.Path)
	assert.True(t, os.IsNotExist(err))
}

func TestRatesAndDiscounts(t *testing.T) {
	s := newTestServer(t)
	_, admin := s.user("admin1", models.RoleAdmin)

	w := s.do(http.MethodPost, "/api/rate-management/rates", admin, gin.H{"name": "Adult", "price": 150.456})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	rate := decode(t, w)
	id := idOf(t, rate)
	assert.True(t, decimal.RequireFromString("150.46").Equal(amount(t, rate["price"])))
	assert.Equal(t, models.StatusActive, rate["status"])

	errs := validationErrors(t, s.do(http.MethodPost, "/api/rate-management/rates", admin, gin.H{"name": "", "price": -1}))
	assert.Contains(t, errs, "name")
	assert.Contains(t, errs, "price")

	errs = validationErrors(t, s.do(http.MethodPost, "/api/rate-management/rates", admin, gin.H{"name": "Free"}))
	assert.Contains(t, errs, "price")

	w = s.do(http.MethodPut, fmt.Sprintf("/api/rate-management/rates/%d", id), admin, gin.H{"name": "Adult", "price": 175, "status": "inactive"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.StatusInactive, decode(t, w)["status"])

	require.Equal(t, http.StatusOK, s.do(http.MethodDelete, fmt.Sprintf("/api/rate-management/rates/%d", id), admin, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, fmt.Sprintf("/api/rate-management/rates/%d", id), admin, nil).Code)
	w = s.do(http.MethodPost, fmt.Sprintf("/api/rate-management/rates/%d/restore", id), admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	restored := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(id), restored["id"])
	assert.Equal(t, "Adult", restored["name"])
	assert.Nil(t, restored["deleted_at"])
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, fmt.Sprintf("/api/rate-management/rates/%d", id), admin, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPost, fmt.Sprintf("/api/rate-management/rates/%d/restore", id), admin, nil).Code)

	errs = validationErrors(t, s.do(http.MethodPost, "/api/rate-management/discounts", admin, gin.H{"name": "Too much", "type": "percentage", "value": 120}))
	assert.Contains(t, errs, "value")

	errs = validationErrors(t, s.do(http.MethodPost, "/api/rate-management/discounts", admin, gin.H{"name": "Odd", "type": "bogus", "value": 5}))
	assert.Contains(t, errs, "type")

	w = s.do(http.MethodPost, "/api/rate-management/discounts", admin, gin.H{"name": "Senior", "type": "percentage", "value": 20, "requires_vip": false})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var audits int64
	s.db.Model(&models.AuditTrail{}).Where("module = ? AND entity = ?", "rate-management", "rate").Count(&audits)
	assert.Equal(t, int64(4), audits, "create, update, delete and restore are audited")
}

func TestPromoterSchedules(t *testing.T) {
	s := newTestServer(t)
	_, admin := s.user("admin1", models.RoleAdmin)
	today := time.Now().Format(models.DateLayout)

	anna := testutil.CreatePromoter(t, s.db, s.tenant.ID, "Anna")
	ben := testutil.CreatePromoter(t, s.db, s.tenant.ID, "Ben")
	idle := testutil.CreatePromoter(t, s.db, s.tenant.ID, "Idle")
	require.NoError(t, s.db.Model(idle).Update("status", models.StatusInactive).Error)

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/promoter-management/schedules/today", admin, nil).Code)

	w := s.do(http.MethodPost, "/api/promoter-management/schedules", admin, gin.H{"promoter_id": anna.ID, "date": today})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = s.do(http.MethodPost, "/api/promoter-management/schedules", admin, gin.H{"promoter_id": ben.ID, "date": today, "notes": "swap"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var count int64
	s.db.Model(&models.PromoterSchedule{}).Where("tenant_id = ? AND schedule_date = ?", s.tenant.ID, today).Count(&count)
	assert.Equal(t, int64(1), count, "re-assigning replaces the promoter of the day")

	w = s.do(http.MethodGet, "/api/promoter-management/schedules/today", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Ben", decode(t, w)["promoter"].(map[string]interface{})["name"])

	errs := validationErrors(t, s.do(http.MethodPost, "/api/promoter-management/schedules", admin, gin.H{"promoter_id": idle.ID, "date": today}))
	assert.Contains(t, errs, "promoter_id")

	errs = validationErrors(t, s.do(http.MethodPost, "/api/promoter-management/schedules", admin, gin.H{"promoter_id": anna.ID, "date": "31/12/2026"}))
	assert.Contains(t, errs, "date")

	w = s.do(http.MethodGet, "/api/promoter-management/schedules?from="+today+"&to="+today, admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["data"], 1)

	assert.Equal(t, http.StatusUnprocessableEntity, s.do(http.MethodGet, "/api/promoter-management/schedules?from=2026-02-01&to=2026-01-01", admin, nil).Code)
}

func TestVIPCards(t *testing.T) {
	s := newTestServer(t)
	_, admin := s.user("admin1", models.RoleAdmin)
	now := time.Now().UTC()

	w := s.do(http.MethodPost, "/api/vip-management/vips", admin, gin.H{
		"card_number": "VIP-001", "name": "Gold Member",
		"valid_from": now.AddDate(0, -1, 0), "valid_until": now.AddDate(1, 0, 0),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	errs := validationErrors(t, s.do(http.MethodPost, "/api/vip-management/vips", admin, gin.H{
		"card_number": "VIP-001", "name": "Copy",
		"valid_from": now, "valid_until": now.AddDate(1, 0, 0),
	}))
	assert.Contains(t, errs, "card_number")

	errs = validationErrors(t, s.do(http.MethodPost, "/api/vip-management/vips", admin, gin.H{
		"card_number": "VIP-002", "name": "Backwards",
		"valid_from": now, "valid_until": now.AddDate(-1, 0, 0),
	}))
	assert.Contains(t, errs, "valid_until")

	w = s.do(http.MethodGet, "/api/vip-management/vips/card/VIP-001", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["valid"])

	w = s.do(http.MethodGet, "/api/vip-management/vips/card/NOPE", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["valid"])
	assert.NotEmpty(t, body["reason"])
}

func TestUpdateKeepsStatus(t *testing.T) {
	s := newTestServer(t)
	_, admin := s.user("admin1", models.RoleAdmin)
	now := time.Now().UTC()

	rate := testutil.CreateRate(t, s.db, s.tenant.ID, "Adult", "150")
	discount := testutil.CreateDiscount(t, s.db, s.tenant.ID, "Members", "percentage", "10", true)
	promoter := testutil.CreatePromoter(t, s.db, s.tenant.ID, "Anna")
	vip := testutil.CreateVIP(t, s.db, s.tenant.ID, "VIP-900")
	require.NoError(t, s.db.Model(rate).Update("status", models.StatusInactive).Error)
	require.NoError(t, s.db.Model(discount).Update("status", models.StatusInactive).Error)
	require.NoError(t, s.db.Model(promoter).Update("status", models.StatusInactive).Error)
	require.NoError(t, s.db.Model(vip).Update("status", models.VIPRevoked).Error)

	tests := []struct {
		name string
		path string
		body gin.H
		want string
	}{
		{"rate", fmt.Sprintf("/api/rate-management/rates/%d", rate.ID), gin.H{"name": "Adult Day", "price": 160}, models.StatusInactive},
		{"discount", fmt.Sprintf("/api/rate-management/discounts/%d", discount.ID), gin.H{"name": "Members+", "type": "percentage", "value": 15}, models.StatusInactive},
		{"promoter", fmt.Sprintf("/api/promoter-management/promoters/%d", promoter.ID), gin.H{"name": "Anna B"}, models.StatusInactive},
		{"vip", fmt.Sprintf("/api/vip-management/vips/%d", vip.ID), gin.H{
			"card_number": "VIP-900", "name": "Renamed",
			"valid_from": now.AddDate(0, -1, 0), "valid_until": now.AddDate(1, 0, 0),
		}, models.VIPRevoked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(http.MethodPut, tt.path, admin, tt.body)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			assert.Equal(t, tt.want, decode(t, w)["status"])
		})
	}

	w := s.do(http.MethodGet, "/api/vip-management/vips/card/VIP-900", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["valid"])

	w = s.do(http.MethodPut, fmt.Sprintf("/api/rate-management/rates/%d", rate.ID), admin, gin.H{"name": "Adult Day", "price": 160, "status": "active"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.StatusActive, decode(t, w)["status"])
}

func TestTenantIsolation(t *testing.T) {
	s := newTestServer(t)
	_, admin := s.user("admin1", models.RoleAdmin)

	east := testutil.CreateTenant(t, s.db, "EAST")
	foreign := testutil.CreateRate(t, s.db, east.ID, "East Adult", "99.00")
	testutil.CreateRate(t, s.db, s.tenant.ID, "Main Adult", "150.00")

	path := fmt.Sprintf("/api/rate-management/rates/%d", foreign.ID)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, path, admin, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPut, path, admin, gin.H{"name": "Hijack", "price": 1}).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, path, admin, nil).Code)

	w := s.do(http.MethodGet, "/api/rate-management/rates", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "East Adult")
	assert.Contains(t, w.Body.String(), "Main Adult")

	var untouched models.Rate
	require.NoError(t, s.db.First(&untouched, foreign.ID).Error)
	assert.Equal(t, "East Adult", untouched.Name)
}

func TestTenants(t *testing.T) {
	s := newTestServer(t)
	root := testutil.Token(t, testutil.Admin(t, s.db, s.tenant.ID))

	w := s.do(http.MethodPost, "/api/system-settings/tenants", root, gin.H{"code": "north", "name": "North Branch"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	tenant := decode(t, w)
	assert.Equal(t, "NORTH", tenant["code"])
	assert.Equal(t, true, tenant["active"])

	var settings int64
	s.db.Model(&models.SystemSetting{}).Where("tenant_id = ?", idOf(t, tenant)).Count(&settings)
	assert.Positive(t, settings)

	assert.Contains(t, validationErrors(t, s.do(http.MethodPost, "/api/system-settings/tenants", root, gin.H{"code": "NORTH", "name": "Dup"})), "code")

	w = s.do(http.MethodPut, fmt.Sprintf("/api/system-settings/tenants/%d", idOf(t, tenant)), root, gin.H{"code": "NORTH", "name": "North", "active": false})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["active"])

	w = s.do(http.MethodGet, "/api/system-settings/tenants", root, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["data"], 2)
}

func TestRemovedAccountsLoseAccess(t *testing.T) {
	s := newTestServer(t)
	admin := testutil.Token(t, testutil.Admin(t, s.db, s.tenant.ID))
	gone, goneToken := s.user("admin1", models.RoleAdmin)
	idle, idleToken := s.user("admin2", models.RoleAdmin)

	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/user-management/users", goneToken, nil).Code)
	require.Equal(t, http.StatusOK, s.do(http.MethodDelete, fmt.Sprintf("/api/user-management/users/%d", gone.ID), admin, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/user-management/users", goneToken, nil).Code)

	w := s.do(http.MethodPut, fmt.Sprintf("/api/user-management/users/%d", idle.ID), admin, gin.H{
		"username": "admin2", "name": "Admin Two", "role_id": models.RoleAdmin, "status": "inactive",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/user-management/users", idleToken, nil).Code)
}
