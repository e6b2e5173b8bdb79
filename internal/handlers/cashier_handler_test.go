package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"go-ticket-pos/internal/agent"
	"go-ticket-pos/internal/config"
	"go-ticket-pos/internal/logger"
	"go-ticket-pos/internal/models"
	"go-ticket-pos/internal/printing"
	"go-ticket-pos/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCashierFlow(t *testing.T) {
	s := newTestServer(t)
	_, cashier := s.user("cashier1", models.RoleCashier)
	rate := testutil.CreateRate(t, s.db, s.tenant.ID, "Adult", "150.00")

	// no session yet
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/cashier/sessions/current", cashier, nil).Code)
	w := s.do(http.MethodPost, "/api/cashier/transactions", cashier, gin.H{
		"items": []gin.H{{"rate_id": rate.ID, "quantity": 1}}, "payment_method": "cash", "amount_paid": 150,
	})
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/api/cashier/sessions/open", cashier, gin.H{"cash_on_hand": 500})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	session := decode(t, w)
	assert.Equal(t, models.SessionOpen, session["status"])
	assert.Equal(t, http.StatusConflict, s.do(http.MethodPost, "/api/cashier/sessions/open", cashier, gin.H{"cash_on_hand": 0}).Code)

	w = s.do(http.MethodGet, "/api/cashier/catalog", cashier, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"Adult"`)

	// cash sale
	w = s.do(http.MethodPost, "/api/cashier/transactions", cashier, gin.H{
		"items": []gin.H{{"rate_id": rate.ID, "quantity": 2}}, "payment_method": "cash", "amount_paid": 400,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	sale := decode(t, w)
	assert.True(t, amount(t, sale["net_amount"]).Equal(decimal.NewFromInt(300)))
	assert.True(t, amount(t, sale["change_due"]).Equal(decimal.NewFromInt(100)))
	tickets := sale["tickets"].([]interface{})
	require.Len(t, tickets, 2)
	saleID := idOf(t, sale)
	code := tickets[0].(map[string]interface{})["code"].(string)

	w = s.do(http.MethodGet, fmt.Sprintf("/api/cashier/transactions/%d/receipt", saleID), cashier, nil)
	require.Equal(t, http.StatusOK, w.Code)
	receipt := decode(t, w)
	assert.Equal(t, sale["reference_no"], receipt["reference_no"])
	assert.Len(t, receipt["tickets"], 2)
	assert.Contains(t, w.Body.String(), "TOTAL")

	w = s.do(http.MethodGet, "/api/cashier/tickets/"+code+"/qr?size=128", cashier, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	img, err := png.Decode(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 128, img.Bounds().Dx())

	w = s.do(http.MethodPost, "/api/cashier/tickets/"+code+"/redeem", cashier, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, models.TicketUsed, decode(t, w)["status"])
	assert.Equal(t, http.StatusConflict, s.do(http.MethodPost, "/api/cashier/tickets/"+code+"/redeem", cashier, nil).Code)

	w = s.do(http.MethodPost, fmt.Sprintf("/api/cashier/transactions/%d/void", saleID), cashier, gin.H{"reason": "changed mind"})
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())

	// short payment
	w = s.do(http.MethodPost, "/api/cashier/transactions", cashier, gin.H{
		"items": []gin.H{{"rate_id": rate.ID, "quantity": 1}}, "payment_method": "cash", "amount_paid": 100,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// card sale, then void it
	w = s.do(http.MethodPost, "/api/cashier/transactions", cashier, gin.H{
		"items": []gin.H{{"rate_id": rate.ID, "quantity": 1}}, "payment_method": "card",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	cardID := idOf(t, decode(t, w))

	errs := validationErrors(t, s.do(http.MethodPost, fmt.Sprintf("/api/cashier/transactions/%d/void", cardID), cashier, gin.H{"reason": "  "}))
	assert.Contains(t, errs, "reason")
	w = s.do(http.MethodPost, fmt.Sprintf("/api/cashier/transactions/%d/void", cardID), cashier, gin.H{"reason": "wrong rate"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, models.TransactionVoided, decode(t, w)["status"])
	assert.Equal(t, http.StatusConflict, s.do(http.MethodPost, fmt.Sprintf("/api/cashier/transactions/%d/void", cardID), cashier, gin.H{"reason": "again"}).Code)

	w = s.do(http.MethodGet, "/api/cashier/transactions", cashier, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 2)

	w = s.do(http.MethodPost, "/api/cashier/sessions/close", cashier, gin.H{"closing_cash": 800, "remarks": "ok"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	closed := decode(t, w)
	assert.Equal(t, models.SessionClosed, closed["status"])
	assert.True(t, amount(t, closed["expected_cash"]).Equal(decimal.NewFromInt(800)))
	assert.True(t, amount(t, closed["variance"]).IsZero())
	assert.Equal(t, float64(1), closed["transaction_count"])
	assert.Equal(t, float64(2), closed["ticket_count"])

	var audits int64
	s.db.Model(&models.AuditTrail{}).Where("module = ?", "cashier").Count(&audits)
	// open, 2 sales, redeem, void, close
	assert.Equal(t, int64(6), audits)
}

func TestCashierVoidRules(t *testing.T) {
	s := newTestServer(t)
	_, first := s.user("cashier1", models.RoleCashier)
	_, second := s.user("cashier2", models.RoleCashier)
	_, supervisor := s.user("super1", models.RoleSupervisor)
	rate := testutil.CreateRate(t, s.db, s.tenant.ID, "Adult", "100.00")

	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/cashier/sessions/open", first, gin.H{"cash_on_hand": 0}).Code)
	w := s.do(http.MethodPost, "/api/cashier/transactions", first, gin.H{
		"items": []gin.H{{"rate_id": rate.ID, "quantity": 1}}, "payment_method": "cash", "amount_paid": 100,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	saleID := idOf(t, decode(t, w))

	path := fmt.Sprintf("/api/cashier/transactions/%d/void", saleID)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPost, path, second, gin.H{"reason": "not mine"}).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodPost, path, supervisor, gin.H{"reason": "approved"}).Code)

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPost, "/api/cashier/transactions/999/void", supervisor, gin.H{"reason": "x"}).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/cashier/tickets/UNKNOWN", first, nil).Code)
}

func TestPrintReceipt(t *testing.T) {
	s := newTestServer(t)
	admin := testutil.Token(t, testutil.Admin(t, s.db, s.tenant.ID))
	_, cashier := s.user("cashier1", models.RoleCashier)
	rate := testutil.CreateRate(t, s.db, s.tenant.ID, "Adult", "150.00")

	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/cashier/sessions/open", cashier, gin.H{"cash_on_hand": 0}).Code)
	w := s.do(http.MethodPost, "/api/cashier/transactions", cashier, gin.H{
		"items": []gin.H{{"rate_id": rate.ID, "quantity": 2}}, "payment_method": "card",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	sale := decode(t, w)
	path := fmt.Sprintf("/api/cashier/transactions/%d/print", idOf(t, sale))

	// no agent configured anywhere
	w = s.do(http.MethodPost, path, cashier, nil)
	assert.Equal(t, http.StatusBadGateway, w.Code, w.Body.String())

	out := filepath.Join(t.TempDir(), "printer.bin")
	agentCfg := &config.AgentConfig{PrinterMode: config.PrinterModeFile, PrinterFile: out, ReceiptWidth: printing.DefaultWidth}
	srv := httptest.NewServer(agent.NewServer(agentCfg, &printing.FilePrinter{Path: out}, nil, logger.MustGetLogger()).Router())
	defer srv.Close()

	w = s.do(http.MethodPut, "/api/system-settings/settings", admin, gin.H{"settings": gin.H{"printer_agent_url": srv.URL}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodPost, path, cashier, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, float64(2), decode(t, w)["tickets"])

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), sale["reference_no"].(string))
	for _, tk := range sale["tickets"].([]interface{}) {
		assert.Contains(t, string(data), tk.(map[string]interface{})["code"].(string))
	}

	// the agent has no pole display, and the tenant has the display switched off
	w = s.do(http.MethodPost, "/api/cashier/display", cashier, gin.H{"line1": "TOTAL", "line2": "300.00"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodPut, "/api/system-settings/settings", admin, gin.H{"settings": gin.H{"display_enabled": "true"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = s.do(http.MethodPost, "/api/cashier/display", cashier, gin.H{"line1": "TOTAL", "line2": "300.00"})
	assert.Equal(t, http.StatusBadGateway, w.Code, w.Body.String())
}
