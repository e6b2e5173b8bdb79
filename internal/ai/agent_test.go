package ai

import (
	"context"
	"strings"
	"testing"
	"time"

	"go-ticket-pos/internal/models"
	"go-ticket-pos/internal/testutil"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAgent(t *testing.T) (*Agent, *models.Tenant) {
	t.Helper()
	db, tenant := testutil.SetupDB(t)
	a := NewAgent(db, tenant.ID)
	a.Now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.Local) }
	return a, tenant
}

func TestListRates(t *testing.T) {
	a, tenant := testAgent(t)
	testutil.CreateRate(t, a.DB, tenant.ID, "Child", "80")
	testutil.CreateRate(t, a.DB, tenant.ID, "Adult", "150.5")
	other := testutil.CreateTenant(t, a.DB, "NORTH")
	testutil.CreateRate(t, a.DB, other.ID, "Elsewhere", "1")

	out := a.callTool(context.Background(), "list_rates", nil)
	rates := out["rates"].([]map[string]any)
	require.Len(t, rates, 2)
	assert.Equal(t, "Adult", rates[0]["name"])
	assert.Equal(t, "150.50", rates[0]["price"])
}

func TestUpdateRatePrice(t *testing.T) {
	a, tenant := testAgent(t)
	rate := testutil.CreateRate(t, a.DB, tenant.ID, "Adult", "150")
	other := testutil.CreateTenant(t, a.DB, "NORTH")
	foreign := testutil.CreateRate(t, a.DB, other.ID, "Adult", "99")

	var changes []PriceChange
	a.OnPriceChange = func(c PriceChange) { changes = append(changes, c) }

	out := a.callTool(context.Background(), "update_rate_price", map[string]any{"rate_id": float64(rate.ID), "new_price": 175.257})
	assert.Equal(t, "updated", out["status"])
	assert.Equal(t, "150.00", out["old_price"])
	assert.Equal(t, "175.26", out["new_price"])

	var stored models.Rate
	require.NoError(t, a.DB.First(&stored, rate.ID).Error)
	assert.Equal(t, "175.26", stored.Price.StringFixed(2))
	require.Len(t, changes, 1)
	assert.Equal(t, "150.00", changes[0].OldPrice.StringFixed(2))

	out = a.callTool(context.Background(), "update_rate_price", map[string]any{"rate_id": float64(foreign.ID), "new_price": 1.0})
	assert.Equal(t, "rate not found", out["error"])

	out = a.callTool(context.Background(), "update_rate_price", map[string]any{"rate_id": float64(rate.ID), "new_price": -5.0})
	assert.Contains(t, out, "error")
	out = a.callTool(context.Background(), "update_rate_price", map[string]any{"rate_id": "one"})
	assert.Contains(t, out, "error")
	assert.Len(t, changes, 1)
}

func TestGetSalesReportTool(t *testing.T) {
	a, _ := testAgent(t)

	out := a.callTool(context.Background(), "get_sales_report", map[string]any{"start_date": "2026-03-01", "end_date": "2026-03-31"})
	require.NotContains(t, out, "error")
	assert.Equal(t, int64(0), out["transactions"])
	assert.Equal(t, "0.00", out["net"])

	out = a.callTool(context.Background(), "get_sales_report", map[string]any{"start_date": "2026-03-31", "end_date": "2026-03-01"})
	assert.Contains(t, out, "error")
	out = a.callTool(context.Background(), "get_sales_report", map[string]any{"start_date": "March"})
	assert.Contains(t, out, "error")
}

func TestPromoterOfTheDayTool(t *testing.T) {
	a, tenant := testAgent(t)

	out := a.callTool(context.Background(), "get_promoter_of_the_day", map[string]any{})
	assert.Equal(t, "2026-03-01", out["date"])
	assert.Nil(t, out["promoter"])

	ana := testutil.CreatePromoter(t, a.DB, tenant.ID, "Ana")
	require.NoError(t, a.DB.Create(&models.PromoterSchedule{TenantID: tenant.ID, ScheduleDate: "2026-03-01", PromoterID: ana.ID}).Error)
	out = a.callTool(context.Background(), "get_promoter_of_the_day", nil)
	assert.Equal(t, "Ana", out["promoter"])

	out = a.callTool(context.Background(), "get_promoter_of_the_day", map[string]any{"date": "01/03/2026"})
	assert.Contains(t, out, "error")
}

func TestUnknownTool(t *testing.T) {
	a, _ := testAgent(t)
	assert.Equal(t, "unknown tool drop_tables", a.callTool(context.Background(), "drop_tables", nil)["error"])
}

func TestResponseParts(t *testing.T) {
	resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Parts: []genai.Part{
			genai.FunctionCall{Name: "list_rates"},
			genai.Text("Adult costs 150.00"),
		}},
	}}}
	calls := functionCalls(resp)
	require.Len(t, calls, 1)
	assert.Equal(t, "list_rates", calls[0].Name)
	assert.Equal(t, "Adult costs 150.00", replyText(resp))

	assert.Nil(t, functionCalls(nil))
	assert.Equal(t, "I completed the action.", replyText(&genai.GenerateContentResponse{}))
}

func TestSystemPrompt(t *testing.T) {
	a, _ := testAgent(t)
	prompt := a.systemPrompt("how much is adult?")
	assert.True(t, strings.HasPrefix(prompt, "SYSTEM: Today is 2026-03-01."))
	assert.True(t, strings.HasSuffix(prompt, "USER: how much is adult?"))
}
