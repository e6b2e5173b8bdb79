// Package ai runs the reporting assistant: a Gemini chat that answers questions about the
// tenant's rates, sales and promoters through function calls.
package ai

import (
	"context"
	"fmt"
	"time"

	"go-ticket-pos/internal/database"
	"go-ticket-pos/internal/models"

	"github.com/google/generative-ai-go/genai"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"google.golang.org/api/option"
	"gorm.io/gorm"
)

// ModelName is the Gemini model the assistant talks to.
const ModelName = "gemini-2.0-flash-001"

// maxToolRounds bounds how many function calls one question may trigger.
const maxToolRounds = 5

// PriceChange is reported to OnPriceChange after update_rate_price succeeds.
type PriceChange struct {
	Rate     models.Rate
	OldPrice decimal.Decimal
}

// Agent answers questions for one tenant.
type Agent struct {
	DB            *gorm.DB
	TenantID      uint
	Now           func() time.Time
	OnPriceChange func(PriceChange)
}

// NewAgent returns an agent bound to the tenant.
func NewAgent(db *gorm.DB, tenantID uint) *Agent {
	return &Agent{DB: db, TenantID: tenantID, Now: time.Now}
}

var tools = []*genai.Tool{{
	FunctionDeclarations: []*genai.FunctionDeclaration{
		{
			Name:        "list_rates",
			Description: "List every active rate (ticket price) with its ID, name and price. Use it to find a rate ID by name.",
		},
		{
			Name:        "update_rate_price",
			Description: "Change the price of one rate using its ID.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"rate_id":   {Type: genai.TypeInteger, Description: "ID of the rate"},
					"new_price": {Type: genai.TypeNumber, Description: "New price"},
				},
				Required: []string{"rate_id", "new_price"},
			},
		},
		{
			Name:        "get_sales_report",
			Description: "Get sales totals, tickets sold and the per-rate breakdown for a business date range.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"start_date": {Type: genai.TypeString, Description: "Start date (YYYY-MM-DD)"},
					"end_date":   {Type: genai.TypeString, Description: "End date (YYYY-MM-DD)"},
				},
				Required: []string{"start_date", "end_date"},
			},
		},
		{
			Name:        "get_promoter_of_the_day",
			Description: "Get the promoter scheduled on a date.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"date": {Type: genai.TypeString, Description: "Date (YYYY-MM-DD), today when omitted"},
				},
			},
		},
	},
}}

func (a *Agent) systemPrompt(message string) string {
	return fmt.Sprintf(`SYSTEM: Today is %s. You are the reporting assistant of a ticketing point of sale.

RULES:
1. UPDATE: If the user asks to change a rate by NAME, do NOT ask for the ID. Call 'list_rates' to find it, then 'update_rate_price'.
2. READ: For prices of rates, call 'list_rates' and answer from its result.
3. SALES: For sales, revenue, tickets or discounts, call 'get_sales_report'. Amounts are in the local currency.
4. PROMOTERS: For who is promoting on a day, call 'get_promoter_of_the_day'.

USER: %s`, a.Now().Format(models.DateLayout), message)
}

// Ask sends the question to Gemini and resolves its function calls until it answers in text.
func (a *Agent) Ask(ctx context.Context, apiKey, message string) (string, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return "", errors.Wrap(err, "create gemini client")
	}
	defer client.Close()

	model := client.GenerativeModel(ModelName)
	model.Tools = tools
	session := model.StartChat()

	resp, err := session.SendMessage(ctx, genai.Text(a.systemPrompt(message)))
	if err != nil {
		return "", errors.Wrap(err, "send message")
	}

	for round := 0; round < maxToolRounds; round++ {
		calls := functionCalls(resp)
		if len(calls) == 0 {
			break
		}
		parts := make([]genai.Part, 0, len(calls))
		for _, call := range calls {
			parts = append(parts, genai.FunctionResponse{Name: call.Name, Response: a.callTool(ctx, call.Name, call.Args)})
		}
		if resp, err = session.SendMessage(ctx, parts...); err != nil {
			return "", errors.Wrap(err, "send tool response")
		}
	}
	return replyText(resp), nil
}

func functionCalls(resp *genai.GenerateContentResponse) []genai.FunctionCall {
	var calls []genai.FunctionCall
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if call, ok := part.(genai.FunctionCall); ok {
			calls = append(calls, call)
		}
	}
	return calls
}

func replyText(resp *genai.GenerateContentResponse) string {
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				return string(txt)
			}
		}
	}
	return "I completed the action."
}

// callTool runs one function call against the tenant's data. Failures are reported back to
// the model as {"error": ...} so it can explain them.
func (a *Agent) callTool(ctx context.Context, name string, args map[string]any) map[string]any {
	db := a.DB.WithContext(ctx)
	switch name {
	case "list_rates":
		var rates []models.Rate
		if err := db.Scopes(database.ForTenant(a.TenantID)).
			Where("status = ?", models.StatusActive).Order("name ASC").Find(&rates).Error; err != nil {
			return toolError("failed to list rates")
		}
		list := make([]map[string]any, 0, len(rates))
		for _, r := range rates {
			list = append(list, map[string]any{"id": r.ID, "name": r.Name, "price": r.Price.StringFixed(2)})
		}
		return map[string]any{"rates": list}

	case "update_rate_price":
		id, ok1 := args["rate_id"].(float64)
		price, ok2 := args["new_price"].(float64)
		if !ok1 || !ok2 || price < 0 {
			return toolError("rate_id and a non-negative new_price are required")
		}
		var rate models.Rate
		if err := db.Scopes(database.ForTenant(a.TenantID)).First(&rate, uint(id)).Error; err != nil {
			return toolError("rate not found")
		}
		old := rate.Price
		rate.Price = decimal.NewFromFloat(price).Round(2)
		if err := db.Model(&rate).Update("price", rate.Price).Error; err != nil {
			return toolError("failed to update price")
		}
		if a.OnPriceChange != nil {
			a.OnPriceChange(PriceChange{Rate: rate, OldPrice: old})
		}
		return map[string]any{"status": "updated", "rate": rate.Name, "old_price": old.StringFixed(2), "new_price": rate.Price.StringFixed(2)}

	case "get_sales_report":
		from, _ := args["start_date"].(string)
		to, _ := args["end_date"].(string)
		if !validDate(from) || !validDate(to) || to < from {
			return toolError("dates must be YYYY-MM-DD and end_date on or after start_date")
		}
		report, err := database.GetSalesReport(database.ReportFilter{TenantID: a.TenantID, From: from, To: to})
		if err != nil {
			return toolError("failed to calculate sales")
		}
		byRate := make([]map[string]any, 0, len(report.ByRate))
		for _, r := range report.ByRate {
			byRate = append(byRate, map[string]any{"rate": r.RateName, "quantity": r.Quantity, "net": r.Net.StringFixed(2)})
		}
		return map[string]any{
			"transactions": report.Totals.Transactions,
			"tickets":      report.Totals.Tickets,
			"gross":        report.Totals.Gross.StringFixed(2),
			"discount":     report.Totals.Discount.StringFixed(2),
			"net":          report.Totals.Net.StringFixed(2),
			"by_rate":      byRate,
		}

	case "get_promoter_of_the_day":
		date, _ := args["date"].(string)
		if date == "" {
			date = a.Now().Format(models.DateLayout)
		}
		if !validDate(date) {
			return toolError("date must be YYYY-MM-DD")
		}
		promoter, err := database.PromoterOfTheDay(db, a.TenantID, date)
		if err != nil {
			return toolError("failed to look up the schedule")
		}
		if promoter == nil {
			return map[string]any{"date": date, "promoter": nil}
		}
		return map[string]any{"date": date, "promoter": promoter.Name, "contact_number": promoter.ContactNumber}
	}
	return toolError("unknown tool " + name)
}

func toolError(msg string) map[string]any {
	return map[string]any{"error": msg}
}

func validDate(s string) bool {
	_, err := time.Parse(models.DateLayout, s)
	return err == nil
}
