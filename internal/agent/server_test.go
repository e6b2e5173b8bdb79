package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-ticket-pos/internal/config"
	"go-ticket-pos/internal/logger"
	"go-ticket-pos/internal/printing"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryPrinter struct {
	jobs [][]byte
	err  error
}

func (p *memoryPrinter) Print(_ context.Context, data []byte) error {
	if p.err != nil {
		return p.err
	}
	p.jobs = append(p.jobs, data)
	return nil
}

type memoryDisplay struct {
	lines [][2]string
}

func (d *memoryDisplay) Show(line1, line2 string) error {
	d.lines = append(d.lines, [2]string{line1, line2})
	return nil
}

func newAgent(p printing.Printer, d Shower) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.AgentConfig{PrinterMode: config.PrinterModeFile, ReceiptWidth: 42}
	return NewServer(cfg, p, d, logger.MustGetLogger()).Router()
}

func post(r http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPrint(t *testing.T) {
	p := &memoryPrinter{}
	r := newAgent(p, nil)

	job := printing.Job{Lines: []string{"RECEIPT"}, Tickets: []printing.Ticket{{Code: "AAA111", Label: "Adult"}}}
	w := post(r, "/print", job)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Len(t, p.jobs, 1)
	assert.Equal(t, printing.Encode(job), p.jobs[0])

	w = post(r, "/print", printing.Job{})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	p.err = errors.New("paper out")
	w = post(r, "/print", job)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "paper out")
}

func TestDisplay(t *testing.T) {
	w := post(newAgent(&memoryPrinter{}, nil), "/display", gin.H{"line1": "HELLO"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	d := &memoryDisplay{}
	r := newAgent(&memoryPrinter{}, d)
	w = post(r, "/display", gin.H{"line1": "TOTAL", "line2": "270.00"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, [][2]string{{"TOTAL", "270.00"}}, d.lines)
}

func TestStatus(t *testing.T) {
	r := newAgent(&memoryPrinter{}, &memoryDisplay{})
	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, config.PrinterModeFile, body["printer_mode"])
	assert.Equal(t, true, body["display"])
	assert.NotEmpty(t, body["device_id"])
}
