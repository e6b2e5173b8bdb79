package printing

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"go-ticket-pos/internal/config"
	"go-ticket-pos/internal/database"
	"go-ticket-pos/internal/models"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial"
)

func sampleSale() *models.CashierTransaction {
	return &models.CashierTransaction{
		ReferenceNo:    "MAIN-20260101-000007",
		PaymentMethod:  models.PaymentCash,
		Status:         models.TransactionCompleted,
		GrossAmount:    decimal.RequireFromString("300"),
		DiscountAmount: decimal.RequireFromString("30"),
		NetAmount:      decimal.RequireFromString("270"),
		AmountPaid:     decimal.RequireFromString("500"),
		ChangeDue:      decimal.RequireFromString("230"),
		CreatedAt:      time.Date(2026, 1, 1, 10, 30, 0, 0, time.Local),
		User:           &models.User{Username: "cashier1"},
		Promoter:       &models.Promoter{Name: "Ana"},
		Details: []models.CashierTransactionDetail{{
			RateName:       "Adult Weekend Day Pass With Pool Access",
			Quantity:       2,
			UnitPrice:      decimal.RequireFromString("150"),
			GrossAmount:    decimal.RequireFromString("300"),
			DiscountName:   "Senior",
			DiscountAmount: decimal.RequireFromString("30"),
		}},
		Tickets: []models.CashierTicket{
			{Code: "AAA111", RateName: "Adult", Status: models.TicketValid},
			{Code: "BBB222", RateName: "Adult", Status: models.TicketUsed},
			{Code: "CCC333", RateName: "Adult", Status: models.TicketVoid},
		},
	}
}

func TestRenderReceipt(t *testing.T) {
	settings := map[string]string{
		database.SettingCompanyName:   "Sunny Resort",
		database.SettingTIN:           "123-456",
		database.SettingReceiptFooter: "Thank you!",
	}

	lines := RenderReceipt(settings, sampleSale(), 32)
	text := strings.Join(lines, "\n")

	for _, l := range lines {
		assert.LessOrEqual(t, utf8.RuneCountInString(l), 32, l)
	}
	assert.Equal(t, "Sunny Resort", strings.TrimSpace(lines[0]))
	assert.Contains(t, text, "TIN 123-456")
	assert.Contains(t, text, "MAIN-20260101-000007")
	assert.Contains(t, text, "cashier1")
	assert.Contains(t, text, "Ana")
	assert.Contains(t, text, "2 x 150.00")
	assert.Contains(t, text, "-30.00")
	assert.Contains(t, text, "Paid (CASH)")
	assert.Contains(t, text, "Thank you!")
	assert.NotContains(t, text, "VOIDED")

	total := ""
	for _, l := range lines {
		if strings.HasPrefix(l, "TOTAL") {
			total = l
		}
	}
	assert.Equal(t, "TOTAL"+strings.Repeat(" ", 32-len("TOTAL")-len("270.00"))+"270.00", total)

	sale := sampleSale()
	sale.Status = models.TransactionVoided
	assert.Contains(t, strings.Join(RenderReceipt(nil, sale, 0), "\n"), "*** VOIDED ***")
}

func TestTicketsOf(t *testing.T) {
	tickets := TicketsOf(sampleSale())
	assert.Equal(t, []Ticket{{Code: "AAA111", Label: "Adult"}, {Code: "BBB222", Label: "Adult"}}, tickets)
}

func TestEncode(t *testing.T) {
	data := Encode(Job{Lines: []string{"HELLO"}, Tickets: []Ticket{{Code: "AAA111", Label: "Adult"}}})

	assert.True(t, bytes.HasPrefix(data, []byte{esc, '@'}))
	assert.Contains(t, string(data), "HELLO\n")
	// QR store command followed by the ticket code
	assert.True(t, bytes.Contains(data, append([]byte{gs, '(', 'k', 9, 0, '1', 'P', '0'}, "AAA111"...)))
	assert.Equal(t, 2, bytes.Count(data, []byte{gs, 'V', 'B', 3}))
}

func TestDisplayFrame(t *testing.T) {
	frame := DisplayFrame("TOTAL", "Café 270.00 and a very long tail")

	assert.True(t, bytes.HasPrefix(frame, []byte{0x1B, 0x40, 0x0C, 0x0B}))
	line1 := "TOTAL" + strings.Repeat(" ", DisplayColumns-5)
	assert.True(t, bytes.Contains(frame, []byte(line1)))
	idx := bytes.Index(frame, displayLine2)
	require.Positive(t, idx)
	line2 := string(frame[idx+len(displayLine2):])
	assert.Len(t, line2, DisplayColumns)
	assert.Equal(t, "Caf? 270.00 and a v", line2[:19])
}

type fakePort struct {
	bytes.Buffer
	closed bool
}

func (p *fakePort) Close() error {
	p.closed = true
	return nil
}

func TestDisplayShow(t *testing.T) {
	port := &fakePort{}
	var opened string
	var mode *serial.Mode
	d := NewDisplay("/dev/ttyUSB0", 19200)
	d.Open = func(device string, m *serial.Mode) (io.WriteCloser, error) {
		opened, mode = device, m
		return port, nil
	}

	require.NoError(t, d.Show("HELLO", "WORLD"))
	assert.Equal(t, "/dev/ttyUSB0", opened)
	assert.Equal(t, 19200, mode.BaudRate)
	assert.Equal(t, 8, mode.DataBits)
	assert.Equal(t, serial.NoParity, mode.Parity)
	assert.Equal(t, serial.OneStopBit, mode.StopBits)
	assert.Equal(t, DisplayFrame("HELLO", "WORLD"), port.Bytes())
	assert.True(t, port.closed)

	// unset baud rate falls back to 9600
	d.BaudRate = 0
	require.NoError(t, d.Show("A", "B"))
	assert.Equal(t, 9600, mode.BaudRate)

	d.Open = func(string, *serial.Mode) (io.WriteCloser, error) { return nil, errors.New("port busy") }
	err := d.Show("a", "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "port busy")

	assert.Error(t, NewDisplay("", 9600).Show("a", "b"))
}

func TestNewPrinter(t *testing.T) {
	p, err := NewPrinter(&config.AgentConfig{PrinterMode: config.PrinterModeFile, PrinterFile: "out.bin"})
	require.NoError(t, err)
	assert.IsType(t, &FilePrinter{}, p)

	p, err = NewPrinter(&config.AgentConfig{PrinterMode: config.PrinterModeNetwork, PrinterAddr: "10.0.0.5:9100"})
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.5:9100", p.(*NetworkPrinter).Addr)

	p, err = NewPrinter(&config.AgentConfig{PrinterMode: config.PrinterModeCommand, PrinterName: "epson"})
	require.NoError(t, err)
	assert.Equal(t, "epson", p.(*CommandPrinter).Name)

	_, err = NewPrinter(&config.AgentConfig{PrinterMode: "bluetooth"})
	assert.Error(t, err)
}

func TestFilePrinterAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "printer.out")
	p := &FilePrinter{Path: path}

	require.NoError(t, p.Print(context.Background(), []byte("one")))
	require.NoError(t, p.Print(context.Background(), []byte("two")))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "onetwo", string(data))
}

func TestClient(t *testing.T) {
	var got Job
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/print":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.WriteHeader(http.StatusOK)
		case "/display":
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":"No pole display configured"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL + "/")
	job := Job{Lines: []string{"a", "b"}, Tickets: []Ticket{{Code: "X1", Label: "Adult"}}}
	require.NoError(t, c.Print(context.Background(), job))
	assert.Equal(t, job, got)

	err := c.Display(context.Background(), "TOTAL", "1.00")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAgentUnavailable))
	assert.Contains(t, err.Error(), "No pole display configured")

	err = NewClient("").Print(context.Background(), job)
	assert.True(t, errors.Is(err, ErrAgentUnavailable))

	srv.Close()
	err = c.Print(context.Background(), job)
	assert.True(t, errors.Is(err, ErrAgentUnavailable))
}
