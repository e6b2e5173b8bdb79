package printing

import (
	"bytes"
	"context"
	"net"
	"os"
	"os/exec"
	"time"

	"go-ticket-pos/internal/config"

	"github.com/pkg/errors"
)

// Printer sends a raw job to a receipt printer.
type Printer interface {
	Print(ctx context.Context, data []byte) error
}

// NewPrinter builds the printer selected by the agent configuration.
func NewPrinter(cfg *config.AgentConfig) (Printer, error) {
	switch cfg.PrinterMode {
	case config.PrinterModeCommand:
		return &CommandPrinter{Name: cfg.PrinterName}, nil
	case config.PrinterModeNetwork:
		return &NetworkPrinter{Addr: cfg.PrinterAddr, Timeout: 5 * time.Second}, nil
	case config.PrinterModeFile:
		return &FilePrinter{Path: cfg.PrinterFile}, nil
	}
	return nil, errors.Errorf("unsupported printer mode %q", cfg.PrinterMode)
}

// CommandPrinter pipes the job to the spooler as a raw job: lp -d <name> -o raw.
type CommandPrinter struct {
	Name string
}

func (p *CommandPrinter) Print(ctx context.Context, data []byte) error {
	cmd := exec.CommandContext(ctx, "lp", "-d", p.Name, "-o", "raw")
	cmd.Stdin = bytes.NewReader(data)
	if out, err := cmd.CombinedOutput(); err != nil {
		return errors.Wrapf(err, "lp: %s", bytes.TrimSpace(out))
	}
	return nil
}

// NetworkPrinter writes the job to a raw TCP port, usually 9100.
type NetworkPrinter struct {
	Addr    string
	Timeout time.Duration
}

func (p *NetworkPrinter) Print(ctx context.Context, data []byte) error {
	d := net.Dialer{Timeout: p.Timeout}
	conn, err := d.DialContext(ctx, "tcp", p.Addr)
	if err != nil {
		return errors.Wrap(err, "connect to printer")
	}
	defer conn.Close()

	if p.Timeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(p.Timeout))
	}
	_, err = conn.Write(data)
	return errors.Wrap(err, "send to printer")
}

// FilePrinter appends jobs to a file. Used in development and tests.
type FilePrinter struct {
	Path string
}

func (p *FilePrinter) Print(_ context.Context, data []byte) error {
	f, err := os.OpenFile(p.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrap(err, "open printer file")
	}
	defer f.Close()

	_, err = f.Write(data)
	return errors.Wrap(err, "write printer file")
}
