package service

import (
	"context"

	"github.com/sangkips/velo-register/internal/domain/entity"
	"github.com/sangkips/velo-register/pkg/printer"
)

// Acknowledger gives the operator audible feedback for a successful scan
type Acknowledger interface {
	Acknowledge(ctx context.Context, product *entity.Product) error
}

type noopAcknowledger struct{}

func (noopAcknowledger) Acknowledge(context.Context, *entity.Product) error { return nil }

// printerAcknowledger sounds the receipt printer's buzzer
type printerAcknowledger struct {
	printer printer.Printer
}

func (a *printerAcknowledger) Acknowledge(ctx context.Context, _ *entity.Product) error {
	return a.printer.Print(ctx, printer.NewDocument().Beep(1, 2).Bytes())
}

// NewAcknowledger beeps through p, or does nothing when p is nil
func NewAcknowledger(p printer.Printer) Acknowledger {
	if p == nil {
		return noopAcknowledger{}
	}
	return &printerAcknowledger{printer: p}
}

// PrinterStatus describes the printer used for scan feedback
type PrinterStatus struct {
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Type       string `json:"type"`
}

// StatusOf reports on p, which may be nil
func StatusOf(p printer.Printer, printerType string) PrinterStatus {
	if p == nil {
		return PrinterStatus{Type: "none"}
	}
	return PrinterStatus{
		Configured: true,
		Connected:  p.IsConnected(),
		Type:       printerType,
	}
}
