package worker

// ticket_worker.go
// Processes ticket jobs from QueueTickets: renders the sale PDF to disk and,
// when the customer left an email, enqueues the email job.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"tiendapos/internal/infra"
	"tiendapos/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// TicketJobPayload is the job envelope sent to QueueTickets.
type TicketJobPayload struct {
	VentaID      string `json:"venta_id"`
	ClienteEmail string `json:"cliente_email,omitempty"`
}

// VentaFinder is the slice of repository.VentaRepository the worker needs.
type VentaFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error)
}

// EmailEnqueuer is satisfied by *Dispatcher.
type EmailEnqueuer interface {
	EnqueueEmail(ctx context.Context, payload EmailJobPayload) error
}

type TicketWorker struct {
	ventas         VentaFinder
	emails         EmailEnqueuer
	negocio        string
	pdfStoragePath string
}

func NewTicketWorker(ventas VentaFinder, emails EmailEnqueuer, negocio, pdfStoragePath string) *TicketWorker {
	return &TicketWorker{ventas: ventas, emails: emails, negocio: negocio, pdfStoragePath: pdfStoragePath}
}

func (w *TicketWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload TicketJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Permanent(fmt.Errorf("ticket_worker: payload inválido: %w", err))
	}
	ventaID, err := uuid.Parse(payload.VentaID)
	if err != nil {
		return Permanent(fmt.Errorf("ticket_worker: venta_id inválido %q", payload.VentaID))
	}

	venta, err := w.ventas.FindByID(ctx, ventaID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Permanent(fmt.Errorf("ticket_worker: venta %s no existe", payload.VentaID))
		}
		return err
	}

	pdfPath, err := infra.GenerateTicketPDF(venta, w.negocio, w.pdfStoragePath)
	if err != nil {
		return err
	}
	log.Info().Str("pdf", pdfPath).Str("venta", venta.NumeroVenta).Msg("ticket_worker: PDF generado")

	if payload.ClienteEmail == "" || w.emails == nil {
		return nil
	}
	job := EmailJobPayload{
		ToEmail: payload.ClienteEmail,
		Subject: fmt.Sprintf("%s - Ticket %s", w.negocio, venta.NumeroVenta),
		Body:    fmt.Sprintf("Gracias por su compra.\nTotal: $%s", venta.Total.StringFixed(2)),
		PDFPath: pdfPath,
	}
	if err := w.emails.EnqueueEmail(ctx, job); err != nil {
		// The PDF is on disk; do not regenerate it just to retry the enqueue.
		log.Warn().Err(err).Str("email", payload.ClienteEmail).Msg("ticket_worker: failed to enqueue email")
	}
	return nil
}
