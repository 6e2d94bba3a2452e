package worker

// email_worker.go
// Processes email jobs from QueueEmail: sends the PDF ticket to the customer.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"tiendapos/internal/infra"

	"github.com/rs/zerolog/log"
)

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	ToEmail string `json:"to_email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	PDFPath string `json:"pdf_path"`
}

// TicketMailer is satisfied by *infra.Mailer.
type TicketMailer interface {
	SendTicket(to, subject, body, pdfPath string) error
}

type EmailWorker struct {
	mailer TicketMailer
}

func NewEmailWorker(mailer TicketMailer) *EmailWorker {
	return &EmailWorker{mailer: mailer}
}

// Process sends an email with the PDF receipt as attachment. A disabled
// mailer drops the job; SMTP failures (including an open breaker) retry.
func (w *EmailWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Permanent(fmt.Errorf("email_worker: payload inválido: %w", err))
	}
	if payload.ToEmail == "" {
		log.Warn().Msg("email_worker: empty to_email, skipping")
		return nil
	}

	err := w.mailer.SendTicket(payload.ToEmail, payload.Subject, payload.Body, payload.PDFPath)
	if errors.Is(err, infra.ErrMailerDisabled) {
		log.Info().Str("to", payload.ToEmail).Msg("email_worker: SMTP no configurado, job descartado")
		return nil
	}
	if err != nil {
		return fmt.Errorf("email_worker: %w", err)
	}
	log.Info().Str("to", payload.ToEmail).Msg("email_worker: ticket sent")
	return nil
}
