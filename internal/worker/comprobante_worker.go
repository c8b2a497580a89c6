package worker

// comprobante_worker.go
// Renders the PDF receipt of a committed sale and, when the customer left an
// email and SMTP is configured, queues the email that carries it.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"superbravo/internal/infra"
	"superbravo/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ComprobanteJobPayload is the job envelope sent to QueueComprobante.
type ComprobanteJobPayload struct {
	VentaID string `json:"venta_id"`
}

type emailEncolador interface {
	EnqueueEmail(ctx context.Context, payload EmailJobPayload) error
}

type ComprobanteWorker struct {
	ventaRepo      repository.VentaRepository
	emails         emailEncolador // nil when mail is disabled
	pdfStoragePath string
	negocio        string
	loc            *time.Location
}

// NewComprobanteWorker wires the receipt worker. Pass a nil dispatcher to
// skip emailing.
func NewComprobanteWorker(
	ventaRepo repository.VentaRepository,
	dispatcher *Dispatcher,
	pdfStoragePath string,
	negocio string,
	loc *time.Location,
) *ComprobanteWorker {
	w := &ComprobanteWorker{
		ventaRepo:      ventaRepo,
		pdfStoragePath: pdfStoragePath,
		negocio:        negocio,
		loc:            loc,
	}
	if dispatcher != nil {
		w.emails = dispatcher
	}
	return w
}

func (w *ComprobanteWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload ComprobanteJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Permanent(fmt.Errorf("comprobante_worker: invalid payload: %w", err))
	}
	ventaID, err := uuid.Parse(payload.VentaID)
	if err != nil {
		return Permanent(fmt.Errorf("comprobante_worker: invalid venta_id %q", payload.VentaID))
	}

	venta, err := w.ventaRepo.FindByID(ctx, ventaID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// deleted before the job ran
		return Permanent(fmt.Errorf("comprobante_worker: venta %s not found", ventaID))
	}
	if err != nil {
		return fmt.Errorf("comprobante_worker: load venta: %w", err)
	}

	pdfPath, err := infra.GenerateComprobantePDF(venta, w.negocio, w.loc, w.pdfStoragePath)
	if err != nil {
		return err
	}
	log.Info().Str("pdf", pdfPath).Str("codigo", venta.CodigoFactura).Msg("comprobante_worker: PDF generated")

	if w.emails == nil || venta.ClienteEmail == nil || *venta.ClienteEmail == "" {
		return nil
	}
	emailJob := EmailJobPayload{
		ToEmail: *venta.ClienteEmail,
		Subject: fmt.Sprintf("Comprobante %s — Factura %s", w.negocio, venta.CodigoFactura),
		Body:    fmt.Sprintf("Adjunto encontrará su comprobante de compra.\nTotal: $%s", venta.PrecioTotal.StringFixed(2)),
		PDFPath: pdfPath,
	}
	if err := w.emails.EnqueueEmail(ctx, emailJob); err != nil {
		// The PDF exists; a retry would only render it again.
		log.Warn().Err(err).Str("codigo", venta.CodigoFactura).Msg("comprobante_worker: failed to enqueue email")
	}
	return nil
}
