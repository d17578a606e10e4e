package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Gestion-api/internal/application/ports"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
)

// Alerter registra alertas de monitoreo.
type Alerter interface {
	Raise(ctx context.Context, tenantID, severity, category, title, message string, metadata map[string]any)
}

// WorkerSettings parámetros de entrega y reintentos.
type WorkerSettings struct {
	MaxAttempts  int
	BackoffBase  time.Duration
	BackoffMax   time.Duration
	BatchSize    int
	PollInterval time.Duration
	StaleAfter   time.Duration
	SendTimeout  time.Duration
}

// BatchResult resumen de un ProcessBatch.
type BatchResult struct {
	Claimed int
	Sent    int
	Retried int
	Failed  int
}

// Worker entrega la cola de emails.
type Worker struct {
	repos    repository.Tx
	mailer   ports.Mailer
	alerts   Alerter
	metrics  ports.Metrics
	settings WorkerSettings
	log      zerolog.Logger
	now      func() time.Time
}

// NewWorker construye el worker. alerts y metrics pueden ser nil.
func NewWorker(repos repository.Tx, mailer ports.Mailer, alerts Alerter, metrics ports.Metrics, settings WorkerSettings, log zerolog.Logger) *Worker {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	if settings.MaxAttempts <= 0 {
		settings.MaxAttempts = 3
	}
	if settings.BatchSize <= 0 {
		settings.BatchSize = 20
	}
	if settings.BackoffBase <= 0 {
		settings.BackoffBase = time.Minute
	}
	if settings.BackoffMax < settings.BackoffBase {
		settings.BackoffMax = settings.BackoffBase
	}
	if settings.PollInterval <= 0 {
		settings.PollInterval = 10 * time.Second
	}
	if settings.StaleAfter <= 0 {
		settings.StaleAfter = 10 * time.Minute
	}
	if settings.SendTimeout <= 0 {
		settings.SendTimeout = 30 * time.Second
	}
	return &Worker{repos: repos, mailer: mailer, alerts: alerts, metrics: metrics, settings: settings, log: log, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (w *Worker) WithClock(now func() time.Time) *Worker {
	w.now = now
	return w
}

// Backoff espera antes del siguiente intento: base·2^(attempt-1), acotado por BackoffMax.
func (w *Worker) Backoff(attempt int) time.Duration {
	d := w.settings.BackoffBase
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= w.settings.BackoffMax {
			return w.settings.BackoffMax
		}
	}
	return d
}

// ProcessBatch reclama los emails vencidos y los intenta entregar una vez cada uno.
func (w *Worker) ProcessBatch(ctx context.Context) (BatchResult, error) {
	now := w.now()
	items, err := w.repos.EmailQueue().ClaimDue(ctx, now, now.Add(-w.settings.StaleAfter), w.settings.BatchSize)
	if err != nil {
		return BatchResult{}, fmt.Errorf("claim emails: %w", err)
	}
	res := BatchResult{Claimed: len(items)}
	for _, item := range items {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		switch w.deliver(ctx, item) {
		case ports.OutcomeSent:
			res.Sent++
		case ports.OutcomeRetry:
			res.Retried++
		case ports.OutcomeFailed:
			res.Failed++
		}
	}
	return res, nil
}

func (w *Worker) deliver(ctx context.Context, item *entity.EmailQueueItem) string {
	log := w.log.With().Str("email_id", item.ID).Str("tenant_id", item.TenantID).Int("attempt", item.Attempts).Logger()
	sendCtx, cancel := context.WithTimeout(ctx, w.settings.SendTimeout)
	sendErr := w.mailer.Send(sendCtx, ports.Message{
		To: item.ToAddress, ToName: item.ToName, Subject: item.Subject, HTML: item.BodyHTML, Text: item.BodyText,
	})
	cancel()
	now := w.now()

	outcome := ports.OutcomeSent
	var markErr error
	switch {
	case sendErr == nil:
		markErr = w.repos.EmailQueue().MarkSent(ctx, item.ID, now)
	case item.Attempts >= w.maxAttempts(item):
		outcome = ports.OutcomeFailed
		markErr = w.repos.EmailQueue().MarkFailed(ctx, item.ID, sendErr.Error(), now)
	default:
		outcome = ports.OutcomeRetry
		markErr = w.repos.EmailQueue().MarkRetry(ctx, item.ID, sendErr.Error(), now.Add(w.Backoff(item.Attempts)), now)
	}
	if markErr != nil {
		// la fila queda en processing y se vuelve a reclamar cuando pase StaleAfter
		log.Error().Err(markErr).Msg("no se pudo actualizar el estado del email")
	}
	w.appendLog(ctx, item, sendErr, now, log)
	w.metrics.EmailProcessed(outcome)

	switch outcome {
	case ports.OutcomeSent:
		log.Debug().Msg("email enviado")
	case ports.OutcomeRetry:
		log.Warn().Err(sendErr).Msg("envío fallido, se reintentará")
	case ports.OutcomeFailed:
		log.Error().Err(sendErr).Msg("envío fallido definitivamente")
		if w.alerts != nil {
			w.alerts.Raise(ctx, item.TenantID, entity.SeverityWarning, entity.CategoryCommunication,
				"Email no entregado",
				fmt.Sprintf("El email %q a %s falló tras %d intentos", item.Subject, item.ToAddress, item.Attempts),
				map[string]any{"email_id": item.ID, "error": sendErr.Error()})
		}
	}
	return outcome
}

func (w *Worker) appendLog(ctx context.Context, item *entity.EmailQueueItem, sendErr error, at time.Time, log zerolog.Logger) {
	l := &entity.EmailLog{
		ID:        uuid.New().String(),
		TenantID:  item.TenantID,
		QueueID:   item.ID,
		ToAddress: item.ToAddress,
		Subject:   item.Subject,
		Status:    entity.EmailSent,
		Attempt:   item.Attempts,
		CreatedAt: at,
	}
	if sendErr != nil {
		l.Status = entity.EmailFailed
		l.Error = sendErr.Error()
	}
	if err := w.repos.EmailQueue().AppendLog(ctx, l); err != nil {
		log.Error().Err(err).Msg("no se pudo registrar el intento de envío")
	}
}

func (w *Worker) maxAttempts(item *entity.EmailQueueItem) int {
	if item.MaxAttempts > 0 {
		return item.MaxAttempts
	}
	return w.settings.MaxAttempts
}

// Run procesa lotes cada PollInterval hasta que ctx se cancela. Un lote lleno se
// encadena con el siguiente sin esperar.
func (w *Worker) Run(ctx context.Context) error {
	w.log.Info().Dur("poll_interval", w.settings.PollInterval).Msg("worker de emails iniciado")
	ticker := time.NewTicker(w.settings.PollInterval)
	defer ticker.Stop()
	for {
		res, err := w.ProcessBatch(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			w.log.Error().Err(err).Msg("lote de emails fallido")
		}
		if err == nil && res.Claimed == w.settings.BatchSize {
			continue
		}
		select {
		case <-ctx.Done():
			w.log.Info().Msg("worker de emails detenido")
			return nil
		case <-ticker.C:
		}
	}
}
