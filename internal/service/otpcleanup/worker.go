package otpcleanup

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"

	"github.com/fishgalaxy/backend/internal/domain"
)

const (
	defaultInterval  = 10 * time.Minute
	defaultBatchSize = 500
)

var (
	cleanupRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fishgalaxy_otp_cleanup_runs_total",
		Help: "OTP cleanup runs grouped by result.",
	}, []string{"result"})
	cleanupDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fishgalaxy_otp_cleanup_deleted_total",
		Help: "Expired one-time codes deleted by the cleanup worker.",
	})
	cleanupLastDeleted = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fishgalaxy_otp_cleanup_last_deleted",
		Help: "Codes deleted during the last cleanup run.",
	})
)

// Worker периодически удаляет просроченные одноразовые коды. Просроченный
// код и так не принимается; воркер лишь не даёт таблице расти.
type Worker struct {
	repo      domain.OTPRepository
	logger    *log.Entry
	interval  time.Duration
	batchSize int
}

// Option настраивает Worker.
type Option func(*Worker)

// WithLogger задаёт logger воркера.
func WithLogger(logger *log.Entry) Option {
	return func(w *Worker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithInterval задаёт период между циклами очистки.
func WithInterval(interval time.Duration) Option {
	return func(w *Worker) {
		if interval > 0 {
			w.interval = interval
		}
	}
}

// WithBatchSize задаёт размер порции одного удаления.
func WithBatchSize(batchSize int) Option {
	return func(w *Worker) {
		if batchSize > 0 {
			w.batchSize = batchSize
		}
	}
}

// New создаёт воркер очистки одноразовых кодов.
func New(repo domain.OTPRepository, options ...Option) *Worker {
	w := &Worker{
		repo:      repo,
		logger:    log.WithField("component", "otp-cleanup-worker"),
		interval:  defaultInterval,
		batchSize: defaultBatchSize,
	}
	for _, option := range options {
		option(w)
	}
	return w
}

// Run чистит просроченные коды при старте и затем по тикеру до отмены ctx.
func (w *Worker) Run(ctx context.Context) {
	if w.repo == nil {
		w.logger.Warn("otp cleanup worker is disabled: repo is nil")
		return
	}

	w.sweep(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *Worker) sweep(ctx context.Context) {
	deleted, err := w.DeleteExpired(ctx, time.Now().UTC())
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		cleanupRuns.WithLabelValues("error").Inc()
		w.logger.WithError(err).Warn("otp cleanup run failed")
		return
	}

	cleanupRuns.WithLabelValues("ok").Inc()
	cleanupLastDeleted.Set(float64(deleted))
	if deleted > 0 {
		w.logger.WithField("deleted", deleted).Info("otp cleanup completed")
	}
}

// DeleteExpired удаляет коды с expires_at <= before порциями batchSize,
// пока хранилище отдаёт полные порции.
func (w *Worker) DeleteExpired(ctx context.Context, before time.Time) (int, error) {
	if before.IsZero() {
		before = time.Now().UTC()
	}

	total := 0
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		deleted, err := w.repo.DeleteExpired(before, w.batchSize)
		if err != nil {
			return total, err
		}

		total += deleted
		if deleted > 0 {
			cleanupDeleted.Add(float64(deleted))
		}
		if deleted < w.batchSize {
			return total, nil
		}
	}
}
