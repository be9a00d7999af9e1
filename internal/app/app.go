package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/fishgalaxy/backend/internal/api"
	"github.com/fishgalaxy/backend/internal/domain"
	healthcheck "github.com/fishgalaxy/backend/internal/health"
	"github.com/fishgalaxy/backend/internal/invoice"
	"github.com/fishgalaxy/backend/internal/messaging/kafka"
	"github.com/fishgalaxy/backend/internal/metrics"
	"github.com/fishgalaxy/backend/internal/notify"
	"github.com/fishgalaxy/backend/internal/service/auth"
	"github.com/fishgalaxy/backend/internal/service/catalog"
	"github.com/fishgalaxy/backend/internal/service/customer"
	"github.com/fishgalaxy/backend/internal/service/notifier"
	"github.com/fishgalaxy/backend/internal/service/order"
	"github.com/fishgalaxy/backend/internal/service/otpcleanup"
	"github.com/fishgalaxy/backend/internal/service/outbox"
	"github.com/fishgalaxy/backend/internal/uploader"
	"github.com/fishgalaxy/backend/internal/version"
)

const notifierGroupID = "fishgalaxy-notifier"

// Run собирает зависимости и запускает API-сервер, воркеры и метрики.
// Блокируется до отмены ctx или фатальной ошибки сервера.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	deps, err := NewDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.Close()

	// Каналы уведомлений. Без ключей — логирующие заглушки, чтобы
	// приложение работало в dev-окружении без внешних аккаунтов.
	noop := notify.NewNoopSender()
	var mailer domain.EmailSender = noop
	var whatsapp domain.WhatsAppSender = noop
	var sms = noop.SMS()

	if cfg.ResendAPIKey != "" {
		mailer = notify.NewResendMailer(cfg.ResendAPIKey, cfg.EmailFrom)
		logger.Info("resend mailer initialized")
	}
	if cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" {
		twilio := notify.NewTwilioClient(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioSMSFrom, cfg.TwilioWhatsAppFrom)
		sms = twilio
		whatsapp = twilio
		logger.Info("twilio client initialized")
	}

	invoices := invoice.NewRenderer(invoice.CompanyInfo{
		Name:    cfg.CompanyName,
		Address: cfg.CompanyAddress,
		Email:   cfg.CompanyEmail,
		Mobile:  cfg.CompanyMobile,
	})

	files, err := uploader.NewLocalUploader(cfg.UploadDir, cfg.PublicBaseURL)
	if err != nil {
		return err
	}

	orderMetrics := metrics.NewOrderMetrics()
	tokens := auth.NewTokenManager(cfg.JWTSecret, auth.TokenTTL)

	orderSvc := order.NewService(deps.Orders, deps.Customers, deps.Allocator, deps.Outbox, invoices, orderMetrics, logger.WithField("layer", "order"))
	catalogSvc := catalog.NewService(deps.Categories, deps.Products, deps.Carts, logger.WithField("layer", "catalog"))
	customerSvc := customer.NewService(deps.Customers, deps.Carts, logger.WithField("layer", "customer"))
	authSvc := auth.NewService(deps.Customers, deps.Codes, sms, tokens, metrics.NewAuthMetrics(), logger.WithField("layer", "auth"))

	// Инициализация Kafka (опционально).
	var kafkaProducer *kafka.Producer
	var consumer *kafka.Consumer

	brokers := cfg.Brokers()
	if len(brokers) > 0 {
		producer, err := kafka.NewProducer(brokers)
		if err != nil {
			logger.WithError(err).Warn("failed to create kafka producer, continuing without kafka")
		} else {
			kafkaProducer = producer
			logger.WithField("brokers", brokers).Info("kafka producer initialized")
		}
	}

	workersCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()

	if kafkaProducer != nil {
		publisher := kafka.NewOutboxPublisher(kafkaProducer, kafka.TopicOrderEvents)
		dlq := kafka.NewOutboxPublisher(kafkaProducer, kafka.TopicDeadLetterQueue)
		outboxWorker := outbox.NewWorker(deps.Outbox, publisher,
			outbox.WithLogger(logger.WithField("layer", "outbox")),
			outbox.WithDLQPublisher(dlq),
		)
		go outboxWorker.Run(workersCtx)

		dispatcher := notifier.NewDispatcher(deps.Orders, deps.Customers, invoices, files, mailer, whatsapp, logger.WithField("layer", "notifier"))
		c, err := kafka.NewConsumerWithDLQ(brokers, notifierGroupID, []string{kafka.TopicOrderEvents}, dispatcher.Handle, kafkaProducer, 3)
		if err != nil {
			logger.WithError(err).Warn("failed to create kafka consumer, continuing without notifications")
		} else {
			consumer = c
			if err := consumer.Start(workersCtx); err != nil {
				logger.WithError(err).Warn("failed to start kafka consumer")
			}
		}
	}

	cleanup := otpcleanup.New(deps.Codes, otpcleanup.WithLogger(logger.WithField("layer", "otp-cleanup")))
	go cleanup.Run(workersCtx)

	healthHandler := healthcheck.NewHandler(version.Current().Version)
	if deps.Store != nil {
		healthHandler.RegisterChecker("storage", healthcheck.NewSimpleChecker("storage", func() error {
			return deps.Store.Ping(context.Background())
		}))
	}

	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)

	apiServer := api.NewServer(cfg.Address, api.NewHandler(orderSvc, catalogSvc, customerSvc, authSvc, logger.WithField("layer", "api")), tokens)
	apiServer.ServeStatic(cfg.UploadDir)

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("API сервер слушает %s", cfg.Address)
		errCh <- apiServer.Start()
	}()

	shutdown := func() {
		stopWorkers()
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := apiServer.Stop(stopCtx); err != nil {
			logger.WithError(err).Warn("api server shutdown with error")
		}
		shutdownHTTP(metricsSrv, logger)
		if consumer != nil {
			if err := consumer.Stop(); err != nil {
				logger.WithError(err).Warn("failed to stop kafka consumer")
			}
		}
		if kafkaProducer != nil {
			if err := kafkaProducer.Close(); err != nil {
				logger.WithError(err).Warn("failed to close kafka producer")
			} else {
				logger.Info("kafka producer closed")
			}
		}
	}

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем API сервер")
		shutdown()
		return ctx.Err()
	case err := <-errCh:
		shutdown()
		return err
	}
}

// startMetricsServer запускает HTTP-обработчик /metrics для Prometheus.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/livez, %s/readyz", addr, addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("metrics shutdown with error")
	}
}
