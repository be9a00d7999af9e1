package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/fishgalaxy/backend/internal/app"
	"github.com/fishgalaxy/backend/internal/version"
)

// setupLogger настраивает формат и уровень логирования; уровень можно
// переопределить через LOG_LEVEL.
func setupLogger() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	level := log.InfoLevel
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		parsed, err := log.ParseLevel(raw)
		if err != nil {
			log.WithField("log_level", raw).Warn("неизвестный уровень логирования, используем info")
		} else {
			level = parsed
		}
	}
	log.SetLevel(level)
}

func main() {
	setupLogger()

	cfg, err := app.NewConfig()
	if err != nil {
		log.WithError(err).Fatal("некорректная конфигурация")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(log.Fields{
		"build":        version.Current().String(),
		"address":      cfg.Address,
		"metrics_addr": cfg.MetricsAddr,
	}).Info("запускаем Fish Galaxy backend")

	if err := app.Run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("приложение завершилось с ошибкой")
	}

	log.Info("Fish Galaxy backend остановлен")
}
