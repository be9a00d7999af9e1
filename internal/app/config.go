package app

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v8"
)

// Config описывает настройки запуска приложения. Значения берутся из флагов
// и переменных окружения; окружение имеет приоритет.
type Config struct {
	Address     string `env:"RUN_ADDRESS"`
	MetricsAddr string `env:"METRICS_ADDRESS"`
	DatabaseURI string `env:"DATABASE_URI"`

	KafkaBrokers string `env:"KAFKA_BROKERS"`

	JWTSecret string `env:"JWT_SECRET"`

	UploadDir     string `env:"UPLOAD_DIR" envDefault:"./uploads"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080/static"`

	ResendAPIKey string `env:"RESEND_API_KEY"`
	EmailFrom    string `env:"EMAIL_FROM" envDefault:"orders@fishgalaxy.example"`

	TwilioAccountSID   string `env:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken    string `env:"TWILIO_AUTH_TOKEN"`
	TwilioSMSFrom      string `env:"TWILIO_SMS_FROM"`
	TwilioWhatsAppFrom string `env:"TWILIO_WHATSAPP_FROM"`

	CompanyName    string `env:"COMPANY_NAME" envDefault:"Fish Galaxy"`
	CompanyAddress string `env:"COMPANY_ADDRESS"`
	CompanyEmail   string `env:"COMPANY_EMAIL"`
	CompanyMobile  string `env:"COMPANY_MOBILE"`
}

// NewConfig собирает конфигурацию из флагов и окружения.
func NewConfig() (Config, error) {
	return newConfig(os.Args[1:])
}

func newConfig(args []string) (Config, error) {
	config := Config{}

	if err := config.parseFlags(args); err != nil {
		return Config{}, err
	}

	if err := env.Parse(&config); err != nil {
		return Config{}, err
	}

	if err := config.validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

func (c *Config) parseFlags(args []string) error {
	fs := flag.NewFlagSet("fishgalaxy", flag.ContinueOnError)
	fs.StringVar(&c.Address, "a", ":8080", "API server address")
	fs.StringVar(&c.MetricsAddr, "m", ":9090", "Metrics server address")
	fs.StringVar(&c.DatabaseURI, "d", "", "PostgreSQL DSN (empty for in-memory storage)")
	fs.StringVar(&c.KafkaBrokers, "k", "", "Kafka brokers, comma separated")
	return fs.Parse(args)
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	return nil
}

// Brokers возвращает список брокеров Kafka; пустой срез — Kafka не настроен.
func (c *Config) Brokers() []string {
	if c.KafkaBrokers == "" {
		return nil
	}
	return strings.Split(c.KafkaBrokers, ",")
}
