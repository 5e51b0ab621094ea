package config

import (
	"errors"
	"flag"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Mural настройки клиента внешнего платежного провайдера.
type Mural struct {
	APIURL         string `env:"MURAL_API_URL" envDefault:"https://api-staging.muralpay.com"`
	APIKey         string `env:"MURAL_API_KEY"`
	TransferAPIKey string `env:"MURAL_TRANSFER_API_KEY"`
	OrgID          string `env:"MURAL_ORG_ID"`
	AccountID      string `env:"MURAL_ACCOUNT_ID"`
}

// MerchantBank реквизиты фиатного (COP) счета мерчанта, на который уходят выплаты.
// Передается явно в сервис выплат, никаких чтений окружения вне этого пакета.
type MerchantBank struct {
	PhoneNumber       string `env:"MERCHANT_COP_PHONE_NUMBER"`
	AccountType       string `env:"MERCHANT_COP_ACCOUNT_TYPE" envDefault:"CHECKING"`
	BankAccountNumber string `env:"MERCHANT_COP_BANK_ACCOUNT"`
	DocumentNumber    string `env:"MERCHANT_COP_DOCUMENT_NUMBER"`
	DocumentType      string `env:"MERCHANT_COP_DOCUMENT_TYPE" envDefault:"NATIONAL_ID"`
	BankName          string `env:"MERCHANT_COP_BANK_NAME"`
	BankAccountOwner  string `env:"MERCHANT_COP_ACCOUNT_OWNER"`
}

type Config struct {
	RunAddress    string `env:"RUN_ADDRESS"`
	DatabaseDSN   string `env:"DATABASE_URI"`
	MigrationsDir string `env:"MIGRATIONS_DIR"`
	Mural         Mural
	MerchantBank  MerchantBank
}

func LoadConfig() (*Config, error) {
	// .env опционален, его отсутствие не ошибка.
	_ = godotenv.Load()

	var flagsConfig, envConfig Config

	if envParseErr := env.Parse(&envConfig); envParseErr != nil {
		return nil, fmt.Errorf("parse env config: %s", envParseErr.Error())
	}

	loadFlags(&flagsConfig)

	conf := mergeConfig(&envConfig, &flagsConfig)
	if conf.DatabaseDSN == "" {
		return nil, errors.New("database DSN is not set")
	}
	return conf, nil
}

func MustLoadConfig() *Config {
	config, err := LoadConfig()
	if err != nil {
		panic(err)
	}
	return config
}

func loadFlags(flagConfig *Config) {
	flag.StringVar(&flagConfig.RunAddress, "a", "localhost:8080", "Run address in format host:port")
	flag.StringVar(&flagConfig.DatabaseDSN, "d", "", "Database DSN")
	flag.StringVar(&flagConfig.MigrationsDir, "m", "internal/db/migrations", "Database migrations directory")

	flag.Parse()
}

func mergeConfig(envConfig, flagsConfig *Config) *Config {
	return &Config{
		RunAddress:    defaultIfBlank(envConfig.RunAddress, flagsConfig.RunAddress),
		DatabaseDSN:   defaultIfBlank(envConfig.DatabaseDSN, flagsConfig.DatabaseDSN),
		MigrationsDir: defaultIfBlank(envConfig.MigrationsDir, flagsConfig.MigrationsDir),
		Mural:         envConfig.Mural,
		MerchantBank:  envConfig.MerchantBank,
	}
}

func defaultIfBlank(value string, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}
