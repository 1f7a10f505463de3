package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"

	"github.com/CyresSmith/projects-tracker-backend/shared/mailer"
	"github.com/CyresSmith/projects-tracker-backend/shared/storage"
)

// Config is the immutable application configuration, constructed once at
// process start from the environment and passed explicitly to each
// component's constructor.
type Config struct {
	Port        int    `env:"PORT"         envDefault:"3001"`
	DBHost      string `env:"DB_HOST,required"`
	DBName      string `env:"DB_NAME"      envDefault:"projects-tracker"`
	BaseURL     string `env:"BASE_URL,required"`
	Secret      string `env:"SECRET,required"`
	TokenIssuer string `env:"TOKEN_ISSUER" envDefault:"projects-tracker"`
	TempDir     string `env:"TEMP_DIR"     envDefault:"temp"`

	SMTP  mailer.Config
	Drive storage.Config
}

// Load parses the configuration from environment variables.
func Load(logger *zerolog.Logger) *Config {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to parse environment variables")
	}

	return &cfg
}
