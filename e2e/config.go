package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// E2E_SERVER_URL targets a running server; empty starts one in-process
	ServerURL string `envconfig:"E2E_SERVER_URL"`
	// E2E_COLOURS enables colorized step headers for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
	// E2E_PARTICIPANT_TIMEOUT must match the server's PARTICIPANT_TIMEOUT
	ParticipantTimeout string `envconfig:"E2E_PARTICIPANT_TIMEOUT" default:"1s"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
