package main

import (
	"testing"
	"time"

	"github.com/Netflix/go-env"
	"github.com/stretchr/testify/require"
)

func TestConfig_Defaults(t *testing.T) {
	req := require.New(t)

	var config Config
	_, err := env.Unmarshal(env.EnvSet{}, &config)
	req.NoError(err)

	req.Equal("localhost:4000", config.Address())
	req.Equal("badger", config.StoreDriver)
	req.Equal(10*time.Second, config.ParticipantTimeout)
	req.Equal(15*time.Second, config.SweepInterval)
	req.Equal('*', config.censorRune())
	req.Empty(config.censoredWords())
	req.False(config.AllowReservedNames)
}

func TestConfig_Lists(t *testing.T) {
	req := require.New(t)

	var config Config
	_, err := env.Unmarshal(env.EnvSet{
		"CENSORED_WORDS":       " badger, snake ,,",
		"CORS_ORIGINS":         "http://localhost:3000",
		"CENSOR_CHARACTER":     "#",
		"SWEEP_INTERVAL":       "1m",
		"ALLOW_RESERVED_NAMES": "true",
	}, &config)
	req.NoError(err)

	req.Equal([]string{"badger", "snake"}, config.censoredWords())
	req.Equal([]string{"http://localhost:3000"}, config.corsOrigins())
	req.Equal('#', config.censorRune())
	req.Equal(time.Minute, config.SweepInterval)
	req.True(config.AllowReservedNames)
}
