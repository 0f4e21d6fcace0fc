package main

import (
	"net"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

type Config struct {
	Host               string        `env:"HOST,default=localhost"`
	Port               int           `env:"PORT,default=4000"`
	LogLevel           string        `env:"LOG_LEVEL,default=INFO"`
	StoreDriver        string        `env:"STORE_DRIVER,default=badger"`
	BadgerFilepath     string        `env:"BADGER_FILEPATH,default=./data/chat"`
	MongoURL           string        `env:"MONGO_URL,default=mongodb://localhost:27017"`
	MongoDatabase      string        `env:"MONGO_DATABASE,default=chat"`
	ParticipantTimeout time.Duration `env:"PARTICIPANT_TIMEOUT,default=10s"`
	SweepInterval      time.Duration `env:"SWEEP_INTERVAL,default=15s"`
	RestartInterval    time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	ShutdownTimeout    time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
	CensoredWords      string        `env:"CENSORED_WORDS"`
	CensorCharacter    string        `env:"CENSOR_CHARACTER,default=*"`
	MaxTextLength      int           `env:"MAX_TEXT_LENGTH,default=1000"`
	CorsOrigins        string        `env:"CORS_ORIGINS"`
	AllowReservedNames bool          `env:"ALLOW_RESERVED_NAMES,default=false"`
}

func (c Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// censoredWords splits the comma separated CENSORED_WORDS list.
func (c Config) censoredWords() []string {
	return splitList(c.CensoredWords)
}

func (c Config) corsOrigins() []string {
	return splitList(c.CorsOrigins)
}

func (c Config) censorRune() rune {
	r, _ := utf8.DecodeRuneInString(c.CensorCharacter)
	if r == utf8.RuneError {
		return '*'
	}
	return r
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
