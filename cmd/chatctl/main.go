package main

import (
	"chat-presence/client"
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

const usage = `usage: chatctl <command> [args]

commands:
  join              register, keep alive and print new messages until Ctrl+C
  say <text>        broadcast a message
  whisper <to> <text>
                    send a private message
  who               list participants
  history [-limit n]
                    list the messages you can read
`

type Config struct {
	ServerURL    string        `envconfig:"CHAT_SERVER_URL" default:"http://localhost:4000"`
	User         string        `envconfig:"CHAT_USER"`
	PollInterval time.Duration `envconfig:"CHAT_POLL_INTERVAL" default:"3s"`
	// CHAT_LIMIT below zero fetches the whole history
	Limit   int  `envconfig:"CHAT_LIMIT" default:"-1"`
	Colours bool `envconfig:"CHAT_COLOURS" default:"true"`
}

func main() {
	code, err := run(os.Args[1:], os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "chatctl: %v\n", err)
	}
	os.Exit(code)
}

func run(args []string, out io.Writer) (int, error) {
	_ = godotenv.Load()
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if len(args) == 0 {
		fmt.Fprint(out, usage)
		return exitConfig, nil
	}

	command, rest := args[0], args[1:]
	if command != "who" && config.User == "" {
		return exitConfig, fmt.Errorf("CHAT_USER is required for %s", command)
	}
	c := client.New(config.ServerURL, config.User)
	r := renderer{out: out, colours: config.Colours, user: config.User}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch command {
	case "join":
		err = join(ctx, c, r, config)
	case "say":
		if len(rest) == 0 {
			return exitConfig, fmt.Errorf("say needs a text")
		}
		_, err = c.Say(strings.Join(rest, " "))
	case "whisper":
		if len(rest) < 2 {
			return exitConfig, fmt.Errorf("whisper needs a recipient and a text")
		}
		_, err = c.Whisper(rest[0], strings.Join(rest[1:], " "))
	case "who":
		err = who(c, r)
	case "history":
		err = history(c, r, rest, config.Limit)
	default:
		fmt.Fprint(out, usage)
		return exitConfig, fmt.Errorf("unknown command %q", command)
	}
	if err != nil {
		return exitRuntime, err
	}
	return exitOK, nil
}

// join registers the user, or picks the session back up when the name is taken,
// then heartbeats and prints unseen messages every poll interval.
func join(ctx context.Context, c *client.Client, r renderer, config Config) error {
	if err := register(c); err != nil {
		return err
	}
	r.info(fmt.Sprintf("Joined as %s, polling every %s", c.User(), config.PollInterval))

	seen := make(map[string]struct{})
	poll := func() error {
		if err := c.Heartbeat(); err != nil {
			return err
		}
		messages, err := c.Messages(config.Limit)
		if err != nil {
			return err
		}
		for _, m := range messages {
			if _, ok := seen[m.ID]; ok {
				continue
			}
			seen[m.ID] = struct{}{}
			r.message(m)
		}
		return nil
	}

	ticker := time.NewTicker(config.PollInterval)
	defer ticker.Stop()
	for {
		err := poll()
		switch {
		case err == nil:
		case client.StatusOf(err) == http.StatusNotFound:
			// Evicted while away: register again, the next tick picks up
			if err := register(c); err != nil {
				return err
			}
		default:
			r.info(fmt.Sprintf("poll failed: %v", err))
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// register treats an already taken name as this user's own session.
func register(c *client.Client) error {
	if err := c.Join(); err != nil && client.StatusOf(err) != http.StatusConflict {
		return err
	}
	return nil
}

func who(c *client.Client, r renderer) error {
	participants, err := c.Participants()
	if err != nil {
		return err
	}
	r.participants(participants)
	return nil
}

func history(c *client.Client, r renderer, args []string, limit int) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	fs.SetOutput(r.out)
	fs.IntVar(&limit, "limit", limit, "keep only the last n messages, negative for all")
	if err := fs.Parse(args); err != nil {
		return err
	}
	messages, err := c.Messages(limit)
	if err != nil {
		return err
	}
	r.messages(messages)
	return nil
}
