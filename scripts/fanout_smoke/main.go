package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/vovakirdan/wirefeed/internal/app"
	"github.com/vovakirdan/wirefeed/internal/config"
	"github.com/vovakirdan/wirefeed/internal/core"
	wflog "github.com/vovakirdan/wirefeed/internal/log"
	"github.com/vovakirdan/wirefeed/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fanout_smoke: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	observers := flag.Int("observers", 50, "number of live clients to attach")
	messages := flag.Int("messages", 20, "number of messages to post")
	dbPath := flag.String("db", "", "database path (defaults to a temporary file)")
	level := flag.String("log-level", "warn", "log level")
	timeout := flag.Duration("timeout", 10*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	cfg := config.Default()
	cfg.LogLevel = *level
	cfg.DatabasePath = *dbPath
	if cfg.DatabasePath == "" {
		dir, err := os.MkdirTemp("", "wirefeed-smoke-*")
		if err != nil {
			return fmt.Errorf("temp dir: %w", err)
		}
		defer os.RemoveAll(dir)
		cfg.DatabasePath = filepath.Join(dir, "smoke.db")
	}

	logger := wflog.New(cfg.LogLevel, os.Stderr)
	a, err := app.New(ctx, &cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	email := "smoke-" + uuid.NewString()[:8] + "@example.com"
	user, err := a.Auth.Register(ctx, email, "smoke")
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}

	noise, err := a.Channels.Create(ctx, "smoke-"+uuid.NewString()[:8], "smoke noise")
	if err != nil {
		return fmt.Errorf("create noise channel: %w", err)
	}

	// tally counts default-channel messages only; noise posts must not reach it
	var tallied atomic.Int64
	tally := core.ForChannels(core.NewFuncObserver(func(context.Context, store.Message) error {
		tallied.Add(1)
		return nil
	}), a.DefaultChannel.ID)
	a.Messages.Attach(tally)
	defer a.Messages.Detach(tally)

	clients := make([]*core.Client, 0, *observers)
	for i := range *observers {
		c := core.NewClient(fmt.Sprintf("observer-%d", i))
		c.Join(a.DefaultChannel.ID)
		a.Messages.Attach(c)
		clients = append(clients, c)
	}
	fmt.Printf("attached %d observers to %s\n", a.Messages.SubscriberCount()-1, a.DefaultChannel.Name)

	received := make(chan int, len(clients))
	for _, c := range clients {
		go func(c *core.Client) {
			n := 0
			for n < *messages {
				select {
				case <-c.Messages:
					n++
				case <-ctx.Done():
					received <- n
					return
				}
			}
			received <- n
		}(c)
	}

	start := time.Now()
	for i := range *messages {
		content := fmt.Sprintf("smoke message %d", i+1)
		if _, err := a.Messages.Post(ctx, a.DefaultChannel.ID, user.ID, &content); err != nil {
			return fmt.Errorf("post %d: %w", i+1, err)
		}
		if i%5 == 0 {
			noiseContent := "noise " + content
			if _, err := a.Messages.Post(ctx, noise.ID, user.ID, &noiseContent); err != nil {
				return fmt.Errorf("post noise %d: %w", i+1, err)
			}
		}
	}

	total := 0
	for range clients {
		total += <-received
	}
	elapsed := time.Since(start)

	want := len(clients) * *messages
	fmt.Printf("delivered %d/%d notifications in %v\n", total, want, elapsed)
	if total != want {
		return fmt.Errorf("missing %d notifications", want-total)
	}
	if got := tallied.Load(); got != int64(*messages) {
		return fmt.Errorf("channel tally saw %d messages, want %d", got, *messages)
	}
	return nil
}
