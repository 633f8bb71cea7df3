package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jwebster45206/narrative-engine/internal/config"
	"github.com/jwebster45206/narrative-engine/internal/logger"
	"github.com/jwebster45206/narrative-engine/internal/storage"
	"github.com/jwebster45206/narrative-engine/internal/worker"
	"github.com/jwebster45206/narrative-engine/pkg/frontend"
)

// Runs a session over plain stdin/stdout: snapshots are printed as text and
// every input line is parsed as a command. Useful for scripted play-throughs.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	// stdout carries the story, so logs go to stderr.
	log := logger.SetupTo(os.Stderr, cfg)
	log.Info("Starting narrative worker",
		"environment", cfg.Environment,
		"save_backend", cfg.SaveBackend,
		"catalog", cfg.Catalog)

	store, err := storage.Open(context.Background(), cfg, log)
	if err != nil {
		log.Error("Failed to open save backend", "error", err)
		os.Exit(1)
	}
	if store != nil {
		defer func() {
			if err := store.Close(); err != nil {
				log.Error("Error closing save backend", "error", err)
			}
		}()
	}

	boundary, client := frontend.Pipe(16)
	w := worker.New(store, boundary, log, worker.Options{
		ID:        os.Getenv("WORKER_ID"),
		Catalog:   cfg.Catalog,
		SessionID: cfg.SessionID,
		Seed:      cfg.RandomSeed,
		DataDir:   cfg.DataDir,
	})

	// Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan error, 1)
	go func() { done <- w.Start() }()
	printed := make(chan struct{})
	go func() {
		printSnapshots(os.Stdout, client.Snapshots())
		close(printed)
	}()
	go readCommands(os.Stdin, os.Stdout, client)

	select {
	case <-quit:
		log.Info("Worker shutdown signal received")
		w.Stop()
		err = <-done
	case err = <-done:
	}

	// the session has stopped sending; print what is still buffered
	boundary.Close()
	<-printed

	if err != nil {
		log.Error("Worker error", "error", err)
		os.Exit(1)
	}
	if store != nil && w.Session() != nil {
		log.Info("Worker exited", "session_id", w.Session().WorldState().ID.String())
	}
}

func printSnapshots(out io.Writer, snaps <-chan frontend.Snapshot) {
	for snap := range snaps {
		writeSnapshot(out, snap)
	}
}

// writeSnapshot renders a snapshot as plain text.
func writeSnapshot(out io.Writer, snap frontend.Snapshot) {
	if snap.Main != "" {
		fmt.Fprintln(out, snap.Main)
	}
	for _, e := range snap.Errors {
		fmt.Fprintln(out, "! "+e)
	}
	for _, d := range snap.Debug {
		fmt.Fprintln(out, "# "+d)
	}
	for _, a := range snap.Avatars {
		fmt.Fprintf(out, "[avatar %s %s]\n", a.Kind, a.Key)
	}
	for _, s := range snap.Status {
		fmt.Fprintln(out, "~ "+s)
	}
	for i, o := range snap.Options {
		switch {
		case o.Enabled:
			fmt.Fprintf(out, "  %d. %s\n", i+1, o.Text)
		case !snap.HideDisabled:
			fmt.Fprintf(out, "  %d. (%s)\n", i+1, o.Text)
		}
	}
}

// readCommands forwards input lines until EOF, then disconnects.
func readCommands(in io.Reader, out io.Writer, client *frontend.Client) {
	defer client.Close()
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		cmd, err := frontend.ParseCommand(line)
		if err != nil {
			fmt.Fprintln(out, "! "+err.Error())
			continue
		}
		if err := client.Send(context.Background(), cmd); err != nil {
			return
		}
	}
}
