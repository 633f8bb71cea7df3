package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jwebster45206/narrative-engine/internal/config"
	"github.com/jwebster45206/narrative-engine/internal/logger"
	"github.com/jwebster45206/narrative-engine/internal/storage"
	"github.com/jwebster45206/narrative-engine/internal/worker"
	"github.com/jwebster45206/narrative-engine/pkg/frontend"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Logs go to a file so they do not tear the terminal UI.
	logPath := filepath.Join(cfg.DataDir, "console.log")
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create data dir: %v\n", err)
		os.Exit(1)
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	log := logger.SetupTo(logFile, cfg)

	store, err := storage.Open(context.Background(), cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open save backend: %v\n", err)
		os.Exit(1)
	}
	if store != nil {
		defer store.Close()
	}

	boundary, client := frontend.Pipe(16)
	w := worker.New(store, boundary, log, worker.Options{
		Catalog:   cfg.Catalog,
		SessionID: cfg.SessionID,
		Seed:      cfg.RandomSeed,
		DataDir:   cfg.DataDir,
	})

	done := make(chan error, 1)
	go func() { done <- w.Start() }()

	p := tea.NewProgram(NewConsoleUI(client, done),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	final, runErr := p.Run()

	client.Close()
	w.Stop()
	workerErr := <-doneOrNil(final, done)

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", runErr)
		os.Exit(1)
	}
	if workerErr != nil {
		fmt.Fprintf(os.Stderr, "Session ended with error: %v\n", workerErr)
		os.Exit(1)
	}
	if store != nil && w.Session() != nil {
		fmt.Printf("Saved. Resume with SESSION_ID=%s\n", w.Session().WorldState().ID)
	}
}

// doneOrNil returns the worker result, unless the UI already consumed it.
func doneOrNil(final tea.Model, done chan error) <-chan error {
	if ui, ok := final.(ConsoleUI); ok && ui.ended {
		out := make(chan error, 1)
		out <- ui.err
		return out
	}
	return done
}
