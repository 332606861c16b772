// Order Desk - terminal client for the customer portal.
package main

import (
	"log/slog"
	"os"

	"orderdesk/internal/chat"
	"orderdesk/internal/config"
	"orderdesk/internal/gateway"
	"orderdesk/internal/guard"
	"orderdesk/internal/orders"
	"orderdesk/internal/session"
	"orderdesk/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err == nil {
		slog.Info("Loaded .env file")
	}

	cfg, err := config.LoadClient()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// The terminal belongs to the UI, so logs go to a file.
	logFile, err := os.OpenFile(cfg.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		slog.Error("Failed to open log file", "path", cfg.LogPath, "error", err)
		os.Exit(1)
	}
	defer logFile.Close()

	logger := slog.New(slog.NewJSONHandler(logFile, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	slog.Info("Starting client", "api", cfg.APIBaseURL)

	gw, err := gateway.New(cfg.APIBaseURL)
	if err != nil {
		slog.Error("Failed to create gateway", "error", err)
		os.Exit(1)
	}

	nav := ui.NewNav()
	store := session.NewStore(gw)
	policy := session.NewPolicy(store, nav)
	guarded := policy.Wrap(gw)

	svc := ui.Services{
		Login:   gw,
		Session: store,
		Policy:  policy,
		Guard:   guard.New(store),
		Orders:  orders.NewClient(guarded),
		Chat:    chat.NewSession(guarded),
	}

	program := tea.NewProgram(ui.NewApp(svc, nav), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		slog.Error("UI terminated with error", "error", err)
		os.Exit(1)
	}
}
