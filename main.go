package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/workway/internal/catalog"
	"github.com/sadopc/workway/internal/config"
	"github.com/sadopc/workway/internal/logger"
	"github.com/sadopc/workway/internal/shifts"
	"github.com/sadopc/workway/internal/store"
	"github.com/sadopc/workway/internal/tui"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	s, err := store.New(cfg.DBPath)
	if err != nil {
		log.Error("open database", zap.String("path", cfg.DBPath), zap.Error(err))
		fmt.Fprintf(os.Stderr, "error opening database: %v\n", err)
		os.Exit(1)
	}

	locale := cfg.Locale
	if locale == "" {
		locale = s.SettingOr("locale", "en")
	}

	cat := catalog.New(s, log)
	svc := shifts.New(s, log)
	svc.SetLocale(locale)

	log.Info("starting", zap.String("db", cfg.DBPath), zap.String("locale", svc.Locale().String()))

	app := tui.NewApp(s, cat, svc, log)
	p := tea.NewProgram(app, tea.WithAltScreen())

	final, err := p.Run()
	// The app may have switched databases; close whichever is current.
	if a, ok := final.(tui.App); ok {
		a.Store().Close()
	} else {
		s.Close()
	}
	if err != nil {
		log.Error("program exited", zap.Error(err))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
