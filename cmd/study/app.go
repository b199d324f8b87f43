// ABOUTME: Wires config, logging, storage, engines, delivery sinks and the tracker service.
// ABOUTME: Every command that touches data runs against one app built here.
package main

import (
	"fmt"
	"time"

	"github.com/harperreed/study/internal/config"
	"github.com/harperreed/study/internal/events"
	"github.com/harperreed/study/internal/evolution"
	"github.com/harperreed/study/internal/logging"
	"github.com/harperreed/study/internal/notify"
	"github.com/harperreed/study/internal/rules"
	"github.com/harperreed/study/internal/storage"
	"github.com/harperreed/study/internal/tracker"
)

type app struct {
	cfg        *config.Config
	log        *logging.Logger
	loc        *time.Location
	db         *storage.DB
	dispatcher *events.Dispatcher
	svc        *tracker.Service
}

func newApp(cfg *config.Config) (*app, error) {
	log, err := logging.New(cfg.GetLogMode())
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	db, err := cfg.OpenStorage()
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	var sinks []notify.Sink
	if cfg.Telegram.Enabled() {
		tg, err := notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID)
		if err != nil {
			// Delivery is optional; the rules still persist notifications.
			log.Warn("telegram delivery disabled", "error", err)
		} else {
			sinks = append(sinks, tg)
		}
	}

	dispatcher := events.NewDispatcher(
		evolution.NewEngine(db, loc, log.With("component", "evolution")),
		rules.NewEngine(db, loc, log.With("component", "rules")),
		log.With("component", "events"),
		sinks...,
	)

	return &app{
		cfg:        cfg,
		log:        log,
		loc:        loc,
		db:         db,
		dispatcher: dispatcher,
		svc:        tracker.New(db, dispatcher, loc, log.With("component", "tracker")),
	}, nil
}

func (a *app) Close() error {
	a.log.Sync()
	return a.db.Close()
}
