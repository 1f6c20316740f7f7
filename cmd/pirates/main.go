package main

import (
	"log/slog"
	"os"

	"github.com/df-mc/dragonfly/server"
	"github.com/oriumgames/pirates"
)

func main() {
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(log)

	settings, err := pirates.ParseSettings()
	if err != nil {
		log.Error("pirates: invalid settings", "error", err)
		os.Exit(1)
	}

	cfg := pirates.DefaultRuleConfig()
	if settings.RuleConfig != "" {
		if cfg, err = pirates.LoadRuleConfig(settings.RuleConfig); err != nil {
			log.Error("pirates: invalid rule config", "path", settings.RuleConfig, "error", err)
			os.Exit(1)
		}
	}

	mngr := pirates.NewBuilder().
		Settings(settings).
		Logger(log).
		PreferenceProvider(pirates.NewMemoryPreferences()).
		Bundle(pirates.PiratesBundle(cfg)).
		Init()
	defer mngr.Shutdown()

	conf, err := server.DefaultConfig().Config(log)
	if err != nil {
		log.Error("pirates: server config", "error", err)
		os.Exit(1)
	}

	srv := conf.New()
	srv.CloseOnProgramEnd()
	srv.Listen()

	for p := range srv.Accept() {
		sess, err := mngr.NewSession(pirates.PlayerBody(p))
		if err != nil {
			log.Warn("pirates: rejected player", "player", p.Name(), "error", err)
			p.Disconnect("Could not load your profile, try again later.")
			continue
		}
		p.Handle(pirates.NewHandler(sess))
		go mngr.Do(func() { mngr.Ticker().LateJoin(sess) })
	}
}
