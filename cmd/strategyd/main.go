// Command strategyd serves exported strategies over HTTP.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/golang/glog"

	"github.com/timpalpant/holdem-cfr/config"
	"github.com/timpalpant/holdem-cfr/internal/backends"
	"github.com/timpalpant/holdem-cfr/server"
	"github.com/timpalpant/holdem-cfr/sqlstore"
)

func main() {
	configFile := flag.String("config", "", "Config file (defaults and environment if empty)")
	addr := flag.String("addr", "", "Listen address (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		glog.Fatal(err)
	}

	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	s, err := backends.Open(ctx, backends.Options{
		Kind:  cfg.Store.Backend,
		DSN:   cfg.Store.DSN,
		Table: cfg.Store.Table,
		Mode:  sqlstore.Existing,
	})
	if err != nil {
		glog.Fatal(err)
	}
	defer s.Close()

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      server.New(s, cfg.Game.Resolution()).Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	glog.Infof("Serving %s strategies on %s", cfg.Store.Backend, cfg.Server.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		glog.Fatal(err)
	}
}
