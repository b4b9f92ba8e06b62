// Package main Saber lending API.
//
// @title           Saber Lending API
// @version         1.0
// @description     Community book lending: deposits, rentals, reservation queues, reading history and recommendations.
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/felipe-nonato/Saber-IFPB/app/echoServer"
	bookctrl "github.com/felipe-nonato/Saber-IFPB/app/echoServer/controller/book"
	historyctrl "github.com/felipe-nonato/Saber-IFPB/app/echoServer/controller/history"
	recommendctrl "github.com/felipe-nonato/Saber-IFPB/app/echoServer/controller/recommend"
	rentalctrl "github.com/felipe-nonato/Saber-IFPB/app/echoServer/controller/rental"
	"github.com/felipe-nonato/Saber-IFPB/app/worker"
	"github.com/felipe-nonato/Saber-IFPB/config"
	catalogrepo "github.com/felipe-nonato/Saber-IFPB/repository/catalog"
	historyrepo "github.com/felipe-nonato/Saber-IFPB/repository/history"
	"github.com/felipe-nonato/Saber-IFPB/repository/locker"
	rentalrepo "github.com/felipe-nonato/Saber-IFPB/repository/rental"
	reservationrepo "github.com/felipe-nonato/Saber-IFPB/repository/reservation"
	booksvc "github.com/felipe-nonato/Saber-IFPB/service/book"
	historysvc "github.com/felipe-nonato/Saber-IFPB/service/history"
	"github.com/felipe-nonato/Saber-IFPB/service/recommend"
	rentalsvc "github.com/felipe-nonato/Saber-IFPB/service/rental"
	"github.com/felipe-nonato/Saber-IFPB/util/database"
	"github.com/felipe-nonato/Saber-IFPB/util/events"
	"github.com/felipe-nonato/Saber-IFPB/util/jwt"
	"github.com/felipe-nonato/Saber-IFPB/util/logging"

	"github.com/go-playground/validator/v10"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// token <user-id> prints a bearer token for local testing
	if len(os.Args) > 1 && os.Args[1] == "token" {
		if len(os.Args) != 3 {
			fmt.Fprintln(os.Stderr, "usage: saber token <user-id>")
			os.Exit(2)
		}
		tok, err := jwt.Issue(cfg.JWTSecret, os.Args[2], 24*time.Hour)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(tok)
		return
	}

	log := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: os.Stdout})
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil && ctx.Err() == nil {
		log.Error("saber stopped", "err", err)
		os.Exit(1)
	}
	log.Info("saber stopped")
}

type stores struct {
	catalog  catalogrepo.Repo
	rentals  rentalrepo.Repo
	queue    reservationrepo.Repo
	history  historyrepo.Repo
	locker   locker.Locker
	closeFns []func()
}

func (s *stores) close() {
	for _, fn := range s.closeFns {
		fn()
	}
}

func openStores(ctx context.Context, cfg config.App, log *slog.Logger) (*stores, error) {
	if cfg.InMemory() {
		log.Warn("DATABASE_URL not set, using in-memory stores")
		return &stores{
			catalog: catalogrepo.NewMemory(),
			rentals: rentalrepo.NewMemory(),
			queue:   reservationrepo.NewMemory(),
			history: historyrepo.NewMemory(),
			locker:  locker.NewMemory(),
		}, nil
	}

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return &stores{
		catalog:  catalogrepo.New(db),
		rentals:  rentalrepo.New(db),
		queue:    reservationrepo.New(db),
		history:  historyrepo.New(db),
		locker:   locker.New(db),
		closeFns: []func(){db.Close},
	}, nil
}

func run(ctx context.Context, cfg config.App, log *slog.Logger) error {
	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	bus := events.NewBus(log)
	defer bus.Close()

	// services
	hs := historysvc.New(st.history, st.rentals, st.catalog)
	rs := rentalsvc.New(rentalsvc.Deps{
		Catalog: st.catalog,
		Rentals: st.rentals,
		Queue:   st.queue,
		History: hs,
		Locker:  st.locker,
		Events:  bus,
		Log:     log,
	}, rentalsvc.PolicyFrom(cfg.Lending))
	bs := booksvc.New(st.catalog)
	recs := recommend.New(st.catalog, st.history, st.queue, recommend.Config{
		DefaultLimit:  cfg.Recommend.DefaultLimit,
		MaxLimit:      cfg.Recommend.MaxLimit,
		ContentWeight: cfg.Recommend.ContentWeight,
		CollabWeight:  cfg.Recommend.CollabWeight,
	}, log)

	// controllers
	v := validator.New()
	e := echoServer.New(echoServer.C{
		Book:      &bookctrl.Controller{Svc: bs, V: v, Log: log},
		Rental:    &rentalctrl.Controller{Svc: rs, V: v, Log: log},
		History:   &historyctrl.Controller{Svc: hs, Log: log},
		Recommend: &recommendctrl.Controller{Svc: recs, Log: log},
		JWTSecret: cfg.JWTSecret,
		Log:       log,
	}, v)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}
	srv := &http.Server{
		Addr:              net.JoinHostPort("", port),
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	tree := worker.NewTree(log, worker.DefaultTreeConfig())
	tree.AddAPI(worker.NewHTTPService(srv, 10*time.Second))
	tree.AddJob(worker.NewEventLog(bus, log))
	tree.AddJob(worker.NewHoldSweeper(rs, cfg.Lending.SweepInterval, log))
	tree.AddJob(worker.NewOverdueScanner(rs, bus, cfg.Lending.OverdueInterval, log))

	log.Info("starting server",
		"port", port,
		"env", cfg.Env,
		"in_memory", cfg.InMemory(),
		"promotion", cfg.Lending.Promotion,
		"pricing", cfg.Lending.Pricing,
	)
	return tree.Serve(ctx)
}
