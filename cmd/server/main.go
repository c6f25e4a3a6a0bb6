package main

import (
	"flag"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"

	"nodepanel/pkg/api"
	"nodepanel/pkg/db"
	"nodepanel/pkg/lock"
	"nodepanel/pkg/logger"
	"nodepanel/pkg/mailer"
	"nodepanel/pkg/report"
	"nodepanel/pkg/store"
	"nodepanel/pkg/sweep"
	"nodepanel/pkg/version"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	storeType := flag.String("store", "mysql", "store backend: mysql|memory")
	consulAddr := flag.String("consul-addr", "", "consul address for the sweep lock (empty = in-process lock)")
	lockKey := flag.String("lock-key", "nodepanel/locks/sweep", "advisory lock key for the sweep")
	tlsCert := flag.String("tls-cert", "", "TLS cert path (enables HTTPS if set with --tls-key)")
	tlsKey := flag.String("tls-key", "", "TLS key path (enables HTTPS if set with --tls-cert)")
	flag.Parse()

	log := logger.NewDefault()
	log.Infow("nodepanel starting", "build", version.Build)

	var st store.Store
	switch *storeType {
	case "mysql":
		gdb, err := db.Init()
		if err != nil {
			log.Fatalw("database init failed", "err", err)
		}
		st = store.NewGormStore(gdb)
	case "memory":
		st = store.NewMemoryStore()
	default:
		log.Fatalw("unsupported store type", "store", *storeType)
	}

	var sender mailer.Sender = mailer.NopSender{}
	if cfg, ok := mailer.FromEnv(); ok {
		sender = mailer.NewSMTPSender(cfg)
	} else {
		log.Infow("SMTP not configured; verification mail disabled")
	}

	var locker lock.Locker
	if *consulAddr != "" {
		l, err := lock.NewConsulLocker(*consulAddr, *lockKey, 30*time.Second)
		if err != nil {
			log.Fatalw("consul lock init failed", "err", err)
		}
		locker = l
	} else {
		locker = lock.NewLocalLocker()
	}

	hub := api.NewHub(log)
	sweeper := sweep.NewSweeper(st, locker, log)
	sweeper.OnSnapshot = hub.Broadcast

	reconciler := report.NewReconciler(st)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if err := st.Ping(); err != nil {
			http.Error(w, "store unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	(&api.AuthHandler{Store: st, Mailer: sender, Log: log}).RegisterRoutes(mux)
	(&api.NodeHandler{Store: st, Log: log}).RegisterRoutes(mux)
	api.NewReportHandler(reconciler, log).RegisterRoutes(mux)
	(&api.SweepHandler{Sweeper: sweeper, Log: log}).RegisterRoutes(mux)
	(&api.StatsHandler{Store: st}).RegisterRoutes(mux)
	hub.RegisterRoutes(mux)

	c := cron.New()
	if _, err := c.AddFunc("@every 10m", func() { _ = sweeper.Run() }); err != nil {
		log.Fatalw("cron schedule failed", "err", err)
	}
	c.Start()
	defer c.Stop()

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Infow("listening", "addr", *addr)
	var err error
	if *tlsCert != "" && *tlsKey != "" {
		err = srv.ListenAndServeTLS(*tlsCert, *tlsKey)
	} else {
		err = srv.ListenAndServe()
	}
	if err != nil {
		log.Fatalw("server error", "err", err)
	}
}
