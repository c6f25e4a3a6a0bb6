package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nodepanel/pkg/agent"
	"nodepanel/pkg/logger"
	"nodepanel/pkg/version"
)

func main() {
	defaultServer := os.Getenv("PANEL_ADDR")
	if defaultServer == "" {
		defaultServer = "http://127.0.0.1:8080"
	}
	defaultName := os.Getenv("NODE_NAME")
	defaultEmail := os.Getenv("NODE_EMAIL")
	defaultToken := os.Getenv("REPORT_TOKEN")

	server := flag.String("server", defaultServer, "panel base URL (overrides PANEL_ADDR env)")
	name := flag.String("name", defaultName, "node name (overrides NODE_NAME env)")
	email := flag.String("email", defaultEmail, "owner email (overrides NODE_EMAIL env)")
	token := flag.String("token", defaultToken, "report token (overrides REPORT_TOKEN env)")
	iface := flag.String("iface", "eth0", "interface whose counters are reported")
	interval := flag.Duration("interval", 10*time.Minute, "reporting interval")
	journalPath := flag.String("journal", "/var/lib/nodepanel/agent.db", "traffic journal path")
	showVersion := flag.Bool("v", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Build)
		return
	}

	log := logger.NewDefault()
	if *name == "" || *email == "" || *token == "" {
		log.Fatalw("name, email and token are required")
	}

	journal, err := agent.OpenJournal(*journalPath)
	if err != nil {
		log.Fatalw("journal open failed", "path", *journalPath, "err", err)
	}
	defer journal.Close()

	reporter := agent.NewReporter(agent.Config{
		Server:    *server,
		NodeName:  *name,
		Email:     *email,
		Token:     *token,
		Interface: *iface,
		Interval:  *interval,
	}, journal, log)

	stop := make(chan struct{})
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		close(stop)
	}()

	log.Infow("agent reporting", "server", *server, "node", *name, "interval", *interval)
	reporter.Run(stop)
}
