package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/arkenfold/filehub/internal/filestore"
	"github.com/arkenfold/filehub/internal/httpapi"
	"github.com/arkenfold/filehub/internal/mcpapi"
	"github.com/arkenfold/filehub/internal/support"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			support.WriteCrashLog(support.DefaultCrashLogPath, r, "main")
			os.Exit(1)
		}
	}()

	addr := ":8080"
	defaultTTL := filestore.DefaultExpirationThreshold
	sweepInterval := filestore.DefaultSweepInterval
	mcpServerMode := false
	mcpPort := 9877

	args := os.Args[1:]
	for i, arg := range args {
		switch arg {
		case "--help", "-h":
			fmt.Println("filehubd - in-memory ephemeral file exchange service")
			fmt.Println()
			fmt.Println("Usage: filehubd [OPTIONS]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  -addr ADDR              Listen address (default: :8080)")
			fmt.Println("  -default-ttl DURATION   Idle expiration threshold (default: 60s)")
			fmt.Println("  -sweep-interval DUR     Background sweeper interval (default: 10s)")
			fmt.Println("  -mcp-server             Enable MCP tool server alongside the HTTP API")
			fmt.Println("  -mcp-port PORT          MCP server port (default: 9877)")
			fmt.Println("  --help, -h              Show this help message")
			os.Exit(0)
		case "-addr":
			if i+1 < len(args) {
				addr = args[i+1]
			}
		case "-default-ttl":
			if i+1 < len(args) {
				if d, err := time.ParseDuration(args[i+1]); err == nil {
					defaultTTL = d
				}
			}
		case "-sweep-interval":
			if i+1 < len(args) {
				if d, err := time.ParseDuration(args[i+1]); err == nil {
					sweepInterval = d
				}
			}
		case "-mcp-server":
			mcpServerMode = true
		case "-mcp-port":
			if i+1 < len(args) {
				fmt.Sscanf(args[i+1], "%d", &mcpPort)
			}
		}
	}

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	entry := logrus.NewEntry(log)

	repo := filestore.New(filestore.Options{
		DefaultExpirationThreshold: defaultTTL,
		SweepInterval:              sweepInterval,
	}, entry.WithField("component", "repository"))

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	support.SafeGo(support.DefaultCrashLogPath, "sweeper", func() {
		repo.RunSweeper(sweepCtx)
	})

	srv := httpapi.NewServer(repo, httpapi.Options{
		AdmissionRate:  rate.Limit(10),
		AdmissionBurst: 20,
	}, entry.WithField("component", "httpapi"))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: srv.Handler(),
	}

	support.SafeGo(support.DefaultCrashLogPath, "http-server", func() {
		entry.WithField("addr", addr).Info("filehubd listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			entry.WithError(err).Fatal("http server failed")
		}
	})

	var mcpServer *mcpapi.Server
	if mcpServerMode {
		var err error
		mcpServer, err = mcpapi.New(repo, mcpPort, entry.WithField("component", "mcp"))
		if err != nil {
			entry.WithError(err).Fatal("failed to create MCP server")
		}
		support.SafeGo(support.DefaultCrashLogPath, "mcp-server", func() {
			if err := mcpServer.Start(); err != nil {
				entry.WithError(err).Error("MCP server stopped")
			}
		})
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	entry.Info("shutting down")
	stopSweeper()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	httpServer.Shutdown(shutdownCtx)
	if mcpServer != nil {
		mcpServer.Shutdown(shutdownCtx)
	}
}
