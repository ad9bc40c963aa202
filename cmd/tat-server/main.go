// Command tat-server serves The Agent Times query tools: a curated news
// corpus exposed to agent clients, every response carrying an Ed25519
// integrity signature.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/levslove/tat-mcp-server/pkg/config"
	"github.com/levslove/tat-mcp-server/pkg/corpus"
	"github.com/levslove/tat-mcp-server/pkg/crypto"
	"github.com/levslove/tat-mcp-server/pkg/envelope"
	"github.com/levslove/tat-mcp-server/pkg/mcp"
	"github.com/levslove/tat-mcp-server/pkg/observability"
	"github.com/levslove/tat-mcp-server/pkg/query"
	"github.com/levslove/tat-mcp-server/pkg/store"
)

const version = "1.0.0"

func main() {
	os.Exit(Run(os.Args, os.Stdout, os.Stderr))
}

// Run dispatches subcommands; it is the entrypoint for tests.
func Run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 2 {
		return runServer(stderr)
	}
	switch args[1] {
	case "serve", "server":
		return runServer(stderr)
	case "keygen":
		return runKeygenCmd(args[2:], stdout, stderr)
	case "verify":
		return runVerifyCmd(args[2:], stdout, stderr)
	case "health":
		return runHealthCmd(args[2:], stdout, stderr)
	case "version":
		_, _ = fmt.Fprintln(stdout, "tat-server "+version)
		return 0
	default:
		_, _ = fmt.Fprintf(stderr, "unknown command %q\nUsage: tat-server [serve|keygen|verify|health|version]\n", args[1])
		return 2
	}
}

// runHealthCmd probes a running server's health endpoint.
func runHealthCmd(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("health", flag.ContinueOnError)
	fs.SetOutput(stderr)
	addr := fs.String("addr", "http://localhost:"+config.Load().Port, "server base URL")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, *addr+"/healthz", nil)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, "health:", err)
		return 1
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, "health:", err)
		return 1
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		_, _ = fmt.Fprintf(stdout, "unhealthy: %s\n", resp.Status)
		return 1
	}
	_, _ = fmt.Fprintln(stdout, "ok")
	return 0
}

func runServer(stderr io.Writer) int {
	cfg, err := config.LoadWithProfile()
	if err != nil {
		_, _ = fmt.Fprintln(stderr, "config:", err)
		return 1
	}
	setupLogging(cfg.LogLevel)
	if cfg.ProfileFile != "" {
		slog.Info("server: profile applied", "path", cfg.ProfileFile)
	}

	snap, err := corpus.LoadFile(cfg.CorpusFile)
	if err != nil {
		slog.Error("server: corpus load failed", "error", err)
		return 1
	}
	corpusStore := corpus.NewStore()
	corpusStore.Replace(snap)

	var signer crypto.Signer
	if cfg.SigningKeyFile != "" {
		keyFiles := strings.Split(cfg.SigningKeyFile, ",")
		for i := range keyFiles {
			keyFiles[i] = strings.TrimSpace(keyFiles[i])
		}
		ring, err := crypto.LoadKeyRingFromFiles(keyFiles, cfg.KeyID)
		if err != nil {
			slog.Error("server: signing key load failed", "error", err)
			return 1
		}
		signer = ring
		slog.Info("server: signing enabled",
			"key_id", ring.KeyID(), "public_key", ring.PublicKey(), "keys", len(keyFiles))
	} else if !cfg.AllowUnsigned {
		_, _ = fmt.Fprintln(stderr, "no signing key configured: set TAT_SIGNING_KEY_FILE (run `tat-server keygen` first) or set TAT_ALLOW_UNSIGNED=true")
		return 1
	} else {
		slog.Warn("server: running unsigned, clients cannot verify responses")
	}

	var receipts mcp.ReceiptRecorder
	receiptStore, err := store.OpenReceiptStore(cfg.ReceiptDB)
	if err != nil {
		slog.Error("server: receipt store unavailable, responses will not be logged", "error", err)
	} else {
		receipts = receiptStore
		defer func() { _ = receiptStore.Close() }()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	obs, err := observability.New(ctx, &observability.Config{
		ServiceName:    "tat-mcp-server",
		ServiceVersion: version,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.TelemetryEnabled,
		Insecure:       true,
	})
	if err != nil {
		slog.Error("server: observability init failed", "error", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = obs.Shutdown(shutdownCtx)
	}()

	catalog := mcp.NewToolCatalog()
	if err := mcp.RegisterNewsTools(ctx, catalog); err != nil {
		slog.Error("server: tool registration failed", "error", err)
		return 1
	}

	toolServer := mcp.NewToolServer(
		query.NewEngine(corpusStore),
		envelope.NewSealer(signer, cfg.AllowUnsigned),
		catalog,
		receipts,
		obs,
	)
	gateway := mcp.NewGateway(toolServer, mcp.GatewayConfig{
		ServerName: "the-agent-times",
		Version:    version,
		RateLimit:  cfg.RateLimit,
	})

	mux := http.NewServeMux()
	gateway.RegisterRoutes(mux)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server: listening", "port", cfg.Port, "corpus_version", snap.Version())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		slog.Info("server: shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server: shutdown failed", "error", err)
			return 1
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server: listener failed", "error", err)
			return 1
		}
	}
	return 0
}

func setupLogging(level string) {
	var lvl slog.Level
	switch strings.ToUpper(level) {
	case "DEBUG":
		lvl = slog.LevelDebug
	case "WARN":
		lvl = slog.LevelWarn
	case "ERROR":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}
