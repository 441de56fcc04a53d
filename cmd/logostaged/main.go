package main

import (
	"context"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"logostage/internal/api"
	"logostage/internal/config"
	"logostage/internal/ftpstore"
	"logostage/internal/logger"
	"logostage/internal/protect"
)

const shutdownTimeout = 30 * time.Second

func main() {
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}

	logger.SetupDefault(cfg.Logger)

	slog.Debug("server config", "cfg", cfg)

	store := ftpstore.New(cfg.FTP, nil)
	mux := api.New(store, newProxyClient(), api.Config{
		MaxFiles:    cfg.Upload.MaxFiles,
		MaxMemoryMB: cfg.Upload.MaxMemoryMB,
		FTPHost:     cfg.FTP.Host,
	})

	handler := logger.HTTPLogging(slog.Default(), mux)
	server := newServer(cfg.Server.Addr, handler)

	done := make(chan int)
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)

		s := <-c
		slog.Info("shutdown by signal", "signal", s.String())

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("shutdown failed", "error", err)
		}

		close(done)
	}()

	slog.Info("server startup", "addr", server.Addr, "ftpHost", cfg.FTP.Host, "staging", cfg.FTP.StagingPath)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}

	os.Exit(<-done)
}

// newProxyClient создаёт клиент для проксирования внешних картинок:
// разумные таймауты и защита от SSRF (прокси тянет произвольные
// пользовательские URL).
func newProxyClient() *http.Client {
	dialer := &net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	return &http.Client{
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				addr, err := protect.ReplaceHostToIP(addr)
				if err != nil {
					return nil, err
				}
				return dialer.DialContext(ctx, network, addr)
			},
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
		},
	}
}

// newServer создаёт HTTP-сервер с разумными таймаутами. WriteTimeout
// просторный: загрузка партии на FTP и проксирование больших картинок
// занимают время.
func newServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:    addr,
		Handler: handler,

		ReadTimeout:       2 * time.Minute, // партия до 20 картинок в одном запросе
		ReadHeaderTimeout: 3 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       1 * time.Minute,

		MaxHeaderBytes: 8192, // 8 KB
	}
}
