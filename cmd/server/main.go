package main

import (
    "context"
    "errors"
    "flag"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/jaminalder/super-tic-tac-toe/internal/app"
    "github.com/jaminalder/super-tic-tac-toe/internal/config"
    "github.com/jaminalder/super-tic-tac-toe/internal/store"
    "github.com/jaminalder/super-tic-tac-toe/internal/web"
    "go.uber.org/zap"
)

func main() {
    cfgPath := flag.String("config", "", "path to a YAML config file")
    flag.Parse()

    cfg, err := config.Load(*cfgPath)
    if err != nil {
        os.Stderr.WriteString(err.Error() + "\n")
        os.Exit(2)
    }
    log, err := cfg.Logger()
    if err != nil {
        os.Stderr.WriteString(err.Error() + "\n")
        os.Exit(2)
    }
    defer log.Sync()

    svc := app.NewService(
        app.WithLogger(log.Named("app")),
        app.WithStore(store.NewFS(cfg.DataDir)),
    )
    srv := &http.Server{
        Addr:              cfg.Addr,
        Handler:           web.NewServer(svc, web.WithLogger(log.Named("http")), web.WithHeartbeat(cfg.Heartbeat)),
        ReadHeaderTimeout: 5 * time.Second,
    }

    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
    defer stop()
    go func() {
        <-ctx.Done()
        shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
        defer cancel()
        _ = srv.Shutdown(shutdownCtx)
    }()

    log.Info("listening", zap.String("addr", cfg.Addr), zap.String("data_dir", cfg.DataDir))
    if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
        log.Fatal("server", zap.Error(err))
    }
}
