package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/park285/moin-chess/internal/chessbuilder"
	appcfg "github.com/park285/moin-chess/internal/config"
	"github.com/park285/moin-chess/internal/game"
	"github.com/park285/moin-chess/internal/httpapi"
	"github.com/park285/moin-chess/internal/illustrator"
	"github.com/park285/moin-chess/internal/obslog"
	"github.com/park285/moin-chess/internal/render"
	"github.com/park285/moin-chess/pkg/chessdto"
	"go.uber.org/zap"
)

func main() {
	var (
		args   = flag.String("args", "", `tag arguments, e.g. "Game Immortal" or "Board Immortal 12-White"`)
		page   = flag.String("page", "", "name of the page the tag sits on")
		serve  = flag.Bool("serve", false, "run the HTTP render server")
		remote = flag.String("remote", "", "render through a server at this URL (defaults to RENDER_SERVER_URL)")
	)
	flag.Parse()

	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	logger := obslog.L()
	defer func() { _ = logger.Sync() }()

	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	if *serve {
		if err := runServer(cfg, logger); err != nil {
			log.Fatalf("server error: %v", err)
		}
		return
	}

	body := ""
	if needsBody(*args) {
		raw, err := io.ReadAll(io.LimitReader(os.Stdin, game.MaxMoveTextBytes*2))
		if err != nil {
			log.Fatalf("read move text: %v", err)
		}
		body = string(raw)
	}

	target := strings.TrimSpace(*remote)
	if target == "" {
		target = cfg.RenderServerURL
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if target != "" {
		out, err := httpapi.NewClient(target).Render(ctx, chessdto.RenderRequest{Args: *args, Body: body, Page: *page})
		if err != nil {
			log.Fatalf("remote render error: %v", err)
		}
		fmt.Println(out.HTML)
		if out.Error != nil {
			os.Exit(2)
		}
		return
	}

	deps, err := chessbuilder.New(cfg, logger)
	if err != nil {
		log.Fatalf("chess init error: %v", err)
	}
	defer deps.Close()

	res := deps.Service.Render(ctx, illustrator.Request{Args: *args, Body: body, Page: *page})
	var sink render.HTMLSink
	deps.Formatter.Write(ctx, &sink, res)
	fmt.Println(sink.String())
	if res.Err != nil {
		_ = deps.Close()
		os.Exit(2)
	}
}

// needsBody reports whether the tag is a Game tag, the only kind with move text.
func needsBody(args string) bool {
	fields := strings.Fields(args)
	return len(fields) > 0 && strings.EqualFold(fields[0], "Game")
}

func runServer(cfg *appcfg.AppConfig, logger *zap.Logger) error {
	deps, err := chessbuilder.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("chess init: %w", err)
	}
	defer deps.Close()

	srv, err := httpapi.NewServer(deps.Service, deps.Formatter, logger.Named("http"))
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe(cfg.HTTPAddr) }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
