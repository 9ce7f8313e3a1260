package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"inlinechange/baseline"
	"inlinechange/buffer"
	"inlinechange/engine"
	"inlinechange/logger"

	"github.com/neovim/go-client/nvim"
)

func defaultLogPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "inlinechange", "inlinechange.log")
}

func main() {
	logPath := flag.String("log", defaultLogPath(), "log file (empty disables logging)")
	logLevel := flag.String("log-level", os.Getenv(logger.LevelEnv), "debug, info, warn or error")
	compressKb := flag.Int("compress-kb", baseline.DefaultCompressThreshold/1024, "compress baselines larger than this many KiB")
	flag.Parse()

	if err := logger.InitFile(*logPath, logger.ParseLevel(*logLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "inlinechange: %v\n", err)
	}
	defer logger.Close()

	if err := run(*compressKb); err != nil {
		logger.Error("%v", err)
		logger.Close()
		os.Exit(1)
	}
}

func run(compressKb int) error {
	// stdout carries msgpack-RPC; nothing else may write to it
	stdout := os.Stdout
	os.Stdout = os.Stderr

	v, err := nvim.New(os.Stdin, stdout, stdout, logger.Printf)
	if err != nil {
		return fmt.Errorf("failed to connect to nvim: %w", err)
	}
	defer v.Close()

	served := make(chan error, 1)
	go func() {
		served <- v.Serve()
	}()

	host, err := buffer.New(v)
	if err != nil {
		return err
	}

	store := baseline.NewStore(baseline.WithCompressThreshold(compressKb * 1024))
	eng := engine.NewEngine(host, store, host, engine.SystemClock{})

	handlers := map[string]any{
		buffer.MethodEvent: func(name string, bufnr, winid int) {
			if err := host.HandleEvent(eng, name, bufnr, winid); err != nil {
				logger.Error("failed to handle %s: %v", name, err)
			}
		},
		buffer.MethodToggle: func() error {
			eng.Toggle()
			return nil
		},
		buffer.MethodRebaseline: func() error {
			eng.RebaselineActive()
			return nil
		},
	}
	for method, fn := range handlers {
		if err := v.RegisterHandler(method, fn); err != nil {
			return fmt.Errorf("failed to register %s: %w", method, err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng.Start(ctx)
	if err := host.Install(); err != nil {
		eng.Stop()
		return err
	}
	logger.Info("inlinechange: serving channel %d", v.ChannelID())

	select {
	case err = <-served:
		logger.Info("inlinechange: nvim closed the channel: %v", err)
	case <-ctx.Done():
		if uerr := host.Uninstall(); uerr != nil {
			logger.Warn("%v", uerr)
		}
	}
	eng.Stop()
	return nil
}
