// Command inlinechange-watch shows a file in the terminal with the text
// inserted since it was opened (or since -baseline) highlighted.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"inlinechange/baseline"
	"inlinechange/config"
	"inlinechange/engine"
	"inlinechange/logger"
	"inlinechange/term"

	"github.com/gdamore/tcell/v2"
)

func main() {
	settings := flag.String("settings", "", "settings.json with inlineChangeHighlighter.* keys")
	baselinePath := flag.String("baseline", "", "compare against this file instead of the file as first read")
	logPath := flag.String("log", "", "log file (default: no logging)")
	logLevel := flag.String("log-level", os.Getenv(logger.LevelEnv), "debug, info, warn or error")
	printConfig := flag.Bool("print-config", false, "print the effective settings as JSON and exit")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] file\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := logger.InitFile(*logPath, logger.ParseLevel(*logLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "inlinechange-watch: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	source := term.SettingsSource(*settings)
	if *printConfig {
		out, err := config.MarshalSettings(source.Config())
		if err != nil {
			fmt.Fprintf(os.Stderr, "inlinechange-watch: %v\n", err)
			os.Exit(1)
		}
		os.Stdout.Write(out)
		return
	}

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(flag.Arg(0), *baselinePath, *settings, source); err != nil {
		logger.Error("%v", err)
		fmt.Fprintf(os.Stderr, "inlinechange-watch: %v\n", err)
		logger.Close()
		os.Exit(1)
	}
}

func run(path, baselinePath, settings string, source config.Source) error {
	host, err := term.NewHost(path)
	if err != nil {
		return err
	}

	watcher, err := term.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Add(host.Path()); err != nil {
		return err
	}
	if settings != "" {
		if err := watcher.Add(settings); err != nil {
			return err
		}
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialise screen: %w", err)
	}
	defer screen.Fini()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng := engine.NewEngine(host, baseline.NewStore(), source, engine.SystemClock{})
	eng.Start(ctx)
	defer eng.Stop()

	if baselinePath != "" {
		data, err := os.ReadFile(baselinePath)
		if err != nil {
			return fmt.Errorf("failed to read baseline: %w", err)
		}
		// Activation recorded the file itself; replace it before the first diff
		eng.Store().Rebaseline(host.ID(), string(data))
		eng.TextChanged(host.ID(), term.Editor)
	}

	return term.NewApp(screen, host, eng, watcher, settings).Run(ctx)
}
