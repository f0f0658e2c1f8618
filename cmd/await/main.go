package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"regexp"
	"strconv"
	"syscall"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"gpem17-evo/internal/cli"
	"gpem17-evo/internal/config"
	"gpem17-evo/pkg/barrier"
	"gpem17-evo/pkg/expdir"
)

var (
	configFile = flag.String("f", "etc/gpem.yaml", "the config file")
	runFlag    = flag.String("run", expdir.LatestAlias, "run directory name or path; defaults to the latest alias")
	genFlag    = flag.Int("gen", -1, "final generation index; -1 picks the highest generation directory")
	timeout    = flag.Duration("timeout", 0, "overrides Barrier.Timeout; 0 keeps the configured value")
)

var generationDirPattern = regexp.MustCompile(`^generation(\d+)$`)

func main() {
	flag.Parse()
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)

	cfg := config.MustLoad(*configFile)
	logx.MustSetup(cfg.Log)
	defer logx.Close()

	log.Printf("[main] Configuration loaded:")
	for _, line := range cli.ConfigSummaryLines(cfg) {
		log.Printf("  - %s", line)
	}

	dir, err := resolveRun(cfg.ResultsRoot, *runFlag)
	if err != nil {
		log.Fatalf("[main] %v", err)
	}

	final := *genFlag
	if final < 0 {
		final, err = highestGeneration(dir)
		if err != nil {
			log.Fatalf("[main] %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	wait := cfg.Barrier.Timeout
	if *timeout > 0 {
		wait = *timeout
	}
	if wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, wait)
		defer cancel()
	}

	log.Printf("[main] Waiting for %s generation %d to flush", dir.Name(), final)
	start := time.Now()
	if err := barrier.AwaitCompletion(ctx, dir.GenerationDir(0), dir.GenerationDir(final), cfg.Barrier.PollInterval); err != nil {
		log.Fatalf("[main] %v", err)
	}
	log.Printf("[main] Done after %s", time.Since(start).Round(time.Millisecond))
}

func resolveRun(root, run string) (expdir.Dir, error) {
	if run == "" || run == expdir.LatestAlias {
		return expdir.Resolve(root)
	}
	if info, err := os.Stat(run); err == nil && info.IsDir() {
		return expdir.Open(run), nil
	}
	return expdir.Open(filepath.Join(root, run)), nil
}

func highestGeneration(dir expdir.Dir) (int, error) {
	entries, err := os.ReadDir(dir.Path())
	if err != nil {
		return 0, err
	}
	highest := -1
	for _, e := range entries {
		m := generationDirPattern.FindStringSubmatch(e.Name())
		if m == nil || !e.IsDir() {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n > highest {
			highest = n
		}
	}
	if highest < 0 {
		return 0, os.ErrNotExist
	}
	return highest, nil
}
