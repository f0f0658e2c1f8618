package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/zeromicro/go-zero/core/logx"

	"gpem17-evo/internal/cli"
	"gpem17-evo/internal/config"
	"gpem17-evo/internal/svc"
	"gpem17-evo/pkg/statslog"
)

var (
	configFile = flag.String("f", "etc/gpem.yaml", "the config file")
	inFile     = flag.String("in", "", "JSONL file of evaluated outcomes")
	seed       = flag.String("seed", "", "master seed of the original run")
	regex      = flag.String("regex", ".*", "scenario selector of the original run")
)

// entry is one line of the replay input.
type entry struct {
	Generation int                      `json:"generation"`
	Program    string                   `json:"program"`
	Outcome    statslog.ScenarioOutcome `json:"outcome"`
}

type generation struct {
	program  string
	outcomes []statslog.ScenarioOutcome
}

func main() {
	flag.Parse()
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)

	cfg := config.MustLoad(*configFile)
	logx.MustSetup(cfg.Log)
	defer logx.Close()
	cli.LogConfigSummary(cfg)

	if *inFile == "" {
		log.Fatalf("[main] -in is required")
	}
	f, err := os.Open(*inFile)
	if err != nil {
		log.Fatalf("[main] %v", err)
	}
	gens, err := readGenerations(f)
	_ = f.Close()
	if err != nil {
		log.Fatalf("[main] read %s: %v", *inFile, err)
	}
	if len(gens) == 0 {
		log.Fatalf("[main] %s holds no outcomes", *inFile)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svcCtx := svc.NewServiceContext(*cfg)
	rec := svcCtx.NewRecorder(true)
	dir, err := rec.Setup(ctx, config.RunParams{Seed: *seed, ScenarioRegex: *regex})
	if err != nil {
		log.Fatalf("[main] setup: %v", err)
	}

	indices := make([]int, 0, len(gens))
	for g := range gens {
		indices = append(indices, g)
	}
	sort.Ints(indices)
	for _, g := range indices {
		if err := rec.RecordGeneration(ctx, g, gens[g].outcomes, gens[g].program); err != nil {
			log.Fatalf("[main] %v", err)
		}
	}
	if err := rec.Finish(ctx, indices[len(indices)-1]); err != nil {
		log.Fatalf("[main] finish: %v", err)
	}
	log.Printf("[main] Replayed %d generations into %s", len(indices), dir.Path())
}

// readGenerations groups outcomes by generation, keeping input order within
// a generation. The program of a generation is taken from its first line.
func readGenerations(r io.Reader) (map[int]*generation, error) {
	gens := make(map[int]*generation)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var e entry
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		g, ok := gens[e.Generation]
		if !ok {
			g = &generation{program: e.Program}
			gens[e.Generation] = g
		}
		g.outcomes = append(g.outcomes, e.Outcome)
	}
	return gens, scanner.Err()
}
