package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mlindner/waterhub/pkg/analyzer"
	"github.com/mlindner/waterhub/pkg/config"
	"github.com/mlindner/waterhub/pkg/hierarchy"
	"github.com/mlindner/waterhub/pkg/hub"
	"github.com/mlindner/waterhub/pkg/logging"
	"github.com/mlindner/waterhub/pkg/report"
)

func main() {
	configPath := flag.String("config", "waterhub.yaml", "Path to the yaml configuration file")
	run := flag.String("run", "integrity", "Analysis to run: structure, integrity, recency, keys, cycles")
	instrID := flag.Int("instr", 0, "Instrumentation id for the keys and cycles analyses")
	valueKey := flag.String("key", "", "Value key for the cycles analysis (defaults to the first declared key)")
	days := flag.Int("days", 0, "Override the retrieval window in days")
	color := flag.Bool("color", false, "Colorize report output")
	timeout := flag.Duration("timeout", 10*time.Minute, "Overall run timeout")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fail("%v", err)
	}
	if *days > 0 {
		cfg.Analysis.DaysBack = *days
	}

	log := logging.NewJSONLogger(os.Stderr, logging.ParseLevel(cfg.LogLevel))

	client, err := hub.NewClient(cfg.Credential(), hub.WithLogger(log))
	if err != nil {
		fail("%v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(os.Stderr, "Cloning water hierarchy for %s (%s)...\n", client.Username(), cfg.Hub.Region)
	a, err := analyzer.New(ctx, client,
		analyzer.WithLogger(log),
		analyzer.WithDaysBack(cfg.Analysis.DaysBack),
	)
	if err != nil {
		fail("%v", err)
	}

	rep, err := runAnalysis(ctx, a, *run, *instrID, *valueKey)
	if err != nil {
		fail("%v", err)
	}

	if *color {
		fmt.Println(report.RenderTerminal(rep))
	} else {
		fmt.Println(report.RenderPlain(rep))
	}
	if rep.AlertCount() > 0 {
		fmt.Fprintf(os.Stderr, "%d alert(s) reported\n", rep.AlertCount())
		os.Exit(2)
	}
}

func runAnalysis(ctx context.Context, a *analyzer.Analyzer, run string, instrID int, valueKey string) (*report.Report, error) {
	switch run {
	case "structure":
		return a.PrintStructure(), nil
	case "integrity":
		return a.CheckIntegrity(), nil
	case "recency":
		return a.AnalyzeRecency(ctx)
	case "keys":
		instr, err := lookupInstrumentation(a, instrID)
		if err != nil {
			return nil, err
		}
		return a.AnalyzeValueKeyRecency(ctx, instr)
	case "cycles":
		instr, err := lookupInstrumentation(a, instrID)
		if err != nil {
			return nil, err
		}
		key := valueKey
		if key == "" && len(instr.ValueKeys) > 0 {
			key = instr.ValueKeys[0]
		}
		return a.ReportCycleStatistics(ctx, instr, key)
	default:
		return nil, fmt.Errorf("unknown analysis %q (want structure, integrity, recency, keys or cycles)", run)
	}
}

func lookupInstrumentation(a *analyzer.Analyzer, id int) (*hierarchy.Instrumentation, error) {
	if id == 0 {
		return nil, fmt.Errorf("this analysis needs -instr <id>")
	}
	instr, ok := a.Hierarchy().Instrumentation(id)
	if !ok {
		return nil, fmt.Errorf("instrumentation %d not found in the hierarchy", id)
	}
	return instr, nil
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "❌ "+format+"\n", args...)
	os.Exit(1)
}
