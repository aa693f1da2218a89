// Package main is the Shinsa CLI entry point.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/shinsa/internal/analysis"
	"github.com/hyperjump/shinsa/internal/cli"
	"github.com/hyperjump/shinsa/internal/config"
	"github.com/hyperjump/shinsa/internal/dataset"
	"github.com/hyperjump/shinsa/internal/evaluate"
	"github.com/hyperjump/shinsa/internal/models"
	"github.com/hyperjump/shinsa/internal/mutate"
	"github.com/hyperjump/shinsa/internal/review"
	"github.com/hyperjump/shinsa/internal/section"
	"github.com/hyperjump/shinsa/internal/server"
	"github.com/hyperjump/shinsa/internal/storage"
	"github.com/hyperjump/shinsa/internal/watcher"
	"github.com/hyperjump/shinsa/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/shinsa/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used. Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "generate":
		runGenerate()
	case "attack":
		runAttack()
	case "evaluate":
		runEvaluate()
	case "analyze":
		runAnalyze()
	case "server":
		runServer()
	case "watch":
		runWatch()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("shinsa version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// buildRegistry builds the heading registry with any configured synonyms
// layered on top of the built-in patterns.
func buildRegistry(cfg *config.Config) (*section.Registry, error) {
	registry := section.NewRegistry()
	for name, fragments := range cfg.Sections.Synonyms {
		tag, err := section.ParseTag(name)
		if err != nil {
			return nil, fmt.Errorf("sections.synonyms: %w", err)
		}
		for _, fragment := range fragments {
			if err := registry.Add(tag, fragment, fragment); err != nil {
				return nil, fmt.Errorf("sections.synonyms[%s]: %w", name, err)
			}
		}
	}
	return registry, nil
}

// buildEngine builds the mutation engine from config.
func buildEngine(cfg *config.Config, registry *section.Registry) (*mutate.Engine, error) {
	opts := []mutate.Option{
		mutate.WithLookahead(cfg.Mutation.LookaheadChars),
		mutate.WithInsertionDepth(cfg.Mutation.InsertionDepth),
		mutate.WithMinResultLen(cfg.Mutation.MinResultLen),
	}
	if len(cfg.Mutation.FallbackPositions) > 0 {
		positions := make(map[section.Tag]float64, len(cfg.Mutation.FallbackPositions))
		for name, ratio := range cfg.Mutation.FallbackPositions {
			tag, err := section.ParseTag(name)
			if err != nil {
				return nil, fmt.Errorf("mutation.fallback_positions: %w", err)
			}
			positions[tag] = ratio
		}
		opts = append(opts, mutate.WithFallbackPositions(positions))
	}
	return mutate.NewEngine(registry, opts...), nil
}

// buildGenerator wires a dataset generator from config.
func buildGenerator(cfg *config.Config, logger *zap.Logger) (*dataset.Generator, error) {
	registry, err := buildRegistry(cfg)
	if err != nil {
		return nil, err
	}
	engine, err := buildEngine(cfg, registry)
	if err != nil {
		return nil, err
	}
	return dataset.NewGenerator(engine,
		dataset.WithVariants(cfg.Dataset.Variants),
		dataset.WithStrict(cfg.Dataset.StrictOrDefault()),
		dataset.WithMaxRetries(cfg.Dataset.MaxRetries),
		dataset.WithMinTextLen(cfg.Dataset.MinTextLen),
		dataset.WithLogger(logger),
	), nil
}

func setup(configPath string, debugFlag bool) (*config.Config, *zap.Logger) {
	cfg, resolvedPath, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug || debugFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger.Debug("config loaded", zap.String("config_path", resolvedPath))
	return cfg, logger
}

func runGenerate() {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	input := fs.String("input", "", "source papers JSONL file (required)")
	output := fs.String("output", "variants.jsonl", "output variants JSONL file")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	if *input == "" {
		fmt.Fprintln(os.Stderr, "generate: -input is required")
		fs.Usage()
		os.Exit(1)
	}
	cfg, logger := setup(*configPath, *debug)
	defer logger.Sync()

	gen, err := buildGenerator(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to build generator", zap.Error(err))
	}

	papers, err := dataset.LoadPapers(*input, logger)
	if err != nil {
		logger.Fatal("Failed to load papers", zap.Error(err))
	}
	sampled := dataset.SampleRatio(papers, cfg.Dataset.SampleRatio, cfg.Dataset.Seed)
	logger.Info("papers loaded",
		zap.Int("total", len(papers)), zap.Int("sampled", len(sampled)))

	records := gen.GenerateVariants(sampled, papers, len(sampled), cfg.Dataset.Seed)
	n, err := dataset.WriteAll(*output, records)
	if err != nil {
		logger.Fatal("Failed to write output", zap.Error(err))
	}
	fmt.Printf("Wrote %d variant records to %s\n", n, *output)
}

func runAttack() {
	fs := flag.NewFlagSet("attack", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	input := fs.String("input", "", "source papers JSONL file (required)")
	output := fs.String("output", "attacks.jsonl", "output attacks JSONL file")
	split := fs.String("split", "test", "dataset split tag stamped on every record")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	if *input == "" {
		fmt.Fprintln(os.Stderr, "attack: -input is required")
		fs.Usage()
		os.Exit(1)
	}
	cfg, logger := setup(*configPath, *debug)
	defer logger.Sync()

	gen, err := buildGenerator(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to build generator", zap.Error(err))
	}

	papers, err := dataset.LoadPapers(*input, logger)
	if err != nil {
		logger.Fatal("Failed to load papers", zap.Error(err))
	}
	sampled := dataset.SampleRatio(papers, cfg.Dataset.SampleRatio, cfg.Dataset.Seed)
	logger.Info("papers loaded",
		zap.Int("total", len(papers)), zap.Int("sampled", len(sampled)))

	records := gen.GenerateAttacks(sampled, *split)
	n, err := dataset.WriteAll(*output, records)
	if err != nil {
		logger.Fatal("Failed to write output", zap.Error(err))
	}
	fmt.Printf("Wrote %d attack records to %s\n", n, *output)
}

func runEvaluate() {
	fs := flag.NewFlagSet("evaluate", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	input := fs.String("input", "", "generated dataset JSONL file (required)")
	kind := fs.String("kind", "variants", "dataset kind: variants or attacks")
	export := fs.String("export", "", "export all stored results to this JSONL file afterwards")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	if *input == "" {
		fmt.Fprintln(os.Stderr, "evaluate: -input is required")
		fs.Usage()
		os.Exit(1)
	}
	cfg, logger := setup(*configPath, *debug)
	defer logger.Sync()

	var items []*evaluate.Item
	switch *kind {
	case "variants":
		records, err := dataset.ReadAll[models.VariantRecord](*input)
		if err != nil {
			logger.Fatal("Failed to read dataset", zap.Error(err))
		}
		items = evaluate.ItemsFromVariants(records)
	case "attacks":
		records, err := dataset.ReadAll[models.AttackRecord](*input)
		if err != nil {
			logger.Fatal("Failed to read dataset", zap.Error(err))
		}
		items = evaluate.ItemsFromAttacks(records)
	default:
		fmt.Fprintf(os.Stderr, "evaluate: unknown kind %q; use variants or attacks\n", *kind)
		os.Exit(1)
	}
	logger.Info("dataset loaded", zap.String("kind", *kind), zap.Int("items", len(items)))

	store, err := storage.NewSQLiteResultStore(cfg.Storage.ResultsPath)
	if err != nil {
		logger.Fatal("Failed to open result store", zap.Error(err))
	}
	defer store.Close()

	client, err := review.NewClient(&cfg.Review, review.WithLogger(logger))
	if err != nil {
		logger.Fatal("Failed to create reviewer client", zap.Error(err))
	}

	ev := evaluate.NewEvaluator(client, store,
		evaluate.WithWorkers(cfg.Review.Workers),
		evaluate.WithLogger(logger))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := ev.Run(ctx, items)
	if err != nil && ctx.Err() == nil {
		logger.Fatal("Evaluation failed", zap.Error(err))
	}
	if summary != nil {
		fmt.Printf("Evaluated %d, skipped %d already done, %d failed\n",
			summary.Evaluated, summary.Skipped, summary.Failed)
	}
	if ctx.Err() != nil {
		fmt.Println("Interrupted; progress is saved and the run can be resumed.")
	}

	if *export != "" {
		n, err := ev.Export(context.Background(), *export)
		if err != nil {
			logger.Fatal("Export failed", zap.Error(err))
		}
		fmt.Printf("Exported %d results to %s\n", n, *export)
	}
}

func runAnalyze() {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	input := fs.String("input", "", "results JSONL file (default: read the result store)")
	outputFormat := fs.String("output", "text", "output format: text (human-readable) or json (parseable)")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, logger := setup(*configPath, *debug)
	defer logger.Sync()

	format := cli.OutputText
	switch *outputFormat {
	case "json":
		format = cli.OutputJSON
	case "text":
		format = cli.OutputText
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}

	var results []*models.EvaluationResult
	var err error
	if *input != "" {
		results, err = dataset.ReadAll[models.EvaluationResult](*input)
		if err != nil {
			logger.Fatal("Failed to read results", zap.Error(err))
		}
	} else {
		store, storeErr := storage.NewSQLiteResultStore(cfg.Storage.ResultsPath)
		if storeErr != nil {
			logger.Fatal("Failed to open result store", zap.Error(storeErr))
		}
		defer store.Close()
		results, err = store.ListResults(context.Background())
		if err != nil {
			logger.Fatal("Failed to list results", zap.Error(err))
		}
	}

	report := analysis.NewAnalyzer(analysis.WithLogger(logger)).Analyze(results)
	if err := cli.WriteReport(os.Stdout, report, format); err != nil {
		logger.Fatal("Output failed", zap.Error(err))
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, logger := setup(*configPath, *debug)
	defer logger.Sync()

	registry, err := buildRegistry(cfg)
	if err != nil {
		logger.Fatal("Failed to build registry", zap.Error(err))
	}
	engine, err := buildEngine(cfg, registry)
	if err != nil {
		logger.Fatal("Failed to build engine", zap.Error(err))
	}
	gen := dataset.NewGenerator(engine,
		dataset.WithVariants(cfg.Dataset.Variants),
		dataset.WithStrict(cfg.Dataset.StrictOrDefault()),
		dataset.WithMinTextLen(cfg.Dataset.MinTextLen),
		dataset.WithLogger(logger))

	var store storage.ResultStore
	if s, err := storage.NewSQLiteResultStore(cfg.Storage.ResultsPath); err != nil {
		logger.Warn("result store unavailable; status will omit result counts", zap.Error(err))
	} else {
		store = s
		defer s.Close()
	}

	srv := server.NewServer(registry, engine, gen, store, &cfg.Server, logger)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func runWatch() {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	outputDir := fs.String("output-dir", ".", "directory for regenerated variant files")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, logger := setup(*configPath, *debug)
	defer logger.Sync()

	if len(cfg.Watch.Files) == 0 {
		fmt.Fprintln(os.Stderr, "watch: no files configured under watch.files")
		os.Exit(1)
	}

	gen, err := buildGenerator(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to build generator", zap.Error(err))
	}

	regenerate := func(path string) {
		papers, err := dataset.LoadPapers(path, logger)
		if err != nil {
			logger.Warn("reload failed", zap.String("path", path), zap.Error(err))
			return
		}
		sampled := dataset.SampleRatio(papers, cfg.Dataset.SampleRatio, cfg.Dataset.Seed)
		records := gen.GenerateVariants(sampled, papers, len(sampled), cfg.Dataset.Seed)
		out := variantOutputPath(*outputDir, path)
		n, err := dataset.WriteAll(out, records)
		if err != nil {
			logger.Error("regeneration write failed", zap.String("path", out), zap.Error(err))
			return
		}
		logger.Info("dataset regenerated",
			zap.String("source", path), zap.String("output", out), zap.Int("records", n))
	}

	watchOpts := []watcher.Option{watcher.WithLogger(logger)}
	if cfg.Watch.DebounceMS > 0 {
		watchOpts = append(watchOpts, watcher.WithDebounce(time.Duration(cfg.Watch.DebounceMS)*time.Millisecond))
	}
	w, err := watcher.NewWatcher(cfg.Watch.Files, regenerate, watchOpts...)
	if err != nil {
		logger.Fatal("Failed to create watcher", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		logger.Fatal("Failed to start watcher", zap.Error(err))
	}
	defer w.Stop()
	logger.Info("watching source files", zap.Strings("files", w.Files()))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	logger.Info("Shutting down...")
}

// variantOutputPath maps a watched source file to its regenerated output:
// papers.jsonl becomes <dir>/papers_variants.jsonl.
func variantOutputPath(dir, source string) string {
	base := filepath.Base(source)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, stem+"_variants.jsonl")
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("config: %s\n", resolvedPath)
	fmt.Printf("results db: %s\n", cfg.Storage.ResultsPath)
	fmt.Printf("review model: %s (workers: %d)\n", cfg.Review.Model, cfg.Review.Workers)

	store, err := storage.NewSQLiteResultStore(cfg.Storage.ResultsPath)
	if err != nil {
		fmt.Printf("results: unavailable (%v)\n", err)
		return
	}
	defer store.Close()
	count, err := store.CountResults(context.Background())
	if err != nil {
		fmt.Printf("results: unavailable (%v)\n", err)
		return
	}
	fmt.Printf("results: %d\n", count)
}

func printUsage() {
	fmt.Print(`Shinsa - section ablation and attack dataset tools for review models

Usage:
  shinsa <command> [flags]

Commands:
  generate   Build ablation variant datasets from a papers JSONL file
  attack     Build adversarial attack datasets from a papers JSONL file
  evaluate   Send generated records to the review model and store results
  analyze    Summarize stored results (score deltas, significance, attacks)
  server     Run the HTTP API
  watch      Watch source files and regenerate variants on change
  status     Show configuration and stored result counts
  version    Print version
  help       Show this help

Run "shinsa <command> -h" for command flags.
`)
}
