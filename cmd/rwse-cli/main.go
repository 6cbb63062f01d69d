package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ukplab/rwse/rwse"
)

type cliOptions struct {
	configPath string
	setsPath   string
	word       string
	sentence   string
	inputPath  string
	outputPath string
	outputDir  string
	correct    bool
	magnitude  float64
	stdout     bool
}

func main() {
	opts, err := parseFlags()
	if err != nil {
		log.Fatalf("rwse-cli: %v", err)
	}
	if err := run(opts); err != nil {
		log.Fatalf("rwse-cli: %v", err)
	}
}

func parseFlags() (cliOptions, error) {
	var opts cliOptions
	flag.StringVar(&opts.configPath, "config", "", "Path to config.json (default: ./config.json)")
	flag.StringVar(&opts.setsPath, "sets", "", "CSV file with confusion sets, one group per line (default: setsPath from config)")
	flag.StringVar(&opts.word, "word", "", "Single word to check (requires --context)")
	flag.StringVar(&opts.sentence, "context", "", "Sentence with "+rwse.MaskPlaceholder+" in place of the checked word")
	flag.StringVar(&opts.inputPath, "input", "", "CSV file with word,context rows to check in batch")
	flag.StringVar(&opts.outputPath, "output", "", "CSV file to write batch results (default uses --output-dir/result_*.csv)")
	flag.StringVar(&opts.outputDir, "output-dir", "csv", "Directory where result CSVs are written when --output is omitted")
	flag.BoolVar(&opts.correct, "correct", false, "Suggest corrections instead of raw scores")
	flag.Float64Var(&opts.magnitude, "magnitude", 0, "Correction certainty threshold multiplier (default from config)")
	flag.BoolVar(&opts.stdout, "stdout", false, "Print batch results to STDOUT")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s --sets FILE (--word W --context S | --input FILE) [options]\n\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	opts.configPath = strings.TrimSpace(opts.configPath)
	opts.setsPath = strings.TrimSpace(opts.setsPath)
	opts.word = strings.TrimSpace(opts.word)
	opts.inputPath = strings.TrimSpace(opts.inputPath)
	opts.outputPath = strings.TrimSpace(opts.outputPath)
	opts.outputDir = strings.TrimSpace(opts.outputDir)

	single := opts.word != "" || opts.sentence != ""
	if single && (opts.word == "" || opts.sentence == "") {
		flag.Usage()
		return opts, errors.New("--word and --context must be given together")
	}
	if !single && opts.inputPath == "" {
		flag.Usage()
		return opts, errors.New("missing --word/--context pair or --input file")
	}
	return opts, nil
}

func run(opts cliOptions) error {
	cfg, err := rwse.LoadConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	setsPath := opts.setsPath
	if setsPath == "" {
		setsPath = cfg.SetsPath
	}
	if setsPath == "" {
		return errors.New("no confusion sets: pass --sets or set setsPath in config")
	}

	scorer, err := rwse.NewOrtScorer(cfg.Scorer)
	if err != nil {
		return fmt.Errorf("init scorer: %w", err)
	}
	logger := log.New(os.Stderr, "", log.LstdFlags)
	logger.Printf("model %s ready", scorer.ModelID())
	checker, err := rwse.NewChecker(scorer, cfg, logger)
	if err != nil {
		scorer.Close()
		return fmt.Errorf("init checker: %w", err)
	}
	defer checker.Close()

	if err := checker.ConfigureFromFile(setsPath); err != nil {
		return fmt.Errorf("load confusion sets: %w", err)
	}

	ctx := context.Background()
	if opts.word != "" {
		return runSingle(ctx, checker, opts)
	}
	return runBatch(ctx, checker, opts)
}

func runSingle(ctx context.Context, checker *rwse.Checker, opts cliOptions) error {
	if opts.correct {
		corr, err := checker.Correct(ctx, opts.word, opts.sentence, opts.magnitude)
		if err != nil {
			return err
		}
		if corr.Changed() {
			fmt.Printf("%s -> %s (certainty %.4f)\n", corr.Original, corr.Suggestion, corr.Certainty)
		} else {
			fmt.Printf("%s unchanged\n", corr.Original)
		}
		printPredictions(corr.Result)
		return nil
	}
	res, err := checker.Check(ctx, opts.word, opts.sentence)
	if err != nil {
		return err
	}
	printPredictions(res)
	return nil
}

func printPredictions(res rwse.Result) {
	for _, p := range res.Sorted() {
		fmt.Printf("  %-15s %.6f\n", p.Candidate, p.Score)
	}
}

func runBatch(ctx context.Context, checker *rwse.Checker, opts cliOptions) error {
	rows, err := readInputRows(opts.inputPath)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return errors.New("input file does not contain any word,context rows")
	}

	outputPath, err := resolveOutputPath(opts.outputPath, opts.outputDir)
	if err != nil {
		return err
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create result file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write([]string{"word", "context", "best", "best_score", "suggestion", "certainty"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, row := range rows {
		corr, err := checker.Correct(ctx, row.word, row.sentence, opts.magnitude)
		if err != nil {
			return fmt.Errorf("row %d (%q): %w", i+1, row.word, err)
		}
		best, _ := corr.Result.Best()
		record := []string{
			row.word,
			row.sentence,
			best.Candidate,
			fmt.Sprintf("%.6f", best.Score),
			corr.Suggestion,
			fmt.Sprintf("%.4f", corr.Certainty),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
		if opts.stdout {
			fmt.Printf("%d. %s: best=%s (%.6f) suggestion=%s\n", i+1, row.word, best.Candidate, best.Score, corr.Suggestion)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush result: %w", err)
	}
	fmt.Printf("results written to %s\n", outputPath)
	return nil
}

type inputRow struct {
	word     string
	sentence string
}

// readInputRows parses a two-column CSV: checked word, masked context.
func readInputRows(path string) ([]inputRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.Comment = '#'
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse input: %w", err)
	}
	rows := make([]inputRow, 0, len(records))
	for _, record := range records {
		if len(record) < 2 {
			continue
		}
		word := strings.TrimSpace(record[0])
		sentence := strings.TrimSpace(record[1])
		if word == "" || sentence == "" {
			continue
		}
		rows = append(rows, inputRow{word: word, sentence: sentence})
	}
	return rows, nil
}

func resolveOutputPath(path, dir string) (string, error) {
	if path != "" {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("resolve output path: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
			return "", fmt.Errorf("create output directory: %w", err)
		}
		return absPath, nil
	}
	if dir == "" {
		dir = "csv"
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve output dir: %w", err)
	}
	if err := os.MkdirAll(absDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	filename := fmt.Sprintf("result_%s.csv", time.Now().Format("20060102150405"))
	return filepath.Join(absDir, filename), nil
}
