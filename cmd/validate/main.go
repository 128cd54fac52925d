// Command validate runs the validation pipeline over a single PDF or
// every PDF in a folder, prints per-document verdicts as JSON, and can
// write the batch as a JSON file or an XLSX report.
// Usage: go run ./cmd/validate -file request.pdf
//        go run ./cmd/validate -dir ./requests -report results.xlsx
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"vpnvalidator/internal/classify"
	"vpnvalidator/internal/config"
	"vpnvalidator/internal/extract"
	"vpnvalidator/internal/fields"
	"vpnvalidator/internal/judge"
	"vpnvalidator/internal/judge/gemini"
	"vpnvalidator/internal/pipeline"
	"vpnvalidator/internal/port"
	"vpnvalidator/internal/report"
	"vpnvalidator/internal/rules"
	"vpnvalidator/internal/signature"
	"vpnvalidator/internal/telemetry/langfuse"
	"vpnvalidator/internal/telemetry/noop"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	var (
		filePath   = flag.String("file", "", "single PDF to validate")
		dirPath    = flag.String("dir", "", "folder of PDFs to validate")
		outPath    = flag.String("out", "", "write the batch result as JSON to this file")
		reportPath = flag.String("report", "", "write an XLSX report to this file")
	)
	flag.Parse()

	if (*filePath == "") == (*dirPath == "") {
		return fmt.Errorf("exactly one of -file or -dir is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	items, err := collectItems(*filePath, *dirPath)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return fmt.Errorf("no PDF files to validate")
	}

	validator, err := buildValidator(cfg)
	if err != nil {
		return err
	}

	result := validator.ValidateBatch(context.Background(), items)

	for _, docRun := range result.Runs {
		out, err := json.MarshalIndent(docRun, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling run: %w", err)
		}
		fmt.Println(string(out))
	}

	summary := result.Summary
	log.Printf("Processed %d documents: %d approved, %d rejected, %d errors (%.0f%% approval, avg %.2fs)",
		summary.Total, summary.Approved, summary.Rejected, summary.Errors,
		summary.ApprovalRate*100, summary.AvgElapsedSeconds)

	if *outPath != "" {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling batch result: %w", err)
		}
		if err := os.WriteFile(*outPath, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", *outPath, err)
		}
		log.Printf("Batch result written to %s", *outPath)
	}

	if *reportPath != "" {
		data, err := report.BuildXLSX(result)
		if err != nil {
			return fmt.Errorf("building report: %w", err)
		}
		if err := os.WriteFile(*reportPath, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", *reportPath, err)
		}
		log.Printf("Report written to %s", *reportPath)
	}

	return nil
}

func collectItems(filePath, dirPath string) ([]pipeline.BatchItem, error) {
	var paths []string
	if filePath != "" {
		paths = append(paths, filePath)
	} else {
		entries, err := os.ReadDir(dirPath)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", dirPath, err)
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
				continue
			}
			paths = append(paths, filepath.Join(dirPath, entry.Name()))
		}
	}

	items := make([]pipeline.BatchItem, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		items = append(items, pipeline.BatchItem{Name: filepath.Base(p), Data: data})
	}
	return items, nil
}

func buildValidator(cfg *config.Config) (*pipeline.Validator, error) {
	engine := rules.NewEngine(cfg.Validator.RequiredFields, cfg.Validator.EmailDomain, cfg.Validator.MinSignatures)
	ruleBased := judge.NewRuleBasedJudge(engine)

	judge.RegisterProvider("gemini", func(jc *config.JudgeConfig) (port.Judge, error) {
		return gemini.NewJudge(jc, &cfg.Validator), nil
	})
	judge.RegisterProvider("rules", func(_ *config.JudgeConfig) (port.Judge, error) {
		return ruleBased, nil
	})

	primary, err := judge.NewJudge(&cfg.Judge)
	if err != nil {
		return nil, fmt.Errorf("creating judge: %w", err)
	}

	var traces port.TraceSink
	if cfg.Telemetry.Enabled() {
		traces = langfuse.NewSink(&cfg.Telemetry)
	} else {
		traces = noop.NewNoopSink()
	}

	return pipeline.NewValidator(
		extract.NewExtractor(),
		classify.NewClassifier(),
		fields.NewExtractor(cfg.Validator.RequiredFields),
		signature.NewDetector(extract.NewRasterizer(cfg.Signature.ResolutionDPI), cfg.Signature, cfg.Validator.MinSignatures),
		engine,
		judge.NewFallbackJudge(primary, ruleBased, cfg.Judge.MaxRetries),
		traces,
	), nil
}
