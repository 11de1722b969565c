package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/joseph-ayodele/estimate-parser/internal/common"
	"github.com/joseph-ayodele/estimate-parser/internal/export"
	"github.com/joseph-ayodele/estimate-parser/internal/ingest"
	"github.com/joseph-ayodele/estimate-parser/internal/pipeline"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		file   = flag.String("file", "", "document to parse: .txt (OCR text) or .json (required)")
		xlsx   = flag.String("xlsx", "", "also write the estimate as XLSX to this path")
		vendor = flag.String("vendor", "", "vendor name override")
	)
	flag.Parse()

	if *file == "" {
		printError("Error: --file is required\n")
		os.Exit(1)
	}

	cfg := common.LoadConfig()
	logger := common.NewLogger(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	doc, err := ingest.LoadFile(*file, logger)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	if *vendor != "" {
		doc.VendorName = *vendor
	}

	parser := pipeline.NewParser(pipeline.OptionsFrom(cfg.Extraction), logger)
	res := parser.Parse(doc)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(map[string]any{
		"source_name":     doc.SourceName,
		"strategy":        res.Strategy,
		"text_confidence": res.TextConfidence,
		"estimate":        res.Estimate,
	}); err != nil {
		printError("Error: encode result: %v\n", err)
		os.Exit(1)
	}

	if *xlsx != "" {
		b, err := export.NewService(nil, logger).EstimateXLSX(res.Estimate)
		if err != nil {
			printError("Error: export: %v\n", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*xlsx, b, 0644); err != nil {
			printError("Error: write %s: %v\n", *xlsx, err)
			os.Exit(1)
		}
		logger.Info("estimate written", "path", *xlsx)
	}
}
