// Package pipeline reconciles a document into an Estimate by trying the
// extraction strategies in priority order.
package pipeline

import (
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/estimate-parser/constants"
	"github.com/joseph-ayodele/estimate-parser/internal/common"
	"github.com/joseph-ayodele/estimate-parser/internal/entity"
	"github.com/joseph-ayodele/estimate-parser/internal/extract"
	"github.com/joseph-ayodele/estimate-parser/internal/normalize"
	"github.com/joseph-ayodele/estimate-parser/internal/ocr"
)

// Options configures a Parser.
type Options struct {
	Extract        extract.Config
	Normalize      normalize.Config
	TaxRate        decimal.Decimal
	VendorSentinel string
	// Now supplies the date used when none can be found. Defaults to time.Now.
	Now func() time.Time
}

// DefaultOptions returns the production settings.
func DefaultOptions() Options {
	return Options{
		Extract:        extract.DefaultConfig(),
		Normalize:      normalize.DefaultConfig(),
		TaxRate:        decimal.RequireFromString("0.10"),
		VendorSentinel: constants.UnknownVendor,
		Now:            time.Now,
	}
}

// OptionsFrom maps the application config onto parser options.
func OptionsFrom(c common.ExtractionConfig) Options {
	opts := DefaultOptions()
	opts.Extract = extract.ConfigFrom(c)
	if c.StatutoryKeywords {
		opts.Normalize.StatutoryKeywords = append([]string(nil), constants.StatutoryKeywords...)
	}
	opts.TaxRate = c.TaxRate
	if c.VendorSentinel != "" {
		opts.VendorSentinel = c.VendorSentinel
	}
	return opts
}

// Result is the parsed estimate plus how it was obtained.
type Result struct {
	Estimate entity.Estimate
	Strategy constants.Strategy
	// TextConfidence is a heuristic score of how estimate-like the raw text looks.
	TextConfidence float32
}

// Parser is immutable after construction and safe for concurrent use.
type Parser struct {
	opts       Options
	normalizer *normalize.Normalizer
	table      *extract.TableExtractor
	text       *extract.TextExtractor
	logger     *slog.Logger
}

func NewParser(opts Options, logger *slog.Logger) *Parser {
	logger = common.LoggerOrDefault(logger)
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.VendorSentinel == "" {
		opts.VendorSentinel = constants.UnknownVendor
	}
	return &Parser{
		opts:       opts,
		normalizer: normalize.New(opts.Normalize),
		table:      extract.NewTableExtractor(opts.Extract, logger),
		text:       extract.NewTextExtractor(opts.Extract, logger),
		logger:     logger,
	}
}

// Parse never fails: unusable input yields an estimate with no items.
func (p *Parser) Parse(doc entity.Document) Result {
	log := p.logger.With("source", doc.SourceName)
	text := ocr.Normalize(doc.RawText, ocr.Options{FoldWidth: p.opts.Extract.FoldWidth})

	items, strategy := p.extractItems(doc, text, log)
	excl, incl := p.totals(items, doc.PreExtractedTotals)

	est := entity.Estimate{
		VendorName:   p.vendor(doc, text),
		EstimateDate: p.date(doc, text),
		TotalExclTax: excl,
		TotalInclTax: incl,
		Items:        items,
	}
	if doc.VendorAddress != "" {
		addr := doc.VendorAddress
		est.VendorAddress = &addr
	}

	res := Result{Estimate: est, Strategy: strategy, TextConfidence: ocr.Confidence(text)}
	log.Info("pipeline.parse.ok",
		"strategy", strategy,
		"items", len(items),
		"total_excl_tax", excl,
		"total_incl_tax", incl,
		"vendor", est.VendorName,
		"text_confidence", res.TextConfidence,
	)
	return res
}
