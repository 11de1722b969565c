// Package ingest turns request bodies and files on disk into pipeline documents.
package ingest

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/estimate-parser/internal/common"
	"github.com/joseph-ayodele/estimate-parser/internal/entity"
	"github.com/joseph-ayodele/estimate-parser/internal/llm"
)

const (
	maxSourceNameLen = 255
	maxRawTextLen    = 1 << 20
)

// Request is the JSON document shape shared by the HTTP API and the .json CLI input.
type Request struct {
	SourceName   string            `json:"source_name"`
	RawText      string            `json:"raw_text"`
	Tables       [][][]string      `json:"tables,omitempty"`
	PreExtracted json.RawMessage   `json:"pre_extracted,omitempty"`
	VendorName   string            `json:"vendor_name,omitempty"`
	FormFields   map[string]string `json:"form_fields,omitempty"`
	Save         bool              `json:"save,omitempty"`
}

// Validate checks field sizes. Empty content is allowed and yields an estimate with no items.
func (r Request) Validate() error {
	v := common.NewValidator()
	v.Field("source_name", r.SourceName, common.Length(0, maxSourceNameLen))
	v.Field("raw_text", r.RawText, common.Length(0, maxRawTextLen))
	v.Field("vendor_name", r.VendorName, common.Length(0, maxSourceNameLen))
	return common.ValidateAndReturnError(v)
}

// Document validates r and decodes the optional vision payload into a pipeline document.
func (r Request) Document(logger *slog.Logger) (entity.Document, error) {
	if err := r.Validate(); err != nil {
		return entity.Document{}, err
	}
	doc := entity.Document{
		SourceName: strings.TrimSpace(r.SourceName),
		RawText:    r.RawText,
		Tables:     r.Tables,
		VendorName: strings.TrimSpace(r.VendorName),
		FormFields: r.FormFields,
	}
	if hasPayload(r.PreExtracted) {
		p, err := llm.DecodePayload(r.PreExtracted, logger)
		if err != nil {
			return entity.Document{}, err
		}
		p.ApplyTo(&doc)
	}
	return doc, nil
}

func hasPayload(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}
