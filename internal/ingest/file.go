package ingest

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joseph-ayodele/estimate-parser/constants"
	"github.com/joseph-ayodele/estimate-parser/internal/common"
	"github.com/joseph-ayodele/estimate-parser/internal/entity"
)

// AllowedExt checks if a file extension is one of the document kinds (txt, json).
func AllowedExt(ext string) bool {
	_, ok := constants.AllowedExtensions[constants.NormalizeExt(ext)]
	return ok
}

// LoadFile reads a .txt file as raw OCR text or a .json file as a Request.
// The file's base name is used when the document carries no source name.
func LoadFile(path string, logger *slog.Logger) (entity.Document, error) {
	logger = common.LoggerOrDefault(logger)
	kind, ok := constants.AllowedExtensions[constants.NormalizeExt(filepath.Ext(path))]
	if !ok {
		return entity.Document{}, common.InvalidArgumentErrorf("unsupported document extension: %s", filepath.Ext(path))
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return entity.Document{}, common.WrapError(err, "read "+path)
	}

	var doc entity.Document
	switch kind {
	case constants.FileTypeText:
		doc = entity.Document{RawText: string(b)}
	case constants.FileTypeJSON:
		var req Request
		if err := json.Unmarshal(b, &req); err != nil {
			return entity.Document{}, common.NewAppError("INVALID_DOCUMENT", "document is not valid JSON", fmt.Errorf("%w: %v", common.ErrInvalidInput, err))
		}
		if doc, err = req.Document(logger); err != nil {
			return entity.Document{}, err
		}
	}
	if doc.SourceName == "" {
		doc.SourceName = filepath.Base(path)
	}
	logger.Debug("ingest.file.loaded", "path", path, "kind", kind, "bytes", len(b))
	return doc, nil
}
