package constants

import "strings"

// Document file kinds accepted by the CLIs.
const (
	FileTypeText = "TXT"
	FileTypeJSON = "JSON"
)

// AllowedExtensions holds the document extensions picked up by batch parsing.
var AllowedExtensions = map[string]string{
	"txt":  FileTypeText,
	"json": FileTypeJSON,
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
