// Package parser converts uploaded document bytes into clean UTF-8 text,
// dispatching on file extension.
package parser

import (
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/helixrag/ragengine/internal/errs"
)

// Parse converts fileName's bytes to text, selecting a strategy from its
// extension. Unknown extensions fall back to a lossy UTF-8 decode, logging
// a warning rather than failing outright.
func Parse(fileName string, data []byte, log *logrus.Logger) (string, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".txt", ".csv", ".md", ".json":
		return decodeUTF8(data), nil
	case ".pdf":
		return parsePDF(data)
	case ".docx":
		return parseDOCX(data)
	case ".html", ".htm":
		return parseHTML(data), nil
	default:
		log.WithField("file_name", fileName).Warn("unrecognized extension, falling back to UTF-8 decode")
		return decodeUTF8(data), nil
	}
}

// decodeUTF8 replaces invalid byte sequences rather than failing, since
// plain-text formats are treated permissively.
func decodeUTF8(data []byte) string {
	return strings.ToValidUTF8(string(data), "�")
}

// UnsupportedFileType reports whether ext is not one of the extensions the
// upload endpoint accepts (§6 Upload constraints).
func UnsupportedFileType(fileName string) error {
	ext := strings.ToLower(filepath.Ext(fileName))
	allowed := map[string]bool{
		".txt": true, ".pdf": true, ".md": true, ".csv": true,
		".json": true, ".docx": true, ".html": true, ".htm": true,
	}
	if !allowed[ext] {
		return errs.New(errs.KindUnsupportedFile, "unsupported file type: "+ext)
	}
	return nil
}
