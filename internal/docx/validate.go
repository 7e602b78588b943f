package docx

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// requiredEntries are the archive parts every well-formed .docx carries
var requiredEntries = []string{
	"[Content_Types].xml",
	"word/document.xml",
}

// Validate checks that the file at path is a structurally valid .docx
// package: correct extension, readable zip archive, required parts present,
// and a word-processing content type declared. It returns nil for a valid
// package and a descriptive error otherwise.
func Validate(filePath string) error {
	info, err := os.Stat(filePath)
	if err != nil {
		return fmt.Errorf("file does not exist: %s", filePath)
	}
	if info.IsDir() {
		return fmt.Errorf("not a file: %s", filePath)
	}

	if ext := strings.ToLower(filepath.Ext(filePath)); ext != ".docx" {
		return fmt.Errorf("invalid file extension: expected .docx, got %q", ext)
	}

	zr, err := zip.OpenReader(filePath)
	if err != nil {
		return fmt.Errorf("not a valid zip archive: %w", err)
	}
	defer zr.Close()

	for _, name := range requiredEntries {
		if findEntry(&zr.Reader, name) == nil {
			return fmt.Errorf("invalid document package: missing %s", name)
		}
	}

	contentTypes, err := readEntryString(&zr.Reader, "[Content_Types].xml")
	if err != nil {
		return fmt.Errorf("could not read content types: %w", err)
	}
	if !strings.Contains(contentTypes, "wordprocessingml") {
		return fmt.Errorf("invalid document package: not a word-processing document")
	}

	return nil
}

func readEntryString(zr *zip.Reader, name string) (string, error) {
	f := findEntry(zr, name)
	if f == nil {
		return "", fmt.Errorf("missing %s", name)
	}
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// FileInfo holds basic file facts recorded in the audit trail
type FileInfo struct {
	Filename  string    `json:"filename"`
	SizeBytes int64     `json:"size_bytes"`
	SizeMB    float64   `json:"size_mb"`
	Extension string    `json:"extension"`
	Modified  time.Time `json:"modified"`
}

// Stat returns basic file information for audit logging
func Stat(filePath string) (FileInfo, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return FileInfo{}, fmt.Errorf("failed to stat file: %w", err)
	}

	return FileInfo{
		Filename:  filepath.Base(filePath),
		SizeBytes: info.Size(),
		SizeMB:    float64(info.Size()) / (1024 * 1024),
		Extension: strings.ToLower(filepath.Ext(filePath)),
		Modified:  info.ModTime(),
	}, nil
}
