// Package converter invokes an external LibreOffice process to convert
// legacy office formats to .docx. The converter binary is treated as
// opaque: a file and an output directory go in, success or failure comes
// out. Analysis never depends on this package once a .docx exists.
package converter

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
)

// convertibleFormats are the input extensions LibreOffice converts for us
var convertibleFormats = []string{".doc", ".rtf", ".odt", ".txt"}

var commonPaths = []string{
	"/usr/bin/libreoffice",
	"/usr/local/bin/libreoffice",
	"/Applications/LibreOffice.app/Contents/MacOS/soffice",
}

// Converter wraps headless LibreOffice invocations
type Converter struct {
	sofficePath string
	timeout     time.Duration
	attempts    uint
	logger      *slog.Logger
}

// New creates a Converter. An empty sofficePath triggers PATH and
// well-known-location discovery; conversion is unavailable (but not an
// error) when no binary is found. An explicit path that does not exist is
// also treated as unavailable rather than failing at conversion time.
func New(sofficePath string) *Converter {
	if sofficePath == "" {
		sofficePath = findSoffice()
	} else if _, err := os.Stat(sofficePath); err != nil {
		sofficePath = ""
	}
	return &Converter{
		sofficePath: sofficePath,
		timeout:     60 * time.Second,
		attempts:    3,
		logger:      slog.Default(),
	}
}

func findSoffice() string {
	for _, name := range []string{"libreoffice", "soffice"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	for _, path := range commonPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Available reports whether a converter binary was found
func (c *Converter) Available() bool {
	return c.sofficePath != ""
}

// ConversionNeeded reports whether the file must be converted before
// analysis (anything that is not already a .docx).
func ConversionNeeded(path string) bool {
	return strings.ToLower(filepath.Ext(path)) != ".docx"
}

// SupportedFormats lists accepted input extensions. Legacy formats are
// only listed when a converter binary is available.
func (c *Converter) SupportedFormats() []string {
	formats := []string{".docx"}
	if c.Available() {
		formats = append(formats, convertibleFormats...)
	}
	return formats
}

// ConvertToDOCX converts the input file to .docx in outputDir and returns
// the output path. A .docx input is copied through unchanged. Conversion
// runs in a temporary directory and is retried on failure; each attempt is
// bounded by the converter timeout.
func (c *Converter) ConvertToDOCX(ctx context.Context, inputPath, outputDir string) (string, error) {
	if _, err := os.Stat(inputPath); err != nil {
		return "", fmt.Errorf("input file does not exist: %s", inputPath)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	stem := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	outputPath := filepath.Join(outputDir, stem+".docx")

	ext := strings.ToLower(filepath.Ext(inputPath))
	if ext == ".docx" {
		if sameFile(inputPath, outputPath) {
			return inputPath, nil
		}
		if err := copyFile(inputPath, outputPath); err != nil {
			return "", fmt.Errorf("failed to copy document: %w", err)
		}
		return outputPath, nil
	}

	if !formatConvertible(ext) {
		return "", fmt.Errorf("unsupported file format: %s", ext)
	}
	if !c.Available() {
		return "", fmt.Errorf("document converter not found: install LibreOffice for format conversion")
	}

	err := retry.Do(
		func() error {
			return c.runConversion(ctx, inputPath, outputPath)
		},
		retry.Attempts(c.attempts),
		retry.Delay(2*time.Second),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Warn("conversion attempt failed, retrying",
				"attempt", n+1,
				"input", inputPath,
				"error", err,
			)
		}),
	)
	if err != nil {
		return "", fmt.Errorf("conversion failed: %w", err)
	}

	return outputPath, nil
}

// runConversion performs one headless LibreOffice invocation into a fresh
// temporary directory, then moves the result into place.
func (c *Converter) runConversion(ctx context.Context, inputPath, outputPath string) error {
	tempDir, err := os.MkdirTemp("", "docready-convert-*")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.sofficePath,
		"--headless",
		"--convert-to", "docx",
		"--outdir", tempDir,
		inputPath,
	)

	c.logger.Info("running document conversion",
		"converter", c.sofficePath,
		"input", inputPath,
		"outdir", tempDir,
	)

	output, err := cmd.CombinedOutput()
	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("conversion timed out after %s", c.timeout)
	}
	if err != nil {
		return fmt.Errorf("converter process failed: %w (output: %s)", err, strings.TrimSpace(string(output)))
	}

	converted, err := filepath.Glob(filepath.Join(tempDir, "*.docx"))
	if err != nil || len(converted) == 0 {
		return fmt.Errorf("conversion completed but no output file found")
	}

	if err := moveFile(converted[0], outputPath); err != nil {
		return fmt.Errorf("failed to move converted file: %w", err)
	}
	return nil
}

func formatConvertible(ext string) bool {
	for _, f := range convertibleFormats {
		if f == ext {
			return true
		}
	}
	return false
}

func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}

// moveFile renames, falling back to copy+remove for cross-device moves
// (the temp dir may live on a different filesystem).
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	if err := copyFile(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
