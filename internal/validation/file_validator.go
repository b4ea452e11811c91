// Package validation checks that workbook inputs look like .xlsx files before
// they are handed to the spreadsheet reader.
package validation

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"enrollrank/internal/enrollment"
)

// zipMIME is the container type every Office Open XML workbook detects as,
// directly or through a more specific child type.
const zipMIME = "application/zip"

// FileValidator provides workbook validation for the CLI and the HTTP uploads
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateWorkbookFile checks that path is a readable, non-temporary .xlsx
// file. Failures wrap enrollment.ErrUnreadableWorkbook.
func (v *FileValidator) ValidateWorkbookFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("Workbook does not exist",
			slog.String("file", path))
		return fmt.Errorf("%w: file %s does not exist", enrollment.ErrUnreadableWorkbook, path)
	}
	if err != nil {
		v.logger.Error("Failed to stat workbook",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: failed to stat file %s: %v", enrollment.ErrUnreadableWorkbook, path, err)
	}
	if info.IsDir() {
		v.logger.Error("Path is a directory, not a file",
			slog.String("path", path))
		return fmt.Errorf("%w: %s is a directory, not a file", enrollment.ErrUnreadableWorkbook, path)
	}

	// Excel leaves lock files named ~$<name>.xlsx next to open workbooks.
	if strings.HasPrefix(filepath.Base(path), "~$") {
		v.logger.Warn("Refusing temporary Excel file",
			slog.String("file", path))
		return fmt.Errorf("%w: %s is a temporary Excel file", enrollment.ErrUnreadableWorkbook, path)
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("Workbook is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: file %s is not readable: %v", enrollment.ErrUnreadableWorkbook, path, err)
	}
	defer file.Close()

	if err := SniffWorkbook(filepath.Base(path), file); err != nil {
		v.logger.Error("File is not an .xlsx workbook",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return err
	}

	v.logger.Debug("Workbook validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// SniffWorkbook inspects the leading bytes of r and rejects content that is
// not a zip container, as well as legacy .xls names. r is rewound afterwards.
func SniffWorkbook(name string, r io.ReadSeeker) error {
	if strings.EqualFold(filepath.Ext(name), ".xls") {
		return fmt.Errorf("%w: legacy .xls workbooks are not supported, save %s as .xlsx", enrollment.ErrUnreadableWorkbook, name)
	}

	mtype, err := mimetype.DetectReader(r)
	if err != nil {
		return fmt.Errorf("%w: %v", enrollment.ErrUnreadableWorkbook, err)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("%w: rewind upload: %v", enrollment.ErrProcessing, err)
	}

	for m := mtype; m != nil; m = m.Parent() {
		if m.Is(zipMIME) {
			return nil
		}
	}
	return fmt.Errorf("%w: content detected as %s", enrollment.ErrUnreadableWorkbook, mtype.String())
}
