package pdfquiz

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

var pdfMagic = []byte("%PDF-")

// pdftotextBin is the poppler text extractor; tests may point it elsewhere
var pdftotextBin = "pdftotext"

// ExtractPDFText returns the text of each page of a PDF file
func ExtractPDFText(ctx context.Context, path string) ([]string, error) {
	head := make([]byte, len(pdfMagic))
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	n, _ := f.Read(head)
	f.Close()
	if n < len(pdfMagic) || !bytes.Equal(head, pdfMagic) {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrNotPDF)
	}

	cmd := exec.CommandContext(ctx, pdftotextBin, "-layout", "-enc", "UTF-8", path, "-")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	pages := strings.Split(string(output), "\f")
	// pdftotext ends every page with a form feed
	if len(pages) > 0 && strings.TrimSpace(pages[len(pages)-1]) == "" {
		pages = pages[:len(pages)-1]
	}
	return pages, nil
}

// JoinPages concatenates page text, failing when nothing readable remains
func JoinPages(pages []string) (string, error) {
	var sb strings.Builder
	for _, p := range pages {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(p)
	}
	if sb.Len() == 0 {
		return "", ErrEmptyDocument
	}
	return sb.String(), nil
}

// BaseName strips directory and extension from a file name
func BaseName(fileName string) string {
	base := filepath.Base(fileName)
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	return base
}
