package config

import (
	"fmt"
	"strings"
)

// ExportConfig configures `slidedeck export`.
type ExportConfig struct {
	Format      string `yaml:"format"`      // html, pdf
	Output      string `yaml:"output"`      // default: <title>_slides.<format>
	Concurrency int    `yaml:"concurrency"` // fragment workers
	Sanitize    bool   `yaml:"sanitize"`    // strip scripts and event handlers
	PageSize    string `yaml:"page_size"`   // A4, Letter, Legal (any case)
	Margin      string `yaml:"margin"`      // CSS length, e.g. 0.5in
}

// PageSizes lists the paper names the PDF renderer knows. Matching is
// case-insensitive.
var PageSizes = []string{"A4", "Letter", "Legal"}

// ValidPageSize reports whether name is one of PageSizes, ignoring case.
func ValidPageSize(name string) bool {
	for _, p := range PageSizes {
		if strings.EqualFold(p, name) {
			return true
		}
	}
	return false
}

// DefaultExportConfig returns export defaults matching the A4 layout the
// navigation page prints with.
func DefaultExportConfig() ExportConfig {
	return ExportConfig{
		Format:      "pdf",
		Concurrency: 4,
		PageSize:    "A4",
		Margin:      "0.5in",
	}
}

// Validate checks the export section.
func (c ExportConfig) Validate() error {
	switch c.Format {
	case "", "html", "pdf":
	default:
		return fmt.Errorf("export.format must be html or pdf, got %q", c.Format)
	}
	if c.PageSize != "" && !ValidPageSize(c.PageSize) {
		return fmt.Errorf("export.page_size must be one of %s, got %q", strings.Join(PageSizes, ", "), c.PageSize)
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("export.concurrency must be >= 0, got %d", c.Concurrency)
	}
	return nil
}
