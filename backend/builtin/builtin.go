// Package builtin assembles the registry of every backend in this module.
package builtin

import (
	"image/color"

	"github.com/gogpu/projektor/backend"
	"github.com/gogpu/projektor/backend/mupdf"
	"github.com/gogpu/projektor/backend/scan"
	"github.com/gogpu/projektor/backend/vector"
)

// Config holds settings passed on to individual backends.
type Config struct {
	// ScanDPI is the resolution assumed for scanned page images.
	// Zero means scan.DefaultDPI.
	ScanDPI float64

	// Paper is the background of vector-rendered pages. Nil means white.
	Paper color.Color
}

// NewRegistry returns a registry holding MuPDF, Vector and Scan, in that
// order. MuPDF is the default.
func NewRegistry(cfg Config) *backend.Registry {
	reg := backend.NewRegistry()
	reg.Register(mupdf.Name, func() backend.Backend { return mupdf.New() })
	reg.Register(vector.Name, func() backend.Backend { return vector.New(vector.WithBackground(cfg.Paper)) })
	reg.Register(scan.Name, func() backend.Backend { return scan.New(scan.WithDPI(cfg.ScanDPI)) })
	return reg
}
