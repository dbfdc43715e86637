package flinger

import (
	"io"
	"log/slog"
)

// GenerateOption configures a single Generate call.
//
// Example:
//
//	r, err := flinger.Generate(reg, prog, cfg, "scanline_red",
//	    flinger.WithDump(os.Stderr))
type GenerateOption func(*generateOptions)

type generateOptions struct {
	logger *slog.Logger
	dump   io.Writer
}

func defaultOptions() generateOptions {
	return generateOptions{logger: Logger()}
}

// WithLogger overrides the package logger for one call.
func WithLogger(l *slog.Logger) GenerateOption {
	return func(o *generateOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithDump writes the IR listing of a newly generated routine to w.
// Nothing is written when the routine already existed.
func WithDump(w io.Writer) GenerateOption {
	return func(o *generateOptions) {
		o.dump = w
	}
}
