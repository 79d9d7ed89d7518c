// Command xfarender lays out XFA forms and writes the pages as HTML, SVG
// or JSON. Inputs are XDP files or PDF files carrying an XFA form.
package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/wudi/xfalayout/config"
	"github.com/wudi/xfalayout/fonts"
	"github.com/wudi/xfalayout/observability"
	"github.com/wudi/xfalayout/pdfxfa"
	"github.com/wudi/xfalayout/render"
	"github.com/wudi/xfalayout/xfa/form"
	"github.com/wudi/xfalayout/xfa/layout"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "xfarender: %v\n", err)
		os.Exit(2)
	}
	if len(cfg.Inputs) == 0 {
		fmt.Fprintf(os.Stderr, "Usage: xfarender [flags] <form.xdp|form.pdf>...\n")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, cfg, logger(cfg)); err != nil {
		fmt.Fprintf(os.Stderr, "xfarender: %v\n", err)
		os.Exit(1)
	}
}

func logger(cfg *config.Config) observability.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return observability.NewSlogLogger(slog.New(h))
}

func run(ctx context.Context, cfg *config.Config, log observability.Logger) error {
	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	opts := append(cfg.LayoutOptions(), layout.WithMeasurer(fonts.New(cfg.Measurer)))
	for _, in := range cfg.Inputs {
		if err := renderFile(ctx, cfg, log.With(observability.String("input", in)), in, opts); err != nil {
			return fmt.Errorf("%s: %w", in, err)
		}
	}
	return nil
}

// readXDP returns the XDP of an input, pulling the packets out of PDFs.
func readXDP(path string) (io.Reader, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		pkts, err := pdfxfa.ExtractFile(path)
		if err != nil {
			return nil, err
		}
		return bytes.NewReader(pdfxfa.XDP(pkts)), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}

func renderFile(ctx context.Context, cfg *config.Config, log observability.Logger, path string, opts []layout.Option) error {
	r, err := readXDP(path)
	if err != nil {
		return err
	}
	s, err := form.Open(ctx, r, form.WithLogger(log), form.WithLayoutOptions(opts...))
	if err != nil {
		return err
	}
	pages, err := s.Layout(ctx)
	if err != nil {
		return err
	}
	log.Info("laid out form", observability.Int("pages", len(pages)))

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	switch cfg.Output {
	case config.OutputHTML:
		return writeFile(filepath.Join(cfg.OutDir, base+".html"), func(w io.Writer) error {
			return render.HTML(w, base, pages)
		})
	case config.OutputJSON:
		return writeFile(filepath.Join(cfg.OutDir, base+".json"), func(w io.Writer) error {
			return render.JSON(w, pages)
		})
	case config.OutputSVG:
		p, err := render.NewPreviewer()
		if err != nil {
			return err
		}
		for _, page := range pages {
			name := filepath.Join(cfg.OutDir, fmt.Sprintf("%s-%d.svg", base, page.Index+1))
			if err := writeFile(name, func(w io.Writer) error { return p.SVG(w, page) }); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("unknown output %q", cfg.Output)
}

func writeFile(name string, write func(io.Writer) error) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return write(f)
}
