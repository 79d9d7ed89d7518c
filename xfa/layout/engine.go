// Package layout lays a bound XFA form out into pages. Pagination is a
// resumable state machine: each call to Paginator.Next lays out and
// returns one page.
package layout

import (
	"github.com/wudi/xfalayout/fonts"
	"github.com/wudi/xfalayout/observability"
	"github.com/wudi/xfalayout/xfa"
)

const (
	// DefaultMaxAttempts bounds the layout attempts of flowed containers.
	DefaultMaxAttempts = 2
	// DefaultMaxEmptyPages is how many consecutive empty pages stop
	// pagination.
	DefaultMaxEmptyPages = 3

	defaultPageWidth  = 612
	defaultPageHeight = 792
)

// Engine holds the configuration shared by the paginators it creates.
type Engine struct {
	maxAttempts   int
	maxEmptyPages int
	pageWidth     float64
	pageHeight    float64
	measurer      fonts.Measurer
	logger        observability.Logger
	tracer        observability.Tracer
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxAttempts sets how many times an lr-tb or rl-tb container retries
// its children, the last attempt on a fresh line. Values below 1 are
// ignored.
func WithMaxAttempts(n int) Option {
	return func(e *Engine) {
		if n >= 1 {
			e.maxAttempts = n
		}
	}
}

// WithMaxEmptyPages sets how many consecutive empty pages end pagination.
func WithMaxEmptyPages(n int) Option {
	return func(e *Engine) {
		if n >= 1 {
			e.maxEmptyPages = n
		}
	}
}

// WithDefaultPageSize sets the page size used for page areas without a
// medium.
func WithDefaultPageSize(w, h float64) Option {
	return func(e *Engine) {
		if w > 0 && h > 0 {
			e.pageWidth, e.pageHeight = w, h
		}
	}
}

// WithMeasurer sets the text measurer.
func WithMeasurer(m fonts.Measurer) Option {
	return func(e *Engine) {
		if m != nil {
			e.measurer = m
		}
	}
}

func WithLogger(l observability.Logger) Option {
	return func(e *Engine) { e.logger = observability.OrNop(l) }
}

func WithTracer(t observability.Tracer) Option {
	return func(e *Engine) {
		if t != nil {
			e.tracer = t
		}
	}
}

// NewEngine creates an engine with optional configuration.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		maxAttempts:   DefaultMaxAttempts,
		maxEmptyPages: DefaultMaxEmptyPages,
		pageWidth:     defaultPageWidth,
		pageHeight:    defaultPageHeight,
		measurer:      fonts.Fixed{},
		logger:        observability.NopLogger{},
		tracer:        observability.NopTracer(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Paginate prepares the pagination of form, the tree produced by the
// binder. data is the data root "$data" refers to; it may be nil.
func (e *Engine) Paginate(form, data *xfa.Node) *Paginator {
	return newPaginator(e, form, data)
}
