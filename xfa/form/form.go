// Package form runs the whole pipeline on an XDP document: parsing,
// prototype resolution, data binding and pagination, and writes user
// values back to the datasets.
package form

import (
	"context"
	"fmt"
	"io"

	"github.com/wudi/xfalayout/observability"
	"github.com/wudi/xfalayout/xfa"
	"github.com/wudi/xfalayout/xfa/bind"
	"github.com/wudi/xfalayout/xfa/layout"
	"github.com/wudi/xfalayout/xfa/proto"
)

// Session owns one bound form. It is not safe for concurrent use.
type Session struct {
	Doc *xfa.Document
	// Form is the template merged with the data.
	Form *xfa.Node
	// Data is the data root, including nodes created while binding.
	Data *xfa.Node

	engine *layout.Engine
	logger observability.Logger
	tracer observability.Tracer
}

type config struct {
	logger        observability.Logger
	tracer        observability.Tracer
	layoutOptions []layout.Option
}

// Option configures a Session.
type Option func(*config)

func WithLogger(l observability.Logger) Option {
	return func(c *config) { c.logger = observability.OrNop(l) }
}

func WithTracer(t observability.Tracer) Option {
	return func(c *config) {
		if t != nil {
			c.tracer = t
		}
	}
}

// WithLayoutOptions passes options to the layout engine.
func WithLayoutOptions(opts ...layout.Option) Option {
	return func(c *config) { c.layoutOptions = append(c.layoutOptions, opts...) }
}

// Open parses an XDP document from r and binds it.
func Open(ctx context.Context, r io.Reader, opts ...Option) (*Session, error) {
	c := newConfig(opts)
	_, span := c.tracer.StartSpan(ctx, observability.SpanParse)
	doc, err := xfa.Parse(r)
	if err != nil {
		span.SetError(err)
		span.Finish()
		return nil, fmt.Errorf("parse xdp: %w", err)
	}
	span.Finish()
	return newSession(ctx, doc, c)
}

// New binds an already parsed document.
func New(ctx context.Context, doc *xfa.Document, opts ...Option) (*Session, error) {
	return newSession(ctx, doc, newConfig(opts))
}

func newConfig(opts []Option) *config {
	c := &config{logger: observability.NopLogger{}, tracer: observability.NopTracer()}
	for _, o := range opts {
		o(c)
	}
	return c
}

func newSession(ctx context.Context, doc *xfa.Document, c *config) (*Session, error) {
	if doc == nil || doc.Template == nil {
		return nil, xfa.ErrNoTemplate
	}
	if doc.RootSubform() == nil {
		return nil, xfa.ErrNoSubform
	}

	_, span := c.tracer.StartSpan(ctx, observability.SpanPrototypes)
	proto.Resolve(doc, proto.WithLogger(c.logger))
	span.Finish()

	b := bind.NewBinder(doc, bind.WithLogger(c.logger), bind.WithTracer(c.tracer))
	form := b.Bind(ctx)

	lopts := append([]layout.Option{layout.WithLogger(c.logger), layout.WithTracer(c.tracer)}, c.layoutOptions...)
	return &Session{
		Doc:    doc,
		Form:   form,
		Data:   b.Data(),
		engine: layout.NewEngine(lopts...),
		logger: c.logger,
		tracer: c.tracer,
	}, nil
}

// Paginate starts a new pagination of the bound form. Pages are produced
// as the returned paginator is advanced.
func (s *Session) Paginate() *layout.Paginator {
	return s.engine.Paginate(s.Form, s.Data)
}

// Layout lays out every page.
func (s *Session) Layout(ctx context.Context) ([]*layout.Page, error) {
	pages, err := s.Paginate().All(ctx)
	if err != nil {
		return pages, fmt.Errorf("layout: %w", err)
	}
	s.logger.Debug("xfa: layout done", observability.Int("pages", len(pages)))
	return pages, nil
}

// Serialize writes the datasets packet with values applied. values maps
// the dataId of a rendered field to its new text.
func (s *Session) Serialize(values map[string]string) ([]byte, error) {
	out, err := xfa.Serialize(s.Data, values)
	if err != nil {
		return nil, fmt.Errorf("serialize datasets: %w", err)
	}
	return out, nil
}
