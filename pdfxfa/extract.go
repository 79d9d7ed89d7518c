// Package pdfxfa pulls the XFA packets out of a PDF file.
package pdfxfa

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// ErrNoXFA is returned for documents without an XFA form.
var ErrNoXFA = errors.New("pdfxfa: document has no XFA form")

// Packet is one named part of an XFA form: template, datasets, config...
type Packet struct {
	Name string
	Data []byte
}

// Extract returns the XFA packets of the PDF read from r, in document
// order. A single XFA stream is returned as one packet named "xdp".
func Extract(r io.ReadSeeker) ([]Packet, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(r, conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}
	return packets(ctx)
}

// ExtractFile is Extract on a file path.
func ExtractFile(path string) ([]Packet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF file: %w", err)
	}
	defer f.Close()
	return Extract(f)
}

// XDP concatenates the packets into one XDP document.
func XDP(pkts []Packet) []byte {
	if len(pkts) == 1 {
		return pkts[0].Data
	}
	var buf bytes.Buffer
	for _, p := range pkts {
		buf.Write(p.Data)
	}
	return buf.Bytes()
}

func packets(ctx *model.Context) ([]Packet, error) {
	root, err := ctx.Catalog()
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog: %w", err)
	}
	obj, found := root.Find("AcroForm")
	if !found {
		return nil, ErrNoXFA
	}
	acroForm, err := ctx.DereferenceDict(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to dereference AcroForm: %w", err)
	}
	if acroForm == nil {
		return nil, ErrNoXFA
	}
	xfaObj, found := acroForm.Find("XFA")
	if !found {
		return nil, ErrNoXFA
	}
	xfaObj, err = ctx.Dereference(xfaObj)
	if err != nil {
		return nil, fmt.Errorf("failed to dereference XFA: %w", err)
	}

	switch o := xfaObj.(type) {
	case types.StreamDict:
		data, err := streamContent(o)
		if err != nil {
			return nil, err
		}
		return []Packet{{Name: "xdp", Data: data}}, nil
	case types.Array:
		return arrayPackets(ctx, o)
	}
	return nil, ErrNoXFA
}

// arrayPackets reads the [name stream name stream ...] form of the XFA
// entry.
func arrayPackets(ctx *model.Context, arr types.Array) ([]Packet, error) {
	var out []Packet
	for i := 0; i+1 < len(arr); i += 2 {
		name, err := ctx.DereferenceStringOrHexLiteral(arr[i], model.V10, nil)
		if err != nil {
			return nil, fmt.Errorf("XFA packet %d: bad name: %w", i/2, err)
		}
		data, err := stream(ctx, arr[i+1])
		if err != nil {
			return nil, fmt.Errorf("XFA packet %q: %w", name, err)
		}
		out = append(out, Packet{Name: name, Data: data})
	}
	if len(out) == 0 {
		return nil, ErrNoXFA
	}
	return out, nil
}

func stream(ctx *model.Context, obj types.Object) ([]byte, error) {
	sd, _, err := ctx.DereferenceStreamDict(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to dereference stream: %w", err)
	}
	if sd == nil {
		return nil, errors.New("not a stream")
	}
	return streamContent(*sd)
}

func streamContent(sd types.StreamDict) ([]byte, error) {
	if err := sd.Decode(); err != nil {
		return nil, fmt.Errorf("failed to decode stream: %w", err)
	}
	return sd.Content, nil
}
