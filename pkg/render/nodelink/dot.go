package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/popgraph/pkg/errors"
	"github.com/matzehuels/popgraph/pkg/observability"
	"github.com/matzehuels/popgraph/pkg/resource"
)

// Output formats accepted by [Export].
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Kinds limits the diagram to these entity kinds. Empty means all.
	Kinds []resource.Kind

	// Detailed includes every attribute in node labels.
	// When false, only the kind and display name are shown.
	Detailed bool
}

func (o Options) includes(k resource.Kind) bool {
	return len(o.Kinds) == 0 || slices.Contains(o.Kinds, k)
}

// ToDOT converts a resource graph to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG].
//
// Every entity of an included kind becomes a node. Every resolved relation
// between two included entities becomes an edge labeled with the relation
// name. Placeholders for missing references are left out.
func ToDOT(s *resource.Store, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontsize=10, fontcolor=grey40];\n")
	buf.WriteString("  ranksep=0.8;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, k := range resource.Kinds {
		if !opts.includes(k) {
			continue
		}
		for _, r := range s.Collection(k) {
			attrs := []string{
				fmt.Sprintf("label=%q", fmtLabel(r, opts.Detailed)),
				fmt.Sprintf("fillcolor=%q", kindColor[k]),
			}
			fmt.Fprintf(&buf, "  %q [%s];\n", nodeID(r), strings.Join(attrs, ", "))
		}
	}

	buf.WriteString("\n")
	for _, k := range resource.Kinds {
		if !opts.includes(k) {
			continue
		}
		for _, r := range s.Collection(k) {
			for _, name := range resource.Relations(k) {
				rel, err := r.Resolve(name)
				if err != nil {
					continue
				}
				for _, to := range rel.All() {
					if resource.IsDummy(to) || !opts.includes(to.Kind()) {
						continue
					}
					fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", nodeID(r), nodeID(to), name)
				}
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

var kindColor = map[resource.Kind]string{
	resource.KindProduct:      "#e8f1fb",
	resource.KindOffer:        "#fdf3e1",
	resource.KindMerchant:     "#e6f5ea",
	resource.KindDeal:         "#fbe9ea",
	resource.KindCategory:     "#f0ecf8",
	resource.KindBrand:        "#f6f6f6",
	resource.KindDealType:     "#fbe9ea",
	resource.KindCountry:      "#eef7f7",
	resource.KindMerchantType: "#e6f5ea",
}

func nodeID(r resource.Resource) string {
	return string(r.Kind()) + ":" + r.ID()
}

func fmtLabel(r resource.Resource, detailed bool) string {
	head := r.Kind().Singular() + "\n" + resource.Name(r)
	if !detailed {
		return head
	}

	attrs := r.Attributes()
	names := attrs.Names()
	slices.Sort(names)
	parts := make([]string, 0, len(names))
	for _, k := range names {
		v, _ := attrs.String(k)
		parts = append(parts, fmt.Sprintf("%s: %s", k, v))
	}
	return head + "\n" + strings.Join(parts, "\n")
}

// Export renders s in format ([FormatDOT] or [FormatSVG]) and reports the
// export to [observability.Export].
func Export(ctx context.Context, s *resource.Store, opts Options, format string) ([]byte, error) {
	nodes := 0
	for k, n := range s.Counts() {
		if opts.includes(k) {
			nodes += n
		}
	}
	observability.Export().OnExportStart(ctx, format, nodes)
	start := time.Now()

	var (
		out []byte
		err error
	)
	dot := ToDOT(s, opts)
	switch format {
	case FormatDOT:
		out = []byte(dot)
	case FormatSVG:
		out, err = RenderSVG(ctx, dot)
	default:
		err = errors.New(errors.ErrCodeInvalidInput, "unsupported graph format %q (want dot or svg)", format)
	}

	observability.Export().OnExportComplete(ctx, format, time.Since(start), err)
	return out, err
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
