// Package nodelink renders a resource graph as a node-link diagram.
//
// # Overview
//
// Each entity becomes a box labeled with its kind and display name, and
// each resolved relation becomes an arrow labeled with the relation name.
// Relations that point at missing entities are omitted.
//
// # Usage
//
// Convert a store to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(call.Store(), nodelink.Options{
//	    Kinds: []resource.Kind{resource.KindProduct, resource.KindCategory},
//	})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [Export] does both in one step and reports timing to the observability
// hooks.
//
// Resolving relations for the diagram fills the per-entity relation caches,
// so export only after ingestion has finished.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink
