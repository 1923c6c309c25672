package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/popgraph/pkg/resource"
)

// listCommand creates the list command.
func (c *CLI) listCommand() *cobra.Command {
	var (
		q       queryFlags
		columns []string
	)

	cmd := &cobra.Command{
		Use:   "list <products|merchants|deals> [kind]",
		Short: "Call an endpoint and print one kind of resource as a table",
		Long: `Call a PopShops endpoint once and print every resource of one kind as a
table. The kind defaults to the endpoint's own results; any kind in the
response can be listed, e.g. the brands or categories of a product search.`,
		Example: `  popgraph list products -p keyword=lamp
  popgraph list products brands -p keyword=lamp --sort name --asc
  popgraph list merchants --columns id,name,country,url`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			call, err := c.run(cmd.Context(), args[0], &q)
			if err != nil {
				return err
			}
			kind := primaryKind(call.Kind())
			if len(args) == 2 {
				if kind, err = resource.ParseKind(args[1]); err != nil {
					return err
				}
			}
			writeList(cmd.OutOrStdout(), call.Sorted(kind, q.sortBy, !q.asc), kind, columns)
			return nil
		},
	}
	q.register(cmd)
	cmd.Flags().StringSliceVar(&columns, "columns", nil, "attributes to show (default id, name and references)")
	return cmd
}

func writeList(w io.Writer, rs []resource.Resource, kind resource.Kind, columns []string) {
	if len(rs) == 0 {
		fmt.Fprintln(w, StyleDim.Render("no "+string(kind)))
		return
	}
	if len(columns) == 0 {
		columns = defaultColumns(rs)
	}
	fmt.Fprintln(w, resourceTable(rs, columns))
	fmt.Fprintln(w, StyleDim.Render(fmt.Sprintf("  %d %s", len(rs), kind)))
}

// showCommand creates the show command.
func (c *CLI) showCommand() *cobra.Command {
	var q queryFlags

	cmd := &cobra.Command{
		Use:   "show <products|merchants|deals> <kind> <id>",
		Short: "Call an endpoint and print one resource with its relations",
		Example: `  popgraph show products product 1234 -p keyword=lamp
  popgraph show merchants merchant 5 -p merchant_type=1`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := resource.ParseKind(args[1])
			if err != nil {
				return err
			}
			call, err := c.run(cmd.Context(), args[0], &q)
			if err != nil {
				return err
			}
			r, err := call.Store().Lookup(kind, args[2])
			if err != nil {
				return err
			}
			return writeResource(cmd.OutOrStdout(), r)
		},
	}
	q.register(cmd)
	return cmd
}

// writeResource prints the attributes of r followed by every relation it
// can resolve.
func writeResource(w io.Writer, r resource.Resource) error {
	fmt.Fprintln(w, StyleTitle.Render(r.Kind().Singular()+" "+resource.Name(r)))
	for _, name := range r.Attributes().Names() {
		v, _ := r.Attributes().String(name)
		writeKeyValue(w, name, v)
	}

	for _, name := range resource.Relations(r.Kind()) {
		rel, err := r.Resolve(name)
		if err != nil {
			return err
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, StyleDim.Render(fmt.Sprintf("%s (%d)", name, rel.Len())))
		names := make([]string, 0, rel.Len())
		for _, item := range rel.All() {
			names = append(names, displayName(item)+" "+StyleDim.Render("#"+item.ID()))
		}
		if len(names) > 0 {
			fmt.Fprintln(w, "  "+strings.Join(names, "\n  "))
		}
	}
	return nil
}
