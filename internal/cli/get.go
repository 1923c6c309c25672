package cli

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/popgraph/pkg/integrations/popshops"
	"github.com/matzehuels/popgraph/pkg/resource"
)

// getCommand creates the get command, which runs one call and prints the
// result tree.
func (c *CLI) getCommand() *cobra.Command {
	var q queryFlags

	cmd := &cobra.Command{
		Use:   "get <products|merchants|deals>",
		Short: "Call an endpoint and print the resulting resource tree",
		Long: `Call a PopShops endpoint once and print the resource graph built from the
response.

Products are grouped by category, each with its offers and their merchants.
Merchants are listed with country, merchant type and deals. Deals are listed
with their merchant and deal types.`,
		Example: `  popgraph get products -p keyword="ipad case"
  popgraph get merchants -p merchant_type=1 --sort name --asc
  popgraph get deals -p deal_type=3 -p page=2`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"products", "merchants", "deals"},
		RunE: func(cmd *cobra.Command, args []string) error {
			call, err := c.run(cmd.Context(), args[0], &q)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			writeTree(w, call, q.sortBy, !q.asc)
			fmt.Fprintln(w)
			writeStats(w, call.Store().Counts(), call.Stats().Skipped, call.Cached())
			if len(call.Resource(primaryKind(call.Kind()))) > 0 {
				printNextStep("Next page", nextPageCommand(call))
			}
			return nil
		},
	}
	q.register(cmd)
	return cmd
}

// writeTree prints the results of call in the layout that suits its kind.
func writeTree(w io.Writer, call *popshops.Call, sortBy string, descending bool) {
	results := call.Sorted(primaryKind(call.Kind()), sortBy, descending)
	if len(results) == 0 {
		fmt.Fprintln(w, StyleDim.Render("no results"))
		return
	}
	switch call.Kind() {
	case popshops.CallMerchants:
		writeMerchants(w, results)
	case popshops.CallDeals:
		writeDeals(w, results)
	default:
		writeProducts(w, results)
	}
}

// writeProducts groups products by category in order of first appearance.
func writeProducts(w io.Writer, products []resource.Resource) {
	var order []string
	groups := make(map[string][]*resource.Product)
	for _, r := range products {
		p, ok := r.(*resource.Product)
		if !ok {
			continue
		}
		title := "Uncategorized"
		if cat := p.Category(); !resource.IsDummy(cat) {
			title = resource.Name(cat)
		}
		if _, seen := groups[title]; !seen {
			order = append(order, title)
		}
		groups[title] = append(groups[title], p)
	}

	for _, title := range order {
		fmt.Fprintln(w, StyleTitle.Render(title))
		for _, p := range groups[title] {
			fmt.Fprintf(w, "  %s %s\n", displayName(p), StyleDim.Render("#"+p.ID()))
			for _, o := range p.Offers() {
				fmt.Fprintf(w, "    %s %s %s %s\n", StyleDim.Render(iconArrow), resource.Name(o), StyleDim.Render("at"), displayName(o.Merchant()))
			}
		}
	}
}

func writeMerchants(w io.Writer, merchants []resource.Resource) {
	for _, r := range merchants {
		m, ok := r.(*resource.Merchant)
		if !ok {
			continue
		}
		fmt.Fprintf(w, "%s %s\n", StyleTitle.Render(resource.Name(m)), StyleDim.Render("#"+m.ID()))
		if _, err := m.Attr("country"); err == nil {
			fmt.Fprintf(w, "  country  %s\n", displayName(m.Country()))
		}
		if _, err := m.Attr("merchant_type"); err == nil {
			fmt.Fprintf(w, "  type     %s\n", displayName(m.MerchantType()))
		}
		for _, d := range m.Deals() {
			fmt.Fprintf(w, "  %s %s\n", StyleDim.Render(iconArrow), resource.Name(d))
		}
	}
}

func writeDeals(w io.Writer, deals []resource.Resource) {
	for _, r := range deals {
		d, ok := r.(*resource.Deal)
		if !ok {
			continue
		}
		fmt.Fprintf(w, "%s %s\n", StyleTitle.Render(resource.Name(d)), StyleDim.Render("#"+d.ID()))
		if _, err := d.Attr("merchant"); err == nil {
			fmt.Fprintf(w, "  merchant %s\n", displayName(d.Merchant()))
		}
		var types []string
		for _, t := range d.DealTypes() {
			types = append(types, displayName(t))
		}
		if len(types) > 0 {
			fmt.Fprintf(w, "  types    %s\n", strings.Join(types, ", "))
		}
	}
}

// nextPageCommand renders the get invocation for the page after call.
func nextPageCommand(call *popshops.Call) string {
	next := call.NextPage()
	var b strings.Builder
	b.WriteString("popgraph get " + string(call.Kind()))
	for _, k := range slices.Sorted(maps.Keys(next)) {
		for _, v := range next[k] {
			fmt.Fprintf(&b, " -p %s=%q", k, v)
		}
	}
	return b.String()
}
