// internal/cli/output.go
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"sync"
	"text/tabwriter"

	"admin-console/internal/app"
	"admin-console/internal/notify"
	"admin-console/internal/pkg/session"
	"admin-console/internal/screens"

	"github.com/spf13/cobra"
)

func getOutputFormat(cmd *cobra.Command) string {
	v, _ := cmd.Root().PersistentFlags().GetString("output")
	return v
}

func validateOutputFormat(output string) error {
	if output != "" && output != "table" && output != "json" {
		return fmt.Errorf("unsupported output format %q: use 'table' or 'json'", output)
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// noticePrinter is the CLI's toast surface and router.
type noticePrinter struct {
	mu        sync.Mutex
	w         io.Writer
	loginPath string
}

func newNoticePrinter(w io.Writer) *noticePrinter {
	return &noticePrinter{w: w}
}

func (p *noticePrinter) surface(gate *session.Gate) app.Surface {
	p.loginPath = gate.LoginPath()
	return app.Surface{Notifier: p, Navigator: p}
}

func (p *noticePrinter) Notify(n notify.Notice) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "[%s] %s\n", n.Level, n.Message)
}

func (p *noticePrinter) Navigate(path string) {
	if path != p.loginPath {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.w, "Sign in again with `console login`.")
}

// screenPage is the type-independent view of a screen snapshot.
type screenPage struct {
	Items        []json.RawMessage `json:"items"`
	Page         int               `json:"page"`
	TotalPages   int               `json:"total_pages"`
	TotalRecords int               `json:"total_records"`
	Filters      map[string]string `json:"filters"`
}

func decodeSnapshot(state any) (screenPage, error) {
	raw, err := json.Marshal(state)
	if err != nil {
		return screenPage{}, err
	}
	var page screenPage
	err = json.Unmarshal(raw, &page)
	return page, err
}

func printPage(w io.Writer, kind string, page screenPage) {
	fmt.Fprintf(w, "%s: page %d of %d (%d records)\n", kind, page.Page, max(page.TotalPages, 1), page.TotalRecords)
	if len(page.Filters) > 0 {
		parts := make([]string, 0, len(page.Filters))
		for _, k := range slices.Sorted(maps.Keys(page.Filters)) {
			parts = append(parts, k+"="+page.Filters[k])
		}
		fmt.Fprintf(w, "filters: %s\n", strings.Join(parts, ", "))
	}
	for _, item := range page.Items {
		fmt.Fprintln(w, string(item))
	}
}

func printPrincipal(w io.Writer, p *session.Principal, kinds []screens.Kind) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\t%s\n", p.ID)
	fmt.Fprintf(tw, "Name\t%s\n", p.Name)
	fmt.Fprintf(tw, "Email\t%s\n", p.Email)
	fmt.Fprintf(tw, "Role\t%s\n", p.Role)
	fmt.Fprintf(tw, "Permissions\t%s\n", strings.Join(p.Permissions, ", "))
	_ = tw.Flush()
	printKinds(w, kinds)
}

func printKinds(w io.Writer, kinds []screens.Kind) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SCREEN\tVIEW\tMANAGE")
	for _, k := range kinds {
		manage := k.Manage
		if k.ReadOnly() {
			manage = "(read-only)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", k.Name, k.View, manage)
	}
	_ = tw.Flush()
}
