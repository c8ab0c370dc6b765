package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"streamverse-backend/pkg/models"
)

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

func newFormatter(opts *RootOptions, w io.Writer) *OutputFormatter {
	return &OutputFormatter{Format: opts.Format, Writer: w}
}

func (f *OutputFormatter) writeJSON(v interface{}) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Sites prints a list of sites.
func (f *OutputFormatter) Sites(sites []models.Site) error {
	if f.Format == "json" {
		if sites == nil {
			sites = []models.Site{}
		}
		return f.writeJSON(sites)
	}
	if len(sites) == 0 {
		fmt.Fprintln(f.Writer, "No sites found.")
		return nil
	}
	tw := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tURL")
	for _, s := range sites {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.ID, s.Name, s.Category, s.URL)
	}
	return tw.Flush()
}

// Site prints a single site.
func (f *OutputFormatter) Site(verb string, site *models.Site) error {
	if f.Format == "json" {
		return f.writeJSON(site)
	}
	fmt.Fprintf(f.Writer, "%s %s (%s)\n", verb, site.Name, site.ID)
	return nil
}

// Groups prints sites grouped by category.
func (f *OutputFormatter) Groups(groups []models.CategoryGroup, withSites bool) error {
	if f.Format == "json" {
		if groups == nil {
			groups = []models.CategoryGroup{}
		}
		return f.writeJSON(groups)
	}
	for _, g := range groups {
		fmt.Fprintf(f.Writer, "%s %s (%d)\n", g.Accent, g.Category, g.Count)
		if !withSites {
			continue
		}
		for _, s := range g.Sites {
			fmt.Fprintf(f.Writer, "  %s  %s\n", s.Name, s.URL)
		}
	}
	return nil
}

// Deleted prints the outcome of a delete.
func (f *OutputFormatter) Deleted(id string) error {
	if f.Format == "json" {
		return f.writeJSON(map[string]interface{}{"success": true, "id": id})
	}
	fmt.Fprintf(f.Writer, "Deleted %s\n", strings.TrimSpace(id))
	return nil
}
