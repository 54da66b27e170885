package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/tidwall/sjson"

	"github.com/recdash/recdash/pkg/query"
	"github.com/recdash/recdash/pkg/recommendations"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List recommendations",
	Long:  "Lists active (or archived) recommendations, optionally narrowed by a search text and tags.",
	RunE: func(cmd *cobra.Command, args []string) error {
		archived, _ := cmd.Flags().GetBool("archived")
		search, _ := cmd.Flags().GetString("search")
		tags, _ := cmd.Flags().GetStringSlice("tag")
		all, _ := cmd.Flags().GetBool("all")
		asJSON, _ := cmd.Flags().GetBool("json")

		a, err := openApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := context.Background()
		if err := a.authenticated(ctx); err != nil {
			return err
		}

		filter := recommendations.Filter{Archived: archived, Search: strings.TrimSpace(search), Tags: tags}
		var pages []recommendations.Page
		for {
			page, err := a.svc.GetRecommendations(ctx, filter)
			if err != nil {
				return apiError("listing recommendations failed", err)
			}
			pages = append(pages, *page)
			next, ok := page.NextCursor()
			if !all || !ok {
				break
			}
			filter.Cursor = next
		}
		items := query.Flatten(pages)
		total := pages[0].Pagination.TotalItems

		if asJSON {
			out, err := listJSON(items, total, archived)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		}
		printRecommendations(cmd.OutOrStdout(), items, total, archived)
		return nil
	},
}

func printRecommendations(out io.Writer, items []recommendations.Recommendation, total int, archived bool) {
	if len(items) == 0 {
		kind := "active"
		if archived {
			kind = "archived"
		}
		fmt.Fprintf(out, "No %s recommendations match your criteria\n", kind)
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSCORE\tPROVIDERS\tFRAMEWORKS\tVIOLATIONS/MONTH")
	for _, r := range items {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%d\n",
			r.RecommendationID, r.Title, r.Score, providerList(r.Provider), frameworkList(r.Frameworks), r.TotalHistoricalViolations)
	}
	w.Flush()
	fmt.Fprintf(out, "\nShowing %d of %d results\n", len(items), total)
}

func listJSON(items []recommendations.Recommendation, total int, archived bool) (string, error) {
	if items == nil {
		items = []recommendations.Recommendation{}
	}
	out, err := sjson.Set(`{}`, "archived", archived)
	if err != nil {
		return "", err
	}
	if out, err = sjson.Set(out, "totalItems", total); err != nil {
		return "", err
	}
	if out, err = sjson.Set(out, "showing", len(items)); err != nil {
		return "", err
	}
	return sjson.Set(out, "data", items)
}

func providerList(providers []recommendations.CloudProvider) string {
	names := make([]string, 0, len(providers))
	for _, p := range providers {
		names = append(names, p.String())
	}
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ",")
}

func frameworkList(frameworks []recommendations.Framework) string {
	switch len(frameworks) {
	case 0:
		return "-"
	case 1, 2:
	default:
		return frameworks[0].Name + "," + frameworks[1].Name + " +" + strconv.Itoa(len(frameworks)-2)
	}
	names := make([]string, len(frameworks))
	for i, f := range frameworks {
		names[i] = f.Name
	}
	return strings.Join(names, ",")
}

// tagsCmd represents the tags command
var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "Print the tags available for filtering",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := context.Background()
		if err := a.authenticated(ctx); err != nil {
			return err
		}
		tags, err := a.svc.AvailableTags(ctx)
		if err != nil {
			return apiError("loading tags failed", err)
		}
		printTags(cmd.OutOrStdout(), tags)
		return nil
	},
}

func printTags(out io.Writer, tags recommendations.AvailableTags) {
	for _, c := range []struct {
		title string
		tags  []string
	}{
		{"Frameworks", tags.Frameworks},
		{"Providers", tags.Providers},
		{"Classes", tags.Classes},
		{"Reasons", tags.Reasons},
	} {
		fmt.Fprintf(out, "%s (%d)\n", c.title, len(c.tags))
		for _, t := range c.tags {
			fmt.Fprintf(out, "  %s\n", t)
		}
	}
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(tagsCmd)

	listCmd.Flags().BoolP("archived", "a", false, "List archived recommendations")
	listCmd.Flags().StringP("search", "s", "", "Search text")
	listCmd.Flags().StringSliceP("tag", "t", nil, "Only show recommendations with this tag (repeatable)")
	listCmd.Flags().Bool("all", false, "Fetch every page instead of the first one")
	listCmd.Flags().Bool("json", false, "Print the list as JSON")
}
