package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"library3d/internal/catalog"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "catalogctl",
		Short:         "Query the library catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newQueryCmd(), newCategoriesCmd())
	return root
}

type queryFlags struct {
	search       string
	category     string
	author       string
	availability string
	yearMin      int
	yearMax      int
	sort         string
	order        string
	page         int
	pageSize     int
}

func newQueryCmd() *cobra.Command {
	var f queryFlags
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Search, filter, sort and paginate the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			spec, err := f.spec(cmd)
			if err != nil {
				return err
			}
			page := catalog.Query(catalog.Fixture(), spec)
			return printPage(cmd.OutOrStdout(), page, spec)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.search, "q", "q", "", "match title, author or ISBN (case-insensitive)")
	fl.StringVar(&f.category, "category", "", "exact category")
	fl.StringVar(&f.author, "author", "", "author substring (case-insensitive)")
	fl.StringVar(&f.availability, "availability", string(catalog.AvailabilityAll), "all, available or unavailable")
	fl.IntVar(&f.yearMin, "year-min", 0, "earliest published year")
	fl.IntVar(&f.yearMax, "year-max", 0, "latest published year")
	fl.StringVar(&f.sort, "sort", string(catalog.SortByTitle), "title, author, published_year or category")
	fl.StringVar(&f.order, "order", string(catalog.Asc), "asc or desc")
	fl.IntVar(&f.page, "page", 1, "page number")
	fl.IntVar(&f.pageSize, "page-size", catalog.DefaultPageSize, "books per page")
	return cmd
}

func (f queryFlags) spec(cmd *cobra.Command) (catalog.QuerySpec, error) {
	spec := catalog.DefaultQuerySpec()
	spec.Search = f.search
	spec.Filters.Category = f.category
	spec.Filters.Author = f.author
	spec.Page = f.page
	spec.PageSize = f.pageSize

	switch a := catalog.Availability(f.availability); a {
	case catalog.AvailabilityAll, catalog.AvailabilityAvailable, catalog.AvailabilityUnavailable:
		spec.Filters.Availability = a
	default:
		return spec, fmt.Errorf("invalid --availability %q", f.availability)
	}

	switch s := catalog.SortField(f.sort); s {
	case catalog.SortByTitle, catalog.SortByAuthor, catalog.SortByPublishedYear, catalog.SortByCategory:
		spec.Sort.Field = s
	default:
		return spec, fmt.Errorf("invalid --sort %q", f.sort)
	}

	switch d := catalog.SortDirection(f.order); d {
	case catalog.Asc, catalog.Desc:
		spec.Sort.Direction = d
	default:
		return spec, fmt.Errorf("invalid --order %q", f.order)
	}

	if cmd.Flags().Changed("year-min") {
		spec.Filters.PublishedYear.Min = catalog.Year(f.yearMin)
	}
	if cmd.Flags().Changed("year-max") {
		spec.Filters.PublishedYear.Max = catalog.Year(f.yearMax)
	}
	return spec, nil
}

func printPage(out io.Writer, page catalog.ResultPage, spec catalog.QuerySpec) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tCATEGORY\tYEAR\tAVAILABLE")
	for _, b := range page.Books {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d/%d\n",
			b.ID, b.Title, b.Author, b.Category, b.PublishedYear, b.AvailableCopies, b.TotalCopies)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "page %d of %d, %d books\n", spec.Page, page.TotalPages, page.Total)
	return err
}

func newCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the catalog categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			categories, err := catalog.NewMemoryProvider(catalog.Fixture()).Categories(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.Join(categories, "\n"))
			return err
		},
	}
}
