package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sw33tLie/shopscope/internal/render"
	"github.com/sw33tLie/shopscope/pkg/catalog"
)

// productsCmd represents the products command
var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "List products with the saved filters, sort order and page",
	Long: `List one page of products together with the stats panel.

Filter, sort and page choices are saved locally and reused by the next run.
Passing --sort with the current sort key flips the direction, like clicking a column header.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		sess, _, cleanup, err := openSession(ctx, false)
		if err != nil {
			return err
		}
		defer cleanup()

		if refresh, _ := cmd.Flags().GetBool("refresh"); refresh {
			if err := sess.Refresh(ctx); err != nil {
				return err
			}
		}
		if wait, _ := cmd.Flags().GetBool("wait"); wait {
			sess.Wait()
		}

		if reset, _ := cmd.Flags().GetBool("reset"); reset {
			sess.ResetFilters(ctx)
		}
		if f, changed := filtersFromFlags(cmd, sess.View().Filters); changed {
			sess.SetFilters(ctx, f)
		}
		if key, _ := cmd.Flags().GetString("sort"); key != "" {
			if err := sess.ToggleSort(ctx, key); err != nil {
				return err
			}
		}
		if cmd.Flags().Changed("page") {
			page, _ := cmd.Flags().GetInt("page")
			if err := sess.GoToPage(ctx, page); err != nil {
				return err
			}
		}

		ids, _ := cmd.Flags().GetInt64Slice("expand")
		expanded := make(map[int64]bool, len(ids))
		for _, id := range ids {
			expanded[id] = true
		}

		fmt.Print(render.NewAuto(os.Stdout).Listing(sess.View(), expanded))
		return sess.LastError()
	},
}

// filtersFromFlags overlays the filter flags that were set on current.
func filtersFromFlags(cmd *cobra.Command, current catalog.Filters) (catalog.Filters, bool) {
	f := current
	changed := false
	set := func(name string, dst *string) {
		if cmd.Flags().Changed(name) {
			*dst, _ = cmd.Flags().GetString(name)
			changed = true
		}
	}
	set("search", &f.Search)
	set("vendor", &f.Vendor)
	set("type", &f.Type)
	set("available", &f.Available)
	set("input-url", &f.InputURL)
	set("ignore", &f.Ignore)
	return f, changed
}

func init() {
	rootCmd.AddCommand(productsCmd)

	productsCmd.Flags().StringP("search", "s", "", "Case-insensitive text matched against title, vendor and alcohol type")
	productsCmd.Flags().String("vendor", "", "Exact vendor")
	productsCmd.Flags().StringP("type", "t", "", "Exact alcohol type")
	productsCmd.Flags().String("available", "", "Availability: 1 (yes), 0 (no) or empty for any")
	productsCmd.Flags().String("input-url", "", "Exact input URL")
	productsCmd.Flags().String("ignore", "", "Ignore notifications flag: 1, 0 or empty for any")
	productsCmd.Flags().String("sort", "", "Sort by field (id, title, price, available, vendor, alcohol_type, published_at, updated_at, ...)")
	productsCmd.Flags().IntP("page", "p", 1, "Page to show")
	productsCmd.Flags().Int64Slice("expand", nil, "Product ids whose details are shown")
	productsCmd.Flags().Bool("reset", false, "Clear every filter before applying the flags")
	productsCmd.Flags().Bool("refresh", false, "Drop the cached dataset and reload it from the backend")
	productsCmd.Flags().Bool("wait", true, "Wait for the whole dataset before rendering")
}
