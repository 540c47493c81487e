package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sw33tLie/shopscope/internal/utils"
	"github.com/sw33tLie/shopscope/pkg/catalog"
	"github.com/sw33tLie/shopscope/pkg/storage"
)

// cacheCmd represents the cache command
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the local product cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop the cached product snapshot (and with --all, the saved filters)",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStorage()
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := context.Background()
		if err := db.ClearSnapshot(ctx); err != nil {
			return err
		}
		if all, _ := cmd.Flags().GetBool("all"); all {
			if err := db.Delete(ctx, storage.StateKey); err != nil {
				return err
			}
		}
		utils.Log.Info("Local cache cleared")
		return nil
	},
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the entries held in local storage",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStorage()
		if err != nil {
			return err
		}
		defer db.Close()

		keys, err := db.ListKeys(context.Background())
		if err != nil {
			return err
		}
		if len(keys) == 0 {
			fmt.Println("Local storage is empty.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "KEY\tBYTES\tUPDATED\t")
		for _, k := range keys {
			updated := "-"
			if !k.UpdatedAt.IsZero() {
				updated = k.UpdatedAt.Local().Format(catalog.DisplayLayout)
			}
			fmt.Fprintf(w, "%s\t%d\t%s\t\n", k.Key, k.Size, updated)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheListCmd)
	cacheClearCmd.Flags().Bool("all", false, "Also forget the saved filters, sort order and page")
}
