package cmd

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sw33tLie/shopscope/internal/utils"
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the filtered and sorted products as CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		sess, _, cleanup, err := openSession(ctx, false)
		if err != nil {
			return err
		}
		defer cleanup()
		sess.Wait()
		if err := sess.LastError(); err != nil {
			return err
		}

		var out io.Writer = os.Stdout
		if path, _ := cmd.Flags().GetString("output"); path != "" && path != "-" {
			f, err := os.Create(path)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
			utils.Log.Infof("Writing %d products to %s", sess.View().Matching, path)
		}
		return sess.Export(out)
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringP("output", "o", "products.csv", "Output file, - for stdout")
}
