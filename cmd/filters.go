package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sw33tLie/shopscope/internal/render"
)

// filtersCmd represents the filters command
var filtersCmd = &cobra.Command{
	Use:   "filters",
	Short: "List the vendors, alcohol types and input URLs available as filters",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		sess, _, cleanup, err := openSession(ctx, false)
		if err != nil {
			return err
		}
		defer cleanup()
		sess.Wait()

		fmt.Print(render.NewAuto(os.Stdout).FilterOptions(sess.FilterOptions()))
		return sess.LastError()
	},
}

func init() {
	rootCmd.AddCommand(filtersCmd)
}
