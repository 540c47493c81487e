package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sw33tLie/shopscope/internal/render"
	"github.com/sw33tLie/shopscope/internal/utils"
)

func parseProductID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid product id %q", arg)
	}
	return id, nil
}

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show every field of a product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseProductID(args[0])
		if err != nil {
			return err
		}
		ctx := context.Background()
		sess, _, cleanup, err := openSession(ctx, false)
		if err != nil {
			return err
		}
		defer cleanup()

		p, err := sess.Product(ctx, id)
		if err != nil {
			return err
		}
		fmt.Print(render.NewAuto(os.Stdout).Product(p))
		return nil
	},
}

// ignoreCmd represents the ignore command
var ignoreCmd = &cobra.Command{
	Use:   "ignore <id>",
	Short: "Suppress (or with --off, restore) webhook notifications for a product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseProductID(args[0])
		if err != nil {
			return err
		}
		off, _ := cmd.Flags().GetBool("off")

		ctx := context.Background()
		sess, _, cleanup, err := openSession(ctx, false)
		if err != nil {
			return err
		}
		defer cleanup()
		sess.Wait()

		if err := sess.SetIgnore(ctx, id, !off); err != nil {
			return fmt.Errorf("error updating ignore_notifications: %w", err)
		}
		utils.Log.Infof("Product %d: ignore notifications set to %t", id, !off)
		return nil
	},
}

// editCmd represents the edit command
var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a product's title, price, availability, vendor, type or notification flag",
	Long: `Edit a product. Fields without a flag keep their current value.
A product without an alcohol type is saved as "Unwanted" unless --type is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseProductID(args[0])
		if err != nil {
			return err
		}
		ctx := context.Background()
		sess, _, cleanup, err := openSession(ctx, false)
		if err != nil {
			return err
		}
		defer cleanup()
		sess.Wait()

		form, types, err := sess.EditForm(id)
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		if flags.Changed("title") {
			form.Title, _ = flags.GetString("title")
		}
		if flags.Changed("price") {
			form.Price, _ = flags.GetString("price")
		}
		if flags.Changed("available") {
			form.Available, _ = flags.GetBool("available")
		}
		if flags.Changed("vendor") {
			form.Vendor, _ = flags.GetString("vendor")
		}
		if flags.Changed("type") {
			form.AlcoholType, _ = flags.GetString("type")
			if !contains(types, form.AlcoholType) {
				utils.Log.Warnf("Alcohol type %q is new; known types: %v", form.AlcoholType, types)
			}
		}
		if flags.Changed("ignore") {
			form.IgnoreNotifications, _ = flags.GetBool("ignore")
		}

		if err := sess.Edit(ctx, form); err != nil {
			return fmt.Errorf("error updating product: %w", err)
		}
		utils.Log.Infof("Product %d updated", id)
		return nil
	},
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func init() {
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(ignoreCmd)
	rootCmd.AddCommand(editCmd)

	ignoreCmd.Flags().Bool("off", false, "Clear the flag instead of setting it")

	editCmd.Flags().String("title", "", "New title")
	editCmd.Flags().String("price", "", "New price")
	editCmd.Flags().Bool("available", false, "Availability")
	editCmd.Flags().String("vendor", "", "New vendor")
	editCmd.Flags().StringP("type", "t", "", "New alcohol type")
	editCmd.Flags().Bool("ignore", false, "Ignore notifications")
}
