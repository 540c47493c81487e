package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sw33tLie/shopscope/internal/server"
)

// webCmd represents the web command
var webCmd = &cobra.Command{
	Use:   "web",
	Short: "Start the shopscope web console",
	Long:  `Start a local web server to browse, filter, export and edit products and to read the scraper log.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		sess, client, cleanup, err := openSession(ctx, true)
		if err != nil {
			return err
		}
		defer cleanup()

		// Auth
		user, _ := cmd.Flags().GetString("username")
		pass, _ := cmd.Flags().GetString("password")
		addr, _ := cmd.Flags().GetString("bind")

		logPath := viper.GetString("logs.path")
		logs := func(ctx context.Context) (string, error) { return client.FetchLog(ctx, logPath) }

		srv, err := server.New(sess, logs, user, pass, viper.GetDuration("logs.interval"))
		if err != nil {
			return err
		}
		return srv.Start(addr)
	},
}

func init() {
	rootCmd.AddCommand(webCmd)

	webCmd.Flags().StringP("bind", "b", "127.0.0.1:9999", "Address to bind the server to")
	webCmd.Flags().StringP("username", "u", "", "Username for basic auth (optional)")
	webCmd.Flags().StringP("password", "p", "", "Password for basic auth (optional)")
}
