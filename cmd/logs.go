package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sw33tLie/shopscope/internal/utils"
	"github.com/sw33tLie/shopscope/pkg/logview"
)

// logsCmd represents the logs command
var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Print the scraper log, optionally filtered and followed",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		path := viper.GetString("logs.path")
		query, _ := cmd.Flags().GetString("search")
		follow, _ := cmd.Flags().GetBool("follow")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fetch := func(ctx context.Context) (string, error) { return client.FetchLog(ctx, path) }
		raw, err := fetch(ctx)
		if err != nil {
			return err
		}

		viewer := logview.NewViewer(raw)
		viewer.SetQuery(query)
		printLog(viewer.Result())
		if !follow {
			return nil
		}

		last := raw
		poller := &logview.Poller{
			Fetch:    fetch,
			Interval: viper.GetDuration("logs.interval"),
			Log:      utils.Log,
			OnUpdate: func(raw string) {
				if raw == last {
					return
				}
				last = raw
				viewer.SetRaw(raw)
				fmt.Println()
				printLog(viewer.Result())
			},
		}
		poller.Enable(ctx)
		fmt.Fprintln(os.Stderr, poller.Status())

		<-ctx.Done()
		poller.Disable()
		return nil
	},
}

func printLog(r logview.Result) {
	fmt.Println(r.Text)
	if r.Status != "" {
		fmt.Fprintln(os.Stderr, r.Status)
	}
}

func init() {
	rootCmd.AddCommand(logsCmd)
	logsCmd.Flags().StringP("search", "s", "", "Only show lines containing this text (case-insensitive)")
	logsCmd.Flags().BoolP("follow", "f", false, "Keep polling the log and reprint it when it changes")
}
