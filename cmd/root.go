package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sw33tLie/shopscope/internal/utils"
)

var cfgFile string

const (
	LOGO = `     _
 ___| |__   ___  _ __  ___  ___ ___  _ __   ___
/ __| '_ \ / _ \| '_ \/ __|/ __/ _ \| '_ \ / _ \
\__ \ | | | (_) | |_) \__ \ (_| (_) | |_) |  __/
|___/_| |_|\___/| .__/|___/\___\___/| .__/ \___|
                |_|                 |_|

`
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "shopscope",
	Short: "Browse, filter and curate the product catalog collected by the shop scraper.",
	Long: LOGO + `shopscope talks to the scraper backend, keeps a local copy of the product catalog
and lets you filter, sort, export and edit products from the command line or a local web console.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		levelString, _ := cmd.Flags().GetString("loglevel")
		return utils.SetLogLevel(levelString)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.shopscope.yaml)")

	// Global flags
	rootCmd.PersistentFlags().StringP("proxy", "", "", "HTTP Proxy (Useful for debugging. Example: http://127.0.0.1:8080)")
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")
	rootCmd.PersistentFlags().String("backend", "", "Backend base URL (overrides backend.url)")

	viper.BindPFlag("http.proxy", rootCmd.PersistentFlags().Lookup("proxy"))
	viper.BindPFlag("backend.url", rootCmd.PersistentFlags().Lookup("backend"))
}

func setDefaults() {
	viper.SetDefault("backend.url", "http://127.0.0.1:5000")
	viper.SetDefault("backend.username", "")
	viper.SetDefault("backend.password", "")
	viper.SetDefault("http.proxy", "")
	viper.SetDefault("http.retries", 0)
	viper.SetDefault("http.timeout", 30*time.Second)
	viper.SetDefault("storage.path", "")
	viper.SetDefault("cache.ttl", time.Hour)
	viper.SetDefault("loader.chunk_size", 5000)
	viper.SetDefault("logs.path", "/logs")
	viper.SetDefault("logs.interval", 5*time.Second)
}

// initConfig reads in .env, config file and ENV variables if set.
func initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Error loading .env file: %s\n", err)
	}

	setDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".shopscope")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("SHOPSCOPE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// Config file not found; create it with defaults.
			home, _ := homedir.Dir()
			configPath := filepath.Join(home, ".shopscope.yaml")
			if err := viper.SafeWriteConfigAs(configPath); err != nil {
				fmt.Printf("Error creating config file: %s\n", err)
			}
		} else {
			fmt.Fprintf(os.Stderr, "Error reading config file: %s\n", err)
		}
	}
}
