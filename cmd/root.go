package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/recdash/recdash/internal/utils"
)

var cfgFile string

const (
	LOGO = `                     _           _     
 _ __ ___  ___ __| | __ _ ___| |__  
| '__/ _ \/ __/ _` + "`" + ` |/ _` + "`" + ` / __| '_ \ 
| | |  __/ (_| (_| | (_| \__ \ | | |
|_|  \___|\___\__,_|\__,_|___/_| |_|

`
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "recdash",
	Short: "A local dashboard and CLI for cloud security recommendations.",
	Long: LOGO + `recdash signs in to a recommendations API and lets you browse, filter, search,
archive and unarchive recommendations, from a local web dashboard or right from your command line.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.recdash.yaml)")

	// Global flags
	rootCmd.PersistentFlags().StringP("proxy", "", "", "HTTP Proxy (Useful for debugging. Example: http://127.0.0.1:8080)")
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")
	rootCmd.PersistentFlags().String("api", "", "Recommendations API base URL (default http://localhost:3001)")
	rootCmd.PersistentFlags().String("state", "", "State file holding the session and preferences (default ~/.config/recdash/recdash.sqlite)")

	viper.BindPFlag("api.url", rootCmd.PersistentFlags().Lookup("api"))
	viper.BindPFlag("api.proxy", rootCmd.PersistentFlags().Lookup("proxy"))
	viper.BindPFlag("state.path", rootCmd.PersistentFlags().Lookup("state"))
}

func setDefaults() {
	viper.SetDefault("api.url", "http://localhost:3001")
	viper.SetDefault("api.timeout", "10s")
	viper.SetDefault("api.retries", 3)
	viper.SetDefault("state.path", "~/.config/recdash/recdash.sqlite")
	viper.SetDefault("web.bind", "127.0.0.1:9999")
	viper.SetDefault("query.page_size", 20)
	viper.SetDefault("query.stale_time", "5m")
	viper.SetDefault("query.gc_time", "10m")
	viper.SetDefault("query.refetch_delay", "100ms")
	viper.SetDefault("search.debounce", "300ms")
	viper.SetDefault("session.logout_on_unauthorized", false)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// Init log library
	levelString, _ := rootCmd.PersistentFlags().GetString("loglevel")
	utils.SetLogLevel(levelString)

	setDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".recdash")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("RECDASH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; create it with defaults.
			home, _ := homedir.Dir()
			configPath := filepath.Join(home, ".recdash.yaml")
			if err := viper.SafeWriteConfigAs(configPath); err != nil {
				utils.Log.Warnf("Error creating config file: %s", err)
			} else {
				utils.Log.Debugf("Created config file %s", configPath)
			}
		} else {
			utils.Log.Warnf("Error reading config file: %s", err)
		}
	}
}
