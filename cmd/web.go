package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/recdash/recdash/internal/utils"
	"github.com/recdash/recdash/internal/web"
	"github.com/recdash/recdash/pkg/filters"
	"github.com/recdash/recdash/pkg/query"
	"github.com/recdash/recdash/pkg/theme"
)

// webCmd represents the web command
var webCmd = &cobra.Command{
	Use:   "web",
	Short: "Start the recdash web dashboard",
	Long:  `Start a local web server to browse, filter and archive recommendations.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if bind, _ := cmd.Flags().GetString("bind"); bind != "" {
			viper.Set("web.bind", bind)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := openApp(true)
		if err != nil {
			return err
		}
		defer a.Close()

		cache := query.New(a.svc, query.Options{
			StaleTime:    viper.GetDuration("query.stale_time"),
			GCTime:       viper.GetDuration("query.gc_time"),
			RefetchDelay: viper.GetDuration("query.refetch_delay"),
			Log:          utils.Log,
		})
		defer cache.Close()

		th := theme.New(a.db)
		if err := th.Restore(ctx); err != nil {
			utils.Log.Warnf("Could not restore theme: %v", err)
		}

		if viper.GetBool("session.logout_on_unauthorized") {
			cancel := a.client.OnUnauthorized(func() {
				utils.Log.Warn("API rejected the session token, logging out")
				if err := a.session.Logout(context.Background()); err != nil {
					utils.Log.Errorf("Logout: %v", err)
				}
				cache.Clear()
			})
			defer cancel()
		}

		// The guard serves a loading page until this finishes.
		go func() {
			if err := a.session.Restore(ctx); err != nil {
				utils.Log.Errorf("Could not restore session: %v", err)
			}
		}()

		srv := web.New(web.Config{
			Bind:           viper.GetString("web.bind"),
			SearchDebounce: viper.GetDuration("search.debounce"),
		}, a.session, filters.New(), th, a.svc, cache, query.NewActions(a.svc, cache), utils.Log)
		return srv.Start(ctx)
	},
}

func init() {
	rootCmd.AddCommand(webCmd)

	webCmd.Flags().StringP("bind", "b", "", "Address to bind the server to (default 127.0.0.1:9999)")
}
