package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/recdash/recdash/internal/utils"
	"github.com/recdash/recdash/pkg/recommendations"
)

// archiveCmd represents the archive command
var archiveCmd = &cobra.Command{
	Use:   "archive <id>...",
	Short: "Archive recommendations",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMutation(args, "archive", "archived", (*recommendations.Service).Archive)
	},
}

// unarchiveCmd represents the unarchive command
var unarchiveCmd = &cobra.Command{
	Use:   "unarchive <id>...",
	Short: "Move archived recommendations back to the active list",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMutation(args, "unarchive", "unarchived", (*recommendations.Service).Unarchive)
	},
}

type mutation func(*recommendations.Service, context.Context, string) (recommendations.SuccessResponse, error)

func runMutation(ids []string, verb, done string, run mutation) error {
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	if err := a.authenticated(ctx); err != nil {
		return err
	}
	for _, id := range ids {
		if _, err := run(a.svc, ctx, id); err != nil {
			return apiError(fmt.Sprintf("%s %s failed", verb, id), err)
		}
		utils.Log.Infof("Recommendation %s %s successfully", id, done)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(archiveCmd)
	rootCmd.AddCommand(unarchiveCmd)
}
