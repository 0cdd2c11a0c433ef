package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"admin-exporter/admin"
)

var loginWait time.Duration

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in through a browser window and save the session cookies",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()

		session, err := admin.CaptureSession(ctx, cfg, logger, loginWait)
		if err != nil {
			return err
		}
		if err := session.Save(cfg.SessionFile); err != nil {
			return err
		}
		logger.Info("[admin] Session saved to %s", cfg.SessionFile)
		return nil
	},
}

func init() {
	loginCmd.Flags().DurationVar(&loginWait, "wait", 5*time.Minute, "how long to wait for the sign-in")
	rootCmd.AddCommand(loginCmd)
}
