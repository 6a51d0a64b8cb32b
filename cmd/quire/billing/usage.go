package billingcmder

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/quire/cmd/quire/workspace"
	"github.com/papercomputeco/quire/pkg/config"
	"github.com/papercomputeco/quire/pkg/subscription"
)

type usageCommander struct {
	refresh     bool
	sqlitePath  string
	postgresDSN string
	backendURL  string
	anonKey     string
}

const usageLongDesc string = `Show this month's research usage.

With --refresh the plan is first synced from the hosted billing backend.

Examples:
  quire usage
  quire usage --refresh`

const usageShortDesc string = "Show research usage this month"

func NewUsageCmd() *cobra.Command {
	cmder := &usageCommander{}

	cmd := &cobra.Command{
		Use:   "usage",
		Short: usageShortDesc,
		Long:  usageLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	cmd.Flags().BoolVar(&cmder.refresh, "refresh", false, "Sync the plan from the billing backend first")
	config.AddStringFlag(cmd, config.Registry, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Registry, config.FlagPostgres, &cmder.postgresDSN)
	config.AddStringFlag(cmd, config.Registry, config.FlagBackendURL, &cmder.backendURL)
	config.AddStringFlag(cmd, config.Registry, config.FlagAnonKey, &cmder.anonKey)

	return cmd
}

func (c *usageCommander) run(cmd *cobra.Command) error {
	ws, err := workspace.Load(cmd, config.FlagSQLite, config.FlagPostgres, config.FlagBackendURL, config.FlagAnonKey)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	user, token, err := ws.RequireUser(out)
	if err != nil {
		return err
	}

	driver, err := ws.OpenStorage(cmd.Context())
	if err != nil {
		return err
	}
	defer driver.Close()

	var sub *subscription.Subscription
	if c.refresh {
		sub, err = subscription.Refresh(cmd.Context(), ws.Billing(), driver, user.ID, token, time.Now())
	} else {
		sub, err = subscription.Ensure(cmd.Context(), driver, user.ID, time.Now())
	}
	if err != nil {
		return fmt.Errorf("loading usage: %w", err)
	}

	printUsage(out, sub)
	return nil
}
