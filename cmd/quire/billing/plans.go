package billingcmder

import (
	"github.com/spf13/cobra"

	"github.com/papercomputeco/quire/cmd/quire/workspace"
	"github.com/papercomputeco/quire/pkg/subscription"
)

const plansShortDesc string = "List subscription plans"

func NewPlansCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plans",
		Short: plansShortDesc,
		Long: `List subscription plans. The current plan is marked when signed in.

Upgrade with:
  quire checkout pro`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := workspace.Load(cmd)
			if err != nil {
				return err
			}

			var current subscription.PlanID
			if user, _, err := ws.CurrentUser(); err == nil {
				current = currentPlan(cmd, ws, user.ID)
			}

			printPlans(cmd.OutOrStdout(), current)
			return nil
		},
	}

	return cmd
}

// currentPlan reads the stored plan without creating a row.
func currentPlan(cmd *cobra.Command, ws *workspace.Workspace, userID string) subscription.PlanID {
	driver, err := ws.OpenStorage(cmd.Context())
	if err != nil {
		ws.Logger.Debug("opening storage failed", "error", err)
		return ""
	}
	defer driver.Close()

	sub, err := driver.GetSubscription(cmd.Context(), userID)
	if err != nil {
		return subscription.PlanFree
	}
	return sub.Plan
}
