package billingcmder

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/quire/cmd/quire/workspace"
	"github.com/papercomputeco/quire/pkg/cliui"
	"github.com/papercomputeco/quire/pkg/config"
	"github.com/papercomputeco/quire/pkg/subscription"
)

type linkCommander struct {
	backendURL string
	anonKey    string
}

const checkoutLongDesc string = `Start a checkout for a paid plan and print the page to open.

Examples:
  quire checkout pro
  quire checkout enterprise`

func NewCheckoutCmd() *cobra.Command {
	cmder := &linkCommander{}

	cmd := &cobra.Command{
		Use:       "checkout <plan>",
		Short:     "Upgrade to a paid plan",
		Long:      checkoutLongDesc,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(subscription.PlanPro), string(subscription.PlanEnterprise)},
		RunE: func(cmd *cobra.Command, args []string) error {
			plan := subscription.PlanID(strings.ToLower(strings.TrimSpace(args[0])))
			return cmder.run(cmd, "Open this page to complete checkout:", func(ws *workspace.Workspace, token string) (string, error) {
				url, err := ws.Billing().Checkout(cmd.Context(), token, plan)
				if errors.Is(err, subscription.ErrInvalidPlan) {
					return "", fmt.Errorf("%w: %q (choose pro or enterprise)", err, plan)
				}
				return url, err
			})
		},
	}

	config.AddStringFlag(cmd, config.Registry, config.FlagBackendURL, &cmder.backendURL)
	config.AddStringFlag(cmd, config.Registry, config.FlagAnonKey, &cmder.anonKey)

	return cmd
}

func NewPortalCmd() *cobra.Command {
	cmder := &linkCommander{}

	cmd := &cobra.Command{
		Use:   "portal",
		Short: "Manage your subscription",
		Long:  "Print the customer portal page for managing billing and cancelling a subscription.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd, "Open this page to manage your subscription:", func(ws *workspace.Workspace, token string) (string, error) {
				return ws.Billing().Portal(cmd.Context(), token)
			})
		},
	}

	config.AddStringFlag(cmd, config.Registry, config.FlagBackendURL, &cmder.backendURL)
	config.AddStringFlag(cmd, config.Registry, config.FlagAnonKey, &cmder.anonKey)

	return cmd
}

func (c *linkCommander) run(cmd *cobra.Command, label string, fetch func(*workspace.Workspace, string) (string, error)) error {
	ws, err := workspace.Load(cmd, config.FlagBackendURL, config.FlagAnonKey)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	_, token, err := ws.RequireUser(out)
	if err != nil {
		return err
	}

	url, err := fetch(ws, token)
	if err != nil {
		return err
	}
	if url == "" {
		return errors.New("backend returned no url")
	}

	fmt.Fprintf(out, "\n  %s\n  %s\n\n", label, cliui.AccentStyle.Render(url))
	return nil
}
