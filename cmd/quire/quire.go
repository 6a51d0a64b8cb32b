// Package quirecmder
package quirecmder

import (
	"github.com/spf13/cobra"

	authcmder "github.com/papercomputeco/quire/cmd/quire/auth"
	billingcmder "github.com/papercomputeco/quire/cmd/quire/billing"
	configcmder "github.com/papercomputeco/quire/cmd/quire/config"
	exportcmder "github.com/papercomputeco/quire/cmd/quire/export"
	historycmder "github.com/papercomputeco/quire/cmd/quire/history"
	researchcmder "github.com/papercomputeco/quire/cmd/quire/research"
	servecmder "github.com/papercomputeco/quire/cmd/quire/serve"
	tuicmder "github.com/papercomputeco/quire/cmd/quire/tui"
	versioncmder "github.com/papercomputeco/quire/cmd/version"
)

const quireLongDesc string = `Quire researches a topic with a hosted AI backend and renders the
streamed answer as classified sections.

Start researching:
  quire auth login                     Sign in
  quire research "Quantum Computing"   Research a topic
  quire tui                            Research interactively
  quire history                        Browse past research

Run the service:
  quire serve                          Run the API server`

const quireShortDesc string = "Quire - AI topic research"

func NewQuireCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "quire",
		Short:         quireShortDesc,
		Long:          quireLongDesc,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .quire/ config directory")

	// Add subcommands
	cmd.AddCommand(researchcmder.NewResearchCmd())
	cmd.AddCommand(historycmder.NewHistoryCmd())
	cmd.AddCommand(exportcmder.NewExportCmd())
	cmd.AddCommand(billingcmder.NewUsageCmd())
	cmd.AddCommand(billingcmder.NewPlansCmd())
	cmd.AddCommand(billingcmder.NewCheckoutCmd())
	cmd.AddCommand(billingcmder.NewPortalCmd())
	cmd.AddCommand(authcmder.NewAuthCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(tuicmder.NewTUICmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
