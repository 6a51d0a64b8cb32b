// Package configcmder provides the config command for managing persistent
// quire configuration stored in the .quire/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent quire configuration.

Configuration is stored as config.toml in the .quire/ directory and provides
default values for command flags. CLI flags and QUIRE_* environment
variables always take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  backend.url, backend.anon_key, backend.functions_path, backend.research_path,
  storage.sqlite_path, storage.postgres_dsn,
  api.listen, api.jwt_secret,
  events.brokers, events.topic,
  render.width

Use subcommands to get, set, or list configuration values:
  quire config set <key> <value>    Set a configuration value
  quire config get <key>            Get a configuration value
  quire config list                 List all configuration values

Examples:
  quire config set backend.url https://project.example.co
  quire config set render.width 100
  quire config get backend.url
  quire config list`

const configShortDesc string = "Manage persistent quire configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
