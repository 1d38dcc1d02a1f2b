// Package cli wires the relay's cobra commands.
package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hpn/hpn-chat-relay/internal/config"
)

// version is overridden at build time via -ldflags "-X github.com/hpn/hpn-chat-relay/internal/cli.version=..."
var version = "0.1.0"

var (
	// Global flags
	cfgFile string

	// v collects flag bindings; config.LoadWithViper layers file, env and defaults beneath them.
	v = viper.New()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "relay",
	Short: "Stateless chat relay in front of the Gemini generateContent API",
	Long: `relay accepts a prompt plus optional chat history over HTTP, forwards it
to Gemini as a single generateContent call using a server-held API key, and
returns the first candidate's text.

Configuration is read from config.yaml, HPN_RELAY_* environment variables and
a .env file. GEMINI_API_KEY always supplies the upstream key.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	// Disable default completion command
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml, ./configs/config.yaml or /etc/hpn-chat-relay/config.yaml)")
}

// loadConfig loads configuration with any bound flags taking priority.
func loadConfig() (*config.Configuration, error) {
	return config.LoadWithViper(v, cfgFile)
}
