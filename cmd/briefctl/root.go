package main

import (
	"agencysite/wizard"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	keyServer  = "server"
	keyToken   = "token"
	keyTimeout = "timeout"
	keyOutput  = "output"
)

// NewRootCommand builds the briefctl command tree with its own viper
// instance so tests do not share state.
func NewRootCommand() *cobra.Command {
	v := viper.New()
	var cfgFile string

	root := &cobra.Command{
		Use:   "briefctl",
		Short: "Submit project briefs and review incoming leads",
		Long: `briefctl walks clients through the five-step project brief and sends it
to the intake endpoint. Staff can list archived leads with an admin token.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(v, cfgFile)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.briefctl.yaml)")
	flags.String(keyServer, "http://localhost:8080", "intake server URL")
	flags.String(keyToken, "", "admin API token for lead commands")
	flags.Duration(keyTimeout, 60*time.Second, "HTTP timeout")
	flags.StringP(keyOutput, "o", "table", "output format (table, json)")

	for _, key := range []string{keyServer, keyToken, keyTimeout, keyOutput} {
		_ = v.BindPFlag(key, flags.Lookup(key))
	}

	root.AddCommand(newNewCmd(v), newSubmitCmd(v), newLeadsCmd(v))
	return root
}

func initConfig(v *viper.Viper, cfgFile string) error {
	v.SetEnvPrefix("BRIEFCTL")
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config %s: %w", cfgFile, err)
		}
		return nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	v.AddConfigPath(home)
	v.SetConfigType("yaml")
	v.SetConfigName(".briefctl")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}
	return nil
}

func newTransport(v *viper.Viper) *wizard.HTTPTransport {
	return wizard.NewHTTPTransport(v.GetString(keyServer), v.GetDuration(keyTimeout))
}
