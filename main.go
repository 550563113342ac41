package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	configx "github.com/tanpawarit/omnidim-call-relay/pkg/config"
	logx "github.com/tanpawarit/omnidim-call-relay/pkg/logger"
	_ "github.com/tanpawarit/omnidim-call-relay/pkg/logger/autoload"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("callrelay failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:           "callrelay",
		Short:         "Relay business call requests to the OmniDimension voice API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			configx.SetEnvFile(envFile)

			// LOG_* may live in the env file, so re-init after it is known.
			logCfg, err := configx.New[logx.Config]("LOG")
			if err != nil {
				return err
			}
			logx.Init(*logCfg)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env", "", "path to .env file (defaults to ./.env when present)")

	root.AddCommand(newServeCmd(), newExtractCmd(), newContextCmd())
	return root
}
