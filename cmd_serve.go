package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	configx "github.com/tanpawarit/omnidim-call-relay/pkg/config"
	"github.com/tanpawarit/omnidim-call-relay/pkg/omnidim"
	agentsx "github.com/tanpawarit/omnidim-call-relay/relay/agents"
	dispatcherx "github.com/tanpawarit/omnidim-call-relay/relay/dispatcher"
	"github.com/tanpawarit/omnidim-call-relay/relay/httpapi"
)

func newServeCmd() *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP relay",
		RunE: func(cmd *cobra.Command, args []string) error {
			if debug {
				gin.SetMode(gin.DebugMode)
			} else {
				gin.SetMode(gin.ReleaseMode)
			}

			omnidimCfg := configx.MustNew[omnidim.Config]("OMNIDIMENSION")
			agentsCfg := configx.MustNew[agentsx.Config]("")
			serverCfg := configx.MustNew[httpapi.ServerConfig]("HTTP")

			client := omnidim.MustNew(*omnidimCfg)
			if !client.Configured() {
				log.Warn().Msg("OMNIDIMENSION_API_KEY is not set; dispatch and call status will return 500")
			}

			svc, err := dispatcherx.New(client, agentsx.MustNewSelector(*agentsCfg))
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return httpapi.Serve(ctx, *serverCfg, httpapi.NewRouter(httpapi.NewHandlers(svc)))
		},
	}
	cmd.Flags().BoolVar(&debug, "debug", false, "run gin in debug mode")

	return cmd
}
