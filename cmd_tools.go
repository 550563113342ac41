package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	configx "github.com/tanpawarit/omnidim-call-relay/pkg/config"
	agentsx "github.com/tanpawarit/omnidim-call-relay/relay/agents"
	callctxx "github.com/tanpawarit/omnidim-call-relay/relay/callctx"
	phonex "github.com/tanpawarit/omnidim-call-relay/relay/phone"
)

func newExtractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract [file]",
		Short: "Print the phone numbers found in a file or stdin, one per line",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			for _, n := range phonex.Extract(text) {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}
}

func newContextCmd() *cobra.Command {
	var (
		query   string
		purpose string
	)

	cmd := &cobra.Command{
		Use:   "context [business-info-file]",
		Short: "Print the call context and agent id a dispatch would use",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			if purpose == "" {
				purpose = callctxx.InferPurpose(query)
			}

			agentsCfg, err := configx.New[agentsx.Config]("")
			if err != nil {
				return err
			}
			selector, err := agentsx.NewSelector(*agentsCfg)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{
				"agent_id":      selector.AgentFor(purpose),
				"call_context":  callctxx.Build(query, info, purpose),
				"phone_numbers": phonex.Extract(info),
			})
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "user query")
	cmd.Flags().StringVarP(&purpose, "purpose", "p", "", "call purpose (inferred from the query when empty)")

	return cmd
}

func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("read %s: %w", args[0], err)
		}
		return string(raw), nil
	}
	raw, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(raw), nil
}
