package contract

import "context"

type CallClient interface {
	Configured() bool
	Dispatch(ctx context.Context, agentID int, toNumber string, callContext CallContext) (map[string]any, error)
	FetchLog(ctx context.Context, callID string) (map[string]any, error)
}

type AgentSelector interface {
	AgentFor(callPurpose string) int
}
