package dispatcher

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/tanpawarit/omnidim-call-relay/pkg/metrics"
	callctxx "github.com/tanpawarit/omnidim-call-relay/relay/callctx"
	contractx "github.com/tanpawarit/omnidim-call-relay/relay/contract"
	phonex "github.com/tanpawarit/omnidim-call-relay/relay/phone"
)

// MaxCallsPerRequest caps how many numbers one request may dial.
const MaxCallsPerRequest = 3

var (
	ErrNotConfigured  = contractx.ErrNotConfigured
	ErrNoPhoneNumbers = contractx.ErrNoPhoneNumbers
)

type Service struct {
	calls  contractx.CallClient
	agents contractx.AgentSelector
}

func New(calls contractx.CallClient, agents contractx.AgentSelector) (*Service, error) {
	if calls == nil {
		return nil, errors.New("call client is required")
	}
	if agents == nil {
		return nil, errors.New("agent selector is required")
	}
	return &Service{calls: calls, agents: agents}, nil
}

func (s *Service) Configured() bool {
	return s.calls.Configured()
}

// Dispatch places up to MaxCallsPerRequest calls, one after another. A failed
// call is recorded in the results and does not stop the remaining ones; only
// errors raised before dialing are returned.
func (s *Service) Dispatch(ctx context.Context, req contractx.DispatchRequest) (contractx.DispatchResponse, error) {
	if !s.calls.Configured() {
		return contractx.DispatchResponse{}, ErrNotConfigured
	}

	purpose := req.CallPurpose
	if purpose == "" {
		purpose = contractx.PurposeGeneralInquiry
	}

	numbers := req.PhoneNumbers
	if len(numbers) == 0 {
		numbers = phonex.Extract(req.BusinessInfo)
		if len(numbers) == 0 {
			return contractx.DispatchResponse{}, ErrNoPhoneNumbers
		}
		log.Debug().Strs("phone_numbers", numbers).Msg("extracted phone numbers from business info")
	}
	if len(numbers) > MaxCallsPerRequest {
		log.Info().Int("requested", len(numbers)).Int("limit", MaxCallsPerRequest).Msg("dropping phone numbers over the per-request limit")
		numbers = numbers[:MaxCallsPerRequest]
	}

	agentID := s.agents.AgentFor(purpose)
	callContext := callctxx.Build(req.UserQuery, req.BusinessInfo, purpose)

	resp := contractx.DispatchResponse{
		Success:     true,
		Results:     make([]contractx.CallResult, 0, len(numbers)),
		CallContext: callContext,
	}

	for _, raw := range numbers {
		number := phonex.Normalize(raw)

		out, err := s.calls.Dispatch(ctx, agentID, number, callContext)
		if err != nil {
			metrics.RecordCall(purpose, string(contractx.CallFailed))
			resp.Results = append(resp.Results, contractx.CallResult{
				PhoneNumber:  number,
				Status:       contractx.CallFailed,
				Error:        err.Error(),
				BusinessInfo: req.BusinessInfo,
			})
			continue
		}

		if out == nil {
			out = map[string]any{}
		}
		metrics.RecordCall(purpose, string(contractx.CallDispatched))
		resp.CallsDispatched++
		resp.Results = append(resp.Results, contractx.CallResult{
			PhoneNumber:  number,
			Status:       contractx.CallDispatched,
			CallID:       out["call_id"],
			Result:       out,
			BusinessInfo: req.BusinessInfo,
		})
	}

	log.Info().
		Str("call_purpose", purpose).
		Int("agent_id", agentID).
		Int("attempted", len(resp.Results)).
		Int("dispatched", resp.CallsDispatched).
		Msg("dispatch request handled")

	return resp, nil
}

func (s *Service) CallStatus(ctx context.Context, callID string) (map[string]any, error) {
	if !s.calls.Configured() {
		return nil, ErrNotConfigured
	}
	return s.calls.FetchLog(ctx, callID)
}
