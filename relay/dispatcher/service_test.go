package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"testing"

	contractx "github.com/tanpawarit/omnidim-call-relay/relay/contract"
)

type dispatchCall struct {
	agentID     int
	toNumber    string
	callContext contractx.CallContext
}

type fakeCalls struct {
	configured bool
	emptyReply bool
	failFor    map[string]bool
	calls      []dispatchCall
	logs       map[string]map[string]any
}

func (f *fakeCalls) Configured() bool {
	return f.configured
}

func (f *fakeCalls) Dispatch(ctx context.Context, agentID int, toNumber string, callContext contractx.CallContext) (map[string]any, error) {
	f.calls = append(f.calls, dispatchCall{agentID: agentID, toNumber: toNumber, callContext: callContext})
	if f.failFor[toNumber] {
		return nil, fmt.Errorf("%w: http status=500 body=boom", contractx.ErrDispatch)
	}
	if f.emptyReply {
		return nil, nil
	}
	return map[string]any{"call_id": "call-" + toNumber}, nil
}

func (f *fakeCalls) FetchLog(ctx context.Context, callID string) (map[string]any, error) {
	if log, ok := f.logs[callID]; ok {
		return log, nil
	}
	return nil, fmt.Errorf("%w: http status=404 body=", contractx.ErrLogFetch)
}

type fakeAgents struct {
	purposes []string
}

func (f *fakeAgents) AgentFor(callPurpose string) int {
	f.purposes = append(f.purposes, callPurpose)
	return 77
}

func newTestService(t *testing.T, calls *fakeCalls) (*Service, *fakeAgents) {
	t.Helper()

	agents := &fakeAgents{}
	svc, err := New(calls, agents)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return svc, agents
}

func TestNewRequiresDependencies(t *testing.T) {
	t.Parallel()

	if _, err := New(nil, &fakeAgents{}); err == nil {
		t.Fatal("expected error for nil call client")
	}
	if _, err := New(&fakeCalls{}, nil); err == nil {
		t.Fatal("expected error for nil agent selector")
	}
}

func TestDispatchNotConfiguredShortCircuits(t *testing.T) {
	t.Parallel()

	calls := &fakeCalls{configured: false}
	svc, agents := newTestService(t, calls)

	_, err := svc.Dispatch(context.Background(), contractx.DispatchRequest{PhoneNumbers: []string{"5551234567"}})
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("Dispatch() error = %v, want ErrNotConfigured", err)
	}
	if len(calls.calls) != 0 || len(agents.purposes) != 0 {
		t.Fatal("no work should happen when the api key is missing")
	}
}

func TestDispatchNoPhoneNumbers(t *testing.T) {
	t.Parallel()

	calls := &fakeCalls{configured: true}
	svc, _ := newTestService(t, calls)

	_, err := svc.Dispatch(context.Background(), contractx.DispatchRequest{
		UserQuery:    "call the dentist",
		BusinessInfo: "Smile Dental, Suite 12, zip 94107",
		PhoneNumbers: []string{},
	})
	if !errors.Is(err, ErrNoPhoneNumbers) {
		t.Fatalf("Dispatch() error = %v, want ErrNoPhoneNumbers", err)
	}
	if len(calls.calls) != 0 {
		t.Fatalf("unexpected dispatches: %v", calls.calls)
	}
}

func TestDispatchExtractsFromBusinessInfo(t *testing.T) {
	t.Parallel()

	calls := &fakeCalls{configured: true}
	svc, agents := newTestService(t, calls)

	resp, err := svc.Dispatch(context.Background(), contractx.DispatchRequest{
		UserQuery:    "Find dentists near me and call them",
		BusinessInfo: "Name: Smile Dental Center\nPhone: (555) 123-4567\nName: Family Dental Care\nPhone: 555-987-6543",
		CallPurpose:  contractx.PurposeDentalAppointment,
	})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}

	if !resp.Success || resp.CallsDispatched != 2 || len(resp.Results) != 2 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Results[0].PhoneNumber != "+15551234567" || resp.Results[1].PhoneNumber != "+15559876543" {
		t.Fatalf("unexpected numbers: %+v", resp.Results)
	}
	if resp.Results[0].CallID != "call-+15551234567" {
		t.Fatalf("call_id = %v", resp.Results[0].CallID)
	}
	if len(agents.purposes) != 1 || agents.purposes[0] != contractx.PurposeDentalAppointment {
		t.Fatalf("agent lookups = %v, want one dental lookup", agents.purposes)
	}
	if calls.calls[0].agentID != 77 {
		t.Fatalf("agent id = %d, want 77", calls.calls[0].agentID)
	}
	if resp.CallContext["service_type"] != "dental" || resp.CallContext["urgency"] != "routine" {
		t.Fatalf("unexpected context: %v", resp.CallContext)
	}
	if resp.CallContext["business_name"] != "Family Dental Care" {
		t.Fatalf("business_name = %v", resp.CallContext["business_name"])
	}
}

func TestDispatchSharesOneContextAcrossCalls(t *testing.T) {
	t.Parallel()

	calls := &fakeCalls{configured: true}
	svc, _ := newTestService(t, calls)

	if _, err := svc.Dispatch(context.Background(), contractx.DispatchRequest{
		PhoneNumbers: []string{"5551234567", "5559876543"},
	}); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}

	calls.calls[0].callContext["marker"] = true
	if calls.calls[1].callContext["marker"] != true {
		t.Fatal("expected every call to receive the same context value")
	}
}

func TestDispatchLimitsToThreeCalls(t *testing.T) {
	t.Parallel()

	calls := &fakeCalls{configured: true}
	svc, _ := newTestService(t, calls)

	resp, err := svc.Dispatch(context.Background(), contractx.DispatchRequest{
		PhoneNumbers: []string{"5550000001", "5550000002", "5550000003", "5550000004", "5550000005"},
	})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if len(calls.calls) != 3 || len(resp.Results) != 3 || resp.CallsDispatched != 3 {
		t.Fatalf("dispatched %d calls / %d results, want 3", len(calls.calls), len(resp.Results))
	}
	for i, want := range []string{"+15550000001", "+15550000002", "+15550000003"} {
		if calls.calls[i].toNumber != want {
			t.Fatalf("call %d to %s, want %s", i, calls.calls[i].toNumber, want)
		}
	}
}

func TestDispatchPartialFailureKeepsGoing(t *testing.T) {
	t.Parallel()

	calls := &fakeCalls{
		configured: true,
		failFor:    map[string]bool{"+15550000001": true},
	}
	svc, _ := newTestService(t, calls)

	resp, err := svc.Dispatch(context.Background(), contractx.DispatchRequest{
		BusinessInfo: "two clinics",
		PhoneNumbers: []string{"5550000001", "+15550000002"},
	})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if !resp.Success || resp.CallsDispatched != 1 || len(resp.Results) != 2 {
		t.Fatalf("unexpected response: %+v", resp)
	}

	failed, dispatched := resp.Results[0], resp.Results[1]
	if failed.Status != contractx.CallFailed || failed.Error == "" || failed.CallID != nil || failed.Result != nil {
		t.Fatalf("unexpected failed result: %+v", failed)
	}
	if dispatched.Status != contractx.CallDispatched || dispatched.Error != "" {
		t.Fatalf("unexpected dispatched result: %+v", dispatched)
	}
	if failed.BusinessInfo != "two clinics" || dispatched.BusinessInfo != "two clinics" {
		t.Fatal("business info should be echoed on every result")
	}
}

func TestDispatchEmptyReplyStillRecordsResult(t *testing.T) {
	t.Parallel()

	calls := &fakeCalls{configured: true, emptyReply: true}
	svc, _ := newTestService(t, calls)

	resp, err := svc.Dispatch(context.Background(), contractx.DispatchRequest{PhoneNumbers: []string{"5551234567"}})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if resp.CallsDispatched != 1 {
		t.Fatalf("calls_dispatched = %d, want 1", resp.CallsDispatched)
	}
	got := resp.Results[0]
	if got.Status != contractx.CallDispatched || got.CallID != nil {
		t.Fatalf("unexpected result: %+v", got)
	}
	if got.Result == nil || len(got.Result) != 0 {
		t.Fatalf("result = %#v, want empty non-nil map", got.Result)
	}
}

func TestDispatchDefaultsPurpose(t *testing.T) {
	t.Parallel()

	calls := &fakeCalls{configured: true}
	svc, agents := newTestService(t, calls)

	resp, err := svc.Dispatch(context.Background(), contractx.DispatchRequest{PhoneNumbers: []string{"5551234567"}})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if agents.purposes[0] != contractx.PurposeGeneralInquiry {
		t.Fatalf("purpose = %q, want general_inquiry", agents.purposes[0])
	}
	if resp.CallContext["call_purpose"] != contractx.PurposeGeneralInquiry {
		t.Fatalf("call_purpose = %v", resp.CallContext["call_purpose"])
	}
}

func TestCallStatus(t *testing.T) {
	t.Parallel()

	calls := &fakeCalls{
		configured: true,
		logs:       map[string]map[string]any{"abc": {"status": "completed"}},
	}
	svc, _ := newTestService(t, calls)

	log, err := svc.CallStatus(context.Background(), "abc")
	if err != nil {
		t.Fatalf("CallStatus() error = %v", err)
	}
	if log["status"] != "completed" {
		t.Fatalf("unexpected log: %v", log)
	}

	if _, err := svc.CallStatus(context.Background(), "missing"); !errors.Is(err, contractx.ErrLogFetch) {
		t.Fatalf("CallStatus() error = %v, want ErrLogFetch", err)
	}

	unconfigured, _ := newTestService(t, &fakeCalls{})
	if _, err := unconfigured.CallStatus(context.Background(), "abc"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("CallStatus() error = %v, want ErrNotConfigured", err)
	}
}
