package httpapi

import (
	"bytes"
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/rs/zerolog/log"

	"github.com/tanpawarit/omnidim-call-relay/pkg/metrics"
	contractx "github.com/tanpawarit/omnidim-call-relay/relay/contract"
)

const serviceName = "omnidimension-integration"

var errBodyNotObject = errors.New("request body must be a JSON object")

// Dispatcher is the slice of the dispatch service the handlers need.
type Dispatcher interface {
	Configured() bool
	Dispatch(ctx context.Context, req contractx.DispatchRequest) (contractx.DispatchResponse, error)
	CallStatus(ctx context.Context, callID string) (map[string]any, error)
}

type Handlers struct {
	dispatcher Dispatcher
}

func NewHandlers(dispatcher Dispatcher) *Handlers {
	return &Handlers{dispatcher: dispatcher}
}

// HandleDispatchCall handles POST /api/dispatch_call.
func (h *Handlers) HandleDispatchCall(c *gin.Context) {
	if !h.dispatcher.Configured() {
		metrics.RecordRejected("not_configured")
		notConfigured(c)
		return
	}

	var req contractx.DispatchRequest
	if err := bindObject(c, &req); err != nil {
		metrics.RecordRejected("bad_request")
		internalError(c, "Internal server error: ", err)
		return
	}

	resp, err := h.dispatcher.Dispatch(c.Request.Context(), req)
	switch {
	case errors.Is(err, contractx.ErrNoPhoneNumbers):
		metrics.RecordRejected("no_phone_numbers")
		c.JSON(http.StatusBadRequest, gin.H{"error": "No phone numbers found"})
		return
	case errors.Is(err, contractx.ErrNotConfigured):
		metrics.RecordRejected("not_configured")
		notConfigured(c)
		return
	case err != nil:
		internalError(c, "Internal server error: ", err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// HandleCallStatus handles GET /api/call_status/:call_id.
func (h *Handlers) HandleCallStatus(c *gin.Context) {
	if !h.dispatcher.Configured() {
		notConfigured(c)
		return
	}

	callLog, err := h.dispatcher.CallStatus(c.Request.Context(), c.Param("call_id"))
	if err != nil {
		internalError(c, "Failed to get call status: ", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"call_log": callLog,
	})
}

// HandleHealth handles GET /api/health. It never fails.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "healthy",
		"service":        serviceName,
		"api_configured": h.dispatcher.Configured(),
	})
}

func notConfigured(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, gin.H{"error": "OmniDimension API key not configured"})
}

func internalError(c *gin.Context, prefix string, err error) {
	log.Error().Err(err).Str("path", c.Request.URL.Path).Str("request_id", RequestID(c)).Msg("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": prefix + err.Error()})
}

// bindObject decodes the request body into dst, rejecting anything that is
// not a JSON object (null, arrays, scalars) before decoding.
func bindObject(c *gin.Context, dst any) error {
	raw, err := c.GetRawData()
	if err != nil {
		return err
	}
	if trimmed := bytes.TrimSpace(raw); len(trimmed) == 0 || trimmed[0] != '{' {
		return errBodyNotObject
	}
	return binding.JSON.BindBody(raw, dst)
}
