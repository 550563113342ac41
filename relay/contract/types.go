package contract

import "encoding/json"

const (
	PurposeDentalAppointment     = "dental_appointment"
	PurposeRestaurantReservation = "restaurant_reservation"
	PurposeMedicalAppointment    = "medical_appointment"
	PurposeGeneralInquiry        = "general_inquiry"
)

// CallContext is passed through to the calling platform untouched. Keys are
// only ever added.
type CallContext map[string]any

type CallStatus string

const (
	CallDispatched CallStatus = "dispatched"
	CallFailed     CallStatus = "failed"
)

type DispatchRequest struct {
	UserQuery    string   `json:"user_query"`
	BusinessInfo string   `json:"business_info"`
	PhoneNumbers []string `json:"phone_numbers,omitempty"`
	CallPurpose  string   `json:"call_purpose,omitempty"`
}

// CallResult is the outcome for one number. A dispatched result always
// carries call_id and result, even when the platform reply was empty; a
// failed one carries error instead.
type CallResult struct {
	PhoneNumber  string
	Status       CallStatus
	CallID       any
	Result       map[string]any
	Error        string
	BusinessInfo string
}

type dispatchedResultJSON struct {
	PhoneNumber  string         `json:"phone_number"`
	Status       CallStatus     `json:"status"`
	CallID       any            `json:"call_id"`
	Result       map[string]any `json:"result"`
	BusinessInfo string         `json:"business_info"`
}

type failedResultJSON struct {
	PhoneNumber  string     `json:"phone_number"`
	Status       CallStatus `json:"status"`
	Error        string     `json:"error"`
	BusinessInfo string     `json:"business_info"`
}

func (r CallResult) MarshalJSON() ([]byte, error) {
	if r.Status == CallFailed {
		return json.Marshal(failedResultJSON{
			PhoneNumber:  r.PhoneNumber,
			Status:       r.Status,
			Error:        r.Error,
			BusinessInfo: r.BusinessInfo,
		})
	}

	result := r.Result
	if result == nil {
		result = map[string]any{}
	}
	return json.Marshal(dispatchedResultJSON{
		PhoneNumber:  r.PhoneNumber,
		Status:       r.Status,
		CallID:       r.CallID,
		Result:       result,
		BusinessInfo: r.BusinessInfo,
	})
}

type DispatchResponse struct {
	Success         bool         `json:"success"`
	CallsDispatched int          `json:"calls_dispatched"`
	Results         []CallResult `json:"results"`
	CallContext     CallContext  `json:"call_context"`
}
