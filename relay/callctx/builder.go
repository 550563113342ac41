package callctx

import (
	"strings"

	contractx "github.com/tanpawarit/omnidim-call-relay/relay/contract"
)

type serviceType string

const (
	serviceDental     serviceType = "dental"
	serviceRestaurant serviceType = "restaurant"
	serviceMedical    serviceType = "medical"
	serviceGeneral    serviceType = "general"
)

var (
	nameKeywords    = []string{"name:", "business:", "title:"}
	addressKeywords = []string{"address:", "location:", "street:"}

	dentalKeywords     = []string{"dentist", "dental", "teeth"}
	restaurantKeywords = []string{"restaurant", "dining", "reservation"}
	medicalKeywords    = []string{"doctor", "medical", "health"}
)

// Build assembles the call context sent along with every dispatched call of
// one request.
func Build(userQuery, businessInfo, callPurpose string) contractx.CallContext {
	name, address := scanBusinessInfo(businessInfo)

	cc := contractx.CallContext{
		"user_query":       userQuery,
		"call_purpose":     callPurpose,
		"business_name":    name,
		"business_address": address,
		"timestamp":        "",
		"user_preferences": map[string]any{},
	}

	query := strings.ToLower(userQuery)
	switch classify(query) {
	case serviceDental:
		urgency := "routine"
		if strings.Contains(query, "emergency") {
			urgency = "urgent"
		}
		merge(cc, map[string]any{
			"service_type":       string(serviceDental),
			"appointment_reason": "general checkup or consultation",
			"urgency":            urgency,
		})
	case serviceRestaurant:
		merge(cc, map[string]any{
			"service_type":        string(serviceRestaurant),
			"reservation_purpose": "dining reservation",
			"party_size":          "2",
			"preferred_time":      "evening",
		})
	case serviceMedical:
		merge(cc, map[string]any{
			"service_type":       string(serviceMedical),
			"appointment_reason": "consultation",
			"urgency":            "routine",
		})
	default:
		merge(cc, map[string]any{
			"service_type": string(serviceGeneral),
			"inquiry_type": "information",
		})
	}

	return cc
}

// InferPurpose guesses a call purpose label from a free-form query.
func InferPurpose(userQuery string) string {
	query := strings.ToLower(userQuery)
	switch {
	case containsAny(query, "dentist", "dental"):
		return contractx.PurposeDentalAppointment
	case containsAny(query, restaurantKeywords...):
		return contractx.PurposeRestaurantReservation
	case containsAny(query, medicalKeywords...):
		return contractx.PurposeMedicalAppointment
	default:
		return contractx.PurposeGeneralInquiry
	}
}

// scanBusinessInfo picks the business name and address out of "key: value"
// lines. A later matching line wins. A line that names the business is never
// read as an address.
func scanBusinessInfo(info string) (name, address string) {
	for _, line := range strings.Split(info, "\n") {
		lower := strings.ToLower(line)
		switch {
		case containsAny(lower, nameKeywords...):
			name = afterColon(line)
		case containsAny(lower, addressKeywords...):
			address = afterColon(line)
		}
	}
	return name, address
}

func classify(lowerQuery string) serviceType {
	switch {
	case containsAny(lowerQuery, dentalKeywords...):
		return serviceDental
	case containsAny(lowerQuery, restaurantKeywords...):
		return serviceRestaurant
	case containsAny(lowerQuery, medicalKeywords...):
		return serviceMedical
	default:
		return serviceGeneral
	}
}

func afterColon(line string) string {
	_, value, _ := strings.Cut(line, ":")
	return strings.TrimSpace(value)
}

func containsAny(s string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func merge(dst contractx.CallContext, fields map[string]any) {
	for k, v := range fields {
		dst[k] = v
	}
}
