package contract

import "errors"

var (
	ErrNotConfigured  = errors.New("omnidimension api key not configured")
	ErrNoPhoneNumbers = errors.New("no phone numbers found")
	ErrDispatch       = errors.New("API call failed")
	ErrLogFetch       = errors.New("failed to get call log")
)
