package agents

import (
	"fmt"

	contractx "github.com/tanpawarit/omnidim-call-relay/relay/contract"
)

// Config holds the agent ids configured on the OmniDimension dashboard. A
// purpose-specific id of zero falls back to DefaultAgentID.
type Config struct {
	DefaultAgentID    int `envconfig:"DEFAULT_AGENT_ID" default:"123"`
	DentalAgentID     int `envconfig:"DENTAL_AGENT_ID" default:"0"`
	RestaurantAgentID int `envconfig:"RESTAURANT_AGENT_ID" default:"0"`
	MedicalAgentID    int `envconfig:"MEDICAL_AGENT_ID" default:"0"`
	GeneralAgentID    int `envconfig:"GENERAL_AGENT_ID" default:"0"`
}

func (c Config) Validate() error {
	if c.DefaultAgentID <= 0 {
		return fmt.Errorf("default agent id must be positive, got %d", c.DefaultAgentID)
	}
	for name, id := range map[string]int{
		"dental":     c.DentalAgentID,
		"restaurant": c.RestaurantAgentID,
		"medical":    c.MedicalAgentID,
		"general":    c.GeneralAgentID,
	} {
		if id < 0 {
			return fmt.Errorf("%s agent id must not be negative, got %d", name, id)
		}
	}
	return nil
}

var _ contractx.AgentSelector = (*Selector)(nil)

// Selector resolves a call purpose to an agent id. It is immutable once built.
type Selector struct {
	byPurpose map[string]int
	fallback  int
}

func NewSelector(cfg Config) (*Selector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pick := func(id int) int {
		if id > 0 {
			return id
		}
		return cfg.DefaultAgentID
	}

	return &Selector{
		byPurpose: map[string]int{
			contractx.PurposeDentalAppointment:     pick(cfg.DentalAgentID),
			contractx.PurposeRestaurantReservation: pick(cfg.RestaurantAgentID),
			contractx.PurposeMedicalAppointment:    pick(cfg.MedicalAgentID),
			contractx.PurposeGeneralInquiry:        pick(cfg.GeneralAgentID),
		},
		fallback: cfg.DefaultAgentID,
	}, nil
}

func MustNewSelector(cfg Config) *Selector {
	s, err := NewSelector(cfg)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Selector) AgentFor(callPurpose string) int {
	if id, ok := s.byPurpose[callPurpose]; ok {
		return id
	}
	return s.fallback
}
