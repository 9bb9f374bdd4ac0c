package usecase

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/bakehouse/internal/config"
)

const maxHistoryLimit = 100

// Settings are the business knobs of the use cases.
type Settings struct {
	DefaultDeliveryFee decimal.Decimal
	PickupLocation     string
	HistoryLimit       int
	StepMaxAttempts    int
	StaffLogins        []string
}

func newSettings(cfg *config.Config) Settings {
	return Settings{
		DefaultDeliveryFee: cfg.DefaultDeliveryFee,
		PickupLocation:     cfg.PickupLocation,
		HistoryLimit:       cfg.HistoryLimit,
		StepMaxAttempts:    cfg.StepMaxAttempts,
		StaffLogins:        cfg.StaffLogins,
	}
}

func (s Settings) isStaff(login string) bool {
	for _, staff := range s.StaffLogins {
		if strings.EqualFold(staff, login) {
			return true
		}
	}
	return false
}

func (s Settings) historyLimit(requested int) int {
	if requested <= 0 {
		requested = s.HistoryLimit
	}
	if requested <= 0 {
		requested = 20
	}
	if requested > maxHistoryLimit {
		requested = maxHistoryLimit
	}
	return requested
}

func (s Settings) maxAttempts() int {
	if s.StepMaxAttempts <= 0 {
		return 1
	}
	return s.StepMaxAttempts
}

// Recorder receives operation outcomes for monitoring.
type Recorder interface {
	OrderOperation(operation, outcome string)
	StepFailed(step string)
}

// NopRecorder discards every observation.
type NopRecorder struct{}

func (NopRecorder) OrderOperation(string, string) {}

func (NopRecorder) StepFailed(string) {}
