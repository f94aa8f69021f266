package domain

import (
	"strings"
	"time"
)

// TrafficStrategy is the traffic reset policy understood by the panel.
type TrafficStrategy string

const (
	StrategyNoReset TrafficStrategy = "NO_RESET"
	StrategyDay     TrafficStrategy = "DAY"
	StrategyWeek    TrafficStrategy = "WEEK"
	StrategyMonth   TrafficStrategy = "MONTH"
)

// DefaultStrategy applies when the strategy step is skipped.
const DefaultStrategy = StrategyMonth

// DefaultHWIDDeviceLimit applies when the hwid step is skipped.
const DefaultHWIDDeviceLimit = 2

// Strategies lists the selectable strategies in display order.
var Strategies = []TrafficStrategy{StrategyNoReset, StrategyMonth, StrategyWeek, StrategyDay}

// ParseStrategy accepts the panel names and the button aliases DAILY, WEEKLY, MONTHLY.
func ParseStrategy(name string) (TrafficStrategy, bool) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "NO_RESET":
		return StrategyNoReset, true
	case "DAY", "DAILY":
		return StrategyDay, true
	case "WEEK", "WEEKLY":
		return StrategyWeek, true
	case "MONTH", "MONTHLY":
		return StrategyMonth, true
	}
	return "", false
}

// CreateUserRequest is the finalized accumulator mapped to the panel schema.
type CreateUserRequest struct {
	Username             string          `json:"username"`
	ShortUUID            string          `json:"shortUuid"`
	ExpireAt             time.Time       `json:"expireAt"`
	Email                *string         `json:"email,omitempty"`
	TelegramID           *int64          `json:"telegramId,omitempty"`
	HWIDDeviceLimit      int             `json:"hwidDeviceLimit"`
	Tag                  *string         `json:"tag,omitempty"`
	Description          *string         `json:"description,omitempty"`
	TrafficLimitBytes    int64           `json:"trafficLimitBytes"`
	TrafficLimitStrategy TrafficStrategy `json:"trafficLimitStrategy"`
	ActiveInternalSquads []string        `json:"activeInternalSquads"`
	ExternalSquadUUID    *string         `json:"externalSquadUuid,omitempty"`
}

// UserRecord is the summary of a created user echoed back by the panel.
type UserRecord struct {
	UUID            string    `json:"uuid"`
	ShortUUID       string    `json:"shortUuid"`
	Username        string    `json:"username"`
	ExpireAt        time.Time `json:"expireAt"`
	SubscriptionURL string    `json:"subscriptionUrl"`
}

// Outcome is the classified result of a submission.
type Outcome struct {
	Record *UserRecord
	// Err is nil on success, an *APIError or a *TransportError otherwise.
	Err error
}

// OK reports whether the submission succeeded.
func (o Outcome) OK() bool {
	return o.Err == nil && o.Record != nil
}
