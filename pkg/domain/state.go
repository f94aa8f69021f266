package domain

import (
	"slices"
	"time"
)

// UserID is the transport identity of an operator (a Telegram user id).
type UserID int64

// Session is the in-progress wizard of a single operator.
type Session struct {
	UserID      UserID `json:"user_id"`
	CurrentStep StepID `json:"current_step"`
	Fields      Fields `json:"fields"`

	// Sealed holds the encrypted Fields when the session passed through an
	// encrypting store middleware. Empty for plain sessions.
	Sealed string `json:"sealed,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// NewSession creates a clean session positioned at the first step.
func NewSession(userID UserID) *Session {
	return &Session{
		UserID:      userID,
		CurrentStep: StepUsername,
		UpdatedAt:   time.Now().UTC(),
	}
}

// Clone returns a deep copy so stores and handlers never share slices or pointers.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Fields = s.Fields.Clone()
	return &out
}

// Fields is the accumulator: the partial provisioning request built across steps.
// Pointer fields distinguish "not decided" (nil) from zero values.
type Fields struct {
	Username       string `json:"username,omitempty"`
	ShortID        string `json:"short_id,omitempty"`
	ManualUsername bool   `json:"manual_username,omitempty"`

	ExpireMonths int        `json:"expire_months"`
	ExpireDays   int        `json:"expire_days"`
	ExpireAt     *time.Time `json:"expire_at,omitempty"`

	Email           *string `json:"email,omitempty"`
	TelegramID      *int64  `json:"telegram_id,omitempty"`
	HWIDDeviceLimit *int    `json:"hwid_device_limit,omitempty"`
	Tag             *string `json:"tag,omitempty"`
	Description     *string `json:"description,omitempty"`

	TrafficLimitBytes    *int64          `json:"traffic_limit_bytes,omitempty"`
	TrafficLimitStrategy TrafficStrategy `json:"traffic_limit_strategy,omitempty"`

	SelectedInternalSquads []string `json:"selected_internal_squads,omitempty"`
	ActiveInternalSquads   []string `json:"active_internal_squads,omitempty"`
	ExternalSquadID        *string  `json:"external_squad_id,omitempty"`
}

// Clone deep-copies the accumulator.
func (f Fields) Clone() Fields {
	out := f
	out.ExpireAt = clonePtr(f.ExpireAt)
	out.Email = clonePtr(f.Email)
	out.TelegramID = clonePtr(f.TelegramID)
	out.HWIDDeviceLimit = clonePtr(f.HWIDDeviceLimit)
	out.Tag = clonePtr(f.Tag)
	out.Description = clonePtr(f.Description)
	out.TrafficLimitBytes = clonePtr(f.TrafficLimitBytes)
	out.ExternalSquadID = clonePtr(f.ExternalSquadID)
	out.SelectedInternalSquads = slices.Clone(f.SelectedInternalSquads)
	out.ActiveInternalSquads = slices.Clone(f.ActiveInternalSquads)
	return out
}

// Selected reports whether the internal squad key is in the toggle set.
func (f Fields) Selected(key string) bool {
	return slices.Contains(f.SelectedInternalSquads, key)
}

// Toggle flips membership of key in the internal squad selection.
func (f *Fields) Toggle(key string) {
	if i := slices.Index(f.SelectedInternalSquads, key); i >= 0 {
		f.SelectedInternalSquads = slices.Delete(f.SelectedInternalSquads, i, i+1)
		return
	}
	f.SelectedInternalSquads = append(f.SelectedInternalSquads, key)
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
