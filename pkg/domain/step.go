package domain

// StepID identifies a stage of the wizard.
type StepID string

const (
	// StepIdle is the zero value: no wizard in progress.
	StepIdle StepID = ""

	StepUsername         StepID = "username"
	StepExpireSelect     StepID = "expire_select"
	StepExpireManualDays StepID = "expire_manual_days"
	StepEmail            StepID = "email"
	StepTelegramID       StepID = "telegram_id"
	StepHWIDLimit        StepID = "hwid_limit"
	StepTag              StepID = "tag"
	StepDescription      StepID = "description"
	StepTrafficSelect    StepID = "traffic_select"
	StepTrafficManualGB  StepID = "traffic_manual_gb"
	StepTrafficStrategy  StepID = "traffic_strategy"
	StepInternalSquads   StepID = "internal_squads"
	StepExternalSquad    StepID = "external_squad"
	StepConfirm          StepID = "confirm"
)

// Steps lists every wizard step in flow order. Detours follow their parent.
var Steps = []StepID{
	StepUsername,
	StepExpireSelect,
	StepExpireManualDays,
	StepEmail,
	StepTelegramID,
	StepHWIDLimit,
	StepTag,
	StepDescription,
	StepTrafficSelect,
	StepTrafficManualGB,
	StepTrafficStrategy,
	StepInternalSquads,
	StepExternalSquad,
	StepConfirm,
}

// Valid reports whether s is one of the wizard steps.
func (s StepID) Valid() bool {
	for _, step := range Steps {
		if step == s {
			return true
		}
	}
	return false
}
