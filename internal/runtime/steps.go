package runtime

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/aretw0/remnawizard/internal/validator"
	"github.com/aretw0/remnawizard/pkg/domain"
)

// Preset amounts offered by the choice steps.
var (
	expirePresets  = []int{1, 3, 6, 12}
	trafficPresets = []int{50, 100, 200, 500}
)

const daysPerMonth = 30

func defaultSteps() []*Step {
	return []*Step{
		{
			ID:       domain.StepUsername,
			Scope:    domain.ScopeUsername,
			Prompt:   promptUsername,
			OnAction: usernameAction,
			OnText:   usernameText,
		},
		{
			ID:       domain.StepExpireSelect,
			Scope:    domain.ScopeExpire,
			Prompt:   promptExpire,
			OnAction: expireAction,
		},
		{
			ID:     domain.StepExpireManualDays,
			Prompt: promptExpireDays,
			OnText: expireDaysText,
			OnSkip: back(domain.StepExpireSelect),
		},
		{
			ID:     domain.StepEmail,
			Prompt: promptEmail,
			OnText: textField("email", domain.StepTelegramID, func(f *domain.Fields, v string) { f.Email = &v }),
			OnSkip: skipTo(domain.StepTelegramID, func(f *domain.Fields) { f.Email = nil }),
		},
		{
			ID:     domain.StepTelegramID,
			Prompt: promptTelegramID,
			OnText: telegramIDText,
			OnSkip: skipTo(domain.StepHWIDLimit, func(f *domain.Fields) { f.TelegramID = nil }),
		},
		{
			ID:     domain.StepHWIDLimit,
			Prompt: promptHWID,
			OnText: hwidText,
			OnSkip: skipTo(domain.StepTag, func(f *domain.Fields) {
				f.HWIDDeviceLimit = domain.Ptr(domain.DefaultHWIDDeviceLimit)
			}),
		},
		{
			ID:     domain.StepTag,
			Prompt: promptTag,
			OnText: textField("tag", domain.StepDescription, func(f *domain.Fields, v string) { f.Tag = &v }),
			OnSkip: skipTo(domain.StepDescription, func(f *domain.Fields) { f.Tag = nil }),
		},
		{
			ID:     domain.StepDescription,
			Prompt: promptDescription,
			OnText: textField("description", domain.StepTrafficSelect, func(f *domain.Fields, v string) {
				f.Description = &v
				f.TrafficLimitBytes = nil
			}),
			OnSkip: skipTo(domain.StepTrafficSelect, func(f *domain.Fields) {
				f.Description = nil
				f.TrafficLimitBytes = nil
			}),
		},
		{
			ID:       domain.StepTrafficSelect,
			Scope:    domain.ScopeTraffic,
			Prompt:   promptTraffic,
			OnAction: trafficAction,
		},
		{
			ID:     domain.StepTrafficManualGB,
			Prompt: promptTrafficGB,
			OnText: trafficGBText,
			OnSkip: back(domain.StepTrafficSelect),
		},
		{
			ID:       domain.StepTrafficStrategy,
			Scope:    domain.ScopeStrategy,
			Prompt:   promptStrategy,
			OnAction: strategyAction,
			OnSkip: func(_ *Env, _ domain.Fields, _ domain.Action) Result {
				return enterInternalSquads(domain.DefaultStrategy)
			},
		},
		{
			ID:       domain.StepInternalSquads,
			Scope:    domain.ScopeInternal,
			Prompt:   promptInternalSquads,
			OnAction: internalSquadsAction,
		},
		{
			ID:       domain.StepExternalSquad,
			Scope:    domain.ScopeExternal,
			Prompt:   promptExternalSquad,
			OnAction: externalSquadAction,
			OnSkip: skipTo(domain.StepConfirm, func(f *domain.Fields) {
				f.ExternalSquadID = nil
			}),
		},
		{
			ID:     domain.StepConfirm,
			Scope:  domain.ScopeConfirm,
			Prompt: promptConfirm,
			OnAction: func(_ *Env, _ domain.Fields, a domain.Action) Result {
				if a.Kind != domain.ActionConfirm {
					return Ignore()
				}
				return Terminal()
			},
		},
	}
}

// back returns to a parent step leaving the accumulator unchanged.
func back(parent domain.StepID) Handler {
	return func(_ *Env, _ domain.Fields, _ domain.Action) Result {
		return Advance(parent, nil)
	}
}

func skipTo(next domain.StepID, patch func(*domain.Fields)) Handler {
	return func(_ *Env, _ domain.Fields, _ domain.Action) Result {
		return Advance(next, patch)
	}
}

func textField(field string, next domain.StepID, set func(*domain.Fields, string)) Handler {
	return func(_ *Env, _ domain.Fields, a domain.Action) Result {
		v, err := validator.Text(field, a.Text)
		if err != nil {
			return rejectWith(err)
		}
		return Advance(next, func(f *domain.Fields) { set(f, v) })
	}
}

func rejectWith(err error) Result {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return Reject("❌ " + verr.Reason)
	}
	return Reject("❌ " + err.Error())
}

// enterExpire is the shared exit of the username step.
func enterExpire(username, shortID string) Result {
	return Advance(domain.StepExpireSelect, func(f *domain.Fields) {
		f.Username = username
		f.ShortID = shortID
		f.ManualUsername = false
		f.ExpireMonths = 0
		f.ExpireDays = 0
		f.ExpireAt = nil
	}).WithNotice(fmt.Sprintf("✅ Username set: `%s`", username))
}

func usernameAction(env *Env, _ domain.Fields, a domain.Action) Result {
	switch a.Kind {
	case domain.ActionGenerate:
		return enterExpire(env.token(), env.token())
	case domain.ActionManual:
		return Advance(domain.StepUsername, func(f *domain.Fields) { f.ManualUsername = true })
	}
	return Ignore()
}

func usernameText(env *Env, f domain.Fields, a domain.Action) Result {
	if !f.ManualUsername {
		return Ignore()
	}
	name, err := validator.Username(a.Text)
	if err != nil {
		return rejectWith(err)
	}
	return enterExpire(name, env.token())
}

func expireAction(env *Env, f domain.Fields, a domain.Action) Result {
	switch a.Kind {
	case domain.ActionPreset:
		if !slices.Contains(expirePresets, a.N) {
			return Ignore()
		}
		return Advance(domain.StepExpireSelect, func(f *domain.Fields) {
			f.ExpireMonths = a.N
			f.ExpireDays = 0
		})
	case domain.ActionReset:
		return Advance(domain.StepExpireSelect, func(f *domain.Fields) {
			f.ExpireMonths = 0
			f.ExpireDays = 0
		})
	case domain.ActionManual:
		return Advance(domain.StepExpireManualDays, nil)
	case domain.ActionProceed:
		total := daysPerMonth*f.ExpireMonths + f.ExpireDays
		if total <= 0 {
			return Reject("❌ Choose a term first!")
		}
		at := env.now().Add(time.Duration(total) * 24 * time.Hour)
		return Advance(domain.StepEmail, func(f *domain.Fields) { f.ExpireAt = &at })
	}
	return Ignore()
}

func expireDaysText(_ *Env, _ domain.Fields, a domain.Action) Result {
	days, err := validator.ExpireDays(a.Text)
	if err != nil {
		return rejectWith(err)
	}
	return Advance(domain.StepExpireSelect, func(f *domain.Fields) {
		f.ExpireDays = days
		f.ExpireMonths = 0
	}).WithNotice(fmt.Sprintf("✅ Term set: %d days", days))
}

func telegramIDText(_ *Env, _ domain.Fields, a domain.Action) Result {
	id, err := validator.TelegramID(a.Text)
	if err != nil {
		return rejectWith(err)
	}
	return Advance(domain.StepHWIDLimit, func(f *domain.Fields) { f.TelegramID = &id })
}

func hwidText(_ *Env, _ domain.Fields, a domain.Action) Result {
	n, err := validator.HWIDLimit(a.Text)
	if err != nil {
		return rejectWith(err)
	}
	return Advance(domain.StepTag, func(f *domain.Fields) { f.HWIDDeviceLimit = &n })
}

func trafficAction(_ *Env, f domain.Fields, a domain.Action) Result {
	switch a.Kind {
	case domain.ActionPreset:
		if !slices.Contains(trafficPresets, a.N) {
			return Ignore()
		}
		b := int64(a.N) * validator.GiB
		return Advance(domain.StepTrafficSelect, func(f *domain.Fields) { f.TrafficLimitBytes = &b })
	case domain.ActionUnlimited:
		return Advance(domain.StepTrafficSelect, func(f *domain.Fields) { f.TrafficLimitBytes = domain.Ptr[int64](0) })
	case domain.ActionReset:
		return Advance(domain.StepTrafficSelect, func(f *domain.Fields) { f.TrafficLimitBytes = nil })
	case domain.ActionManual:
		return Advance(domain.StepTrafficManualGB, nil)
	case domain.ActionProceed:
		if f.TrafficLimitBytes == nil {
			return Reject("❌ Choose traffic first!")
		}
		return Advance(domain.StepTrafficStrategy, nil)
	}
	return Ignore()
}

func trafficGBText(_ *Env, _ domain.Fields, a domain.Action) Result {
	b, err := validator.TrafficGB(a.Text)
	if err != nil {
		return rejectWith(err)
	}
	return Advance(domain.StepTrafficSelect, func(f *domain.Fields) {
		f.TrafficLimitBytes = &b
	}).WithNotice(fmt.Sprintf("✅ Traffic set: %d GB", b/validator.GiB))
}

// enterInternalSquads records the strategy and starts the squad selection empty.
func enterInternalSquads(s domain.TrafficStrategy) Result {
	return Advance(domain.StepInternalSquads, func(f *domain.Fields) {
		f.TrafficLimitStrategy = s
		f.SelectedInternalSquads = nil
		f.ActiveInternalSquads = nil
	})
}

func strategyAction(_ *Env, _ domain.Fields, a domain.Action) Result {
	if a.Kind != domain.ActionStrategy {
		return Ignore()
	}
	s, ok := domain.ParseStrategy(a.Arg)
	if !ok {
		return Reject("❌ Invalid strategy!")
	}
	return enterInternalSquads(s)
}

func internalSquadsAction(env *Env, f domain.Fields, a domain.Action) Result {
	switch a.Kind {
	case domain.ActionToggle:
		if _, ok := env.Catalog.InternalSquad(a.Arg); !ok {
			return Ignore()
		}
		return Advance(domain.StepInternalSquads, func(f *domain.Fields) { f.Toggle(a.Arg) })
	case domain.ActionReset:
		return Advance(domain.StepInternalSquads, func(f *domain.Fields) { f.SelectedInternalSquads = nil })
	case domain.ActionProceed:
		ids := env.Catalog.ResolveInternal(f.SelectedInternalSquads)
		return Advance(domain.StepExternalSquad, func(f *domain.Fields) { f.ActiveInternalSquads = ids })
	}
	return Ignore()
}

func externalSquadAction(env *Env, _ domain.Fields, a domain.Action) Result {
	if a.Kind != domain.ActionChoose {
		return Ignore()
	}
	sq, ok := env.Catalog.ExternalSquad(a.Arg)
	if !ok {
		return Ignore()
	}
	id := sq.ID
	return Advance(domain.StepConfirm, func(f *domain.Fields) { f.ExternalSquadID = &id })
}
