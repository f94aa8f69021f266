package runtime

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/remnawizard/internal/validator"
	"github.com/aretw0/remnawizard/pkg/domain"
)

const notSet = "NOT SET"

var (
	choiceCancel = domain.Choice{Token: domain.TokenCancel, Label: "❌ Cancel"}
	choiceSkip   = domain.Choice{Token: domain.TokenSkip, Label: "⏭ Skip"}
	choiceBegin  = domain.Choice{Token: domain.TokenBegin, Label: "👤 Create user"}
)

// mainMenu is shown whenever no wizard is in progress.
func mainMenu(text string) domain.Prompt {
	return domain.Prompt{
		Text:    text,
		Actions: []domain.Choice{choiceBegin},
		Layout:  []int{1},
	}
}

// HomePrompt is the answer to the home command.
func HomePrompt() domain.Prompt {
	return mainMenu("⚡ Remnawave Admin Bot")
}

// IdlePrompt is the answer to cancel. It does not depend on the step cancelled from.
func IdlePrompt() domain.Prompt {
	return mainMenu("❌ Cancelled.")
}

// OutcomePrompt reports the result of a submission and offers a new wizard.
func OutcomePrompt(o domain.Outcome) domain.Prompt {
	if o.OK() {
		r := o.Record
		return mainMenu(fmt.Sprintf(
			"✅ User created!\n\n👤 Username: %s\n🆔 UUID: %s\n🔗 Subscription:\n%s\n\n⏳ Expire: %s",
			r.Username, r.UUID, r.SubscriptionURL, formatTime(&r.ExpireAt),
		))
	}

	var apiErr *domain.APIError
	if errors.As(o.Err, &apiErr) {
		return mainMenu(fmt.Sprintf("❌ API Error:\n\nCode: %s\nMessage: %s", apiErr.Code, apiErr.Message))
	}
	msg := "unknown failure"
	if o.Err != nil {
		msg = o.Err.Error()
	}
	return mainMenu("❌ Error:\n\n" + msg)
}

func inputPrompt(text string) domain.Prompt {
	return domain.Prompt{
		Text:    text,
		Actions: []domain.Choice{choiceSkip, choiceCancel},
		Layout:  []int{2},
		Input:   true,
	}
}

func promptUsername(_ *Env, f domain.Fields) domain.Prompt {
	if f.ManualUsername {
		return domain.Prompt{
			Text:    fmt.Sprintf("✍️ Enter a username (%d-%d characters: letters, digits, _):", validator.UsernameMinLen, validator.UsernameMaxLen),
			Actions: []domain.Choice{choiceCancel},
			Input:   true,
		}
	}
	return domain.Prompt{
		Text: "Choose a username:",
		Actions: []domain.Choice{
			{Token: "username_generate", Label: "🎲 Generate"},
			{Token: "username_manual", Label: "✍️ Enter manually"},
			choiceCancel,
		},
		Layout: []int{2, 1},
	}
}

func promptExpire(_ *Env, f domain.Fields) domain.Prompt {
	return domain.Prompt{
		Text: fmt.Sprintf("⏳ Selected term: *%s*\n\nPick as often as you like, then press ➡️ Continue.", formatTerm(f)),
		Actions: []domain.Choice{
			{Token: "exp_1", Label: "+1 month"},
			{Token: "exp_3", Label: "+3 months"},
			{Token: "exp_6", Label: "+6 months"},
			{Token: "exp_12", Label: "+12 months"},
			{Token: "exp_manual", Label: "✍️ Enter days manually"},
			{Token: "exp_reset", Label: "❌ Reset"},
			{Token: "exp_next", Label: "➡️ Continue"},
			choiceCancel,
		},
		Layout: []int{2, 2, 1, 2, 1},
	}
}

func promptExpireDays(_ *Env, _ domain.Fields) domain.Prompt {
	return inputPrompt("✍️ Enter the term in days (e.g. 45):")
}

func promptEmail(_ *Env, _ domain.Fields) domain.Prompt {
	return inputPrompt("📧 Enter an email (or skip):")
}

func promptTelegramID(_ *Env, _ domain.Fields) domain.Prompt {
	return inputPrompt("📱 Enter a Telegram ID (or skip):")
}

func promptHWID(_ *Env, _ domain.Fields) domain.Prompt {
	return inputPrompt(fmt.Sprintf("📲 Enter the HWID limit (default %d) or skip:", domain.DefaultHWIDDeviceLimit))
}

func promptTag(_ *Env, _ domain.Fields) domain.Prompt {
	return inputPrompt("📌 Enter a TAG (or skip):")
}

func promptDescription(_ *Env, _ domain.Fields) domain.Prompt {
	return inputPrompt("📝 Enter a description (or skip):")
}

func promptTraffic(_ *Env, f domain.Fields) domain.Prompt {
	return domain.Prompt{
		Text: fmt.Sprintf("📦 Traffic limit: *%s*\n\nChange it as often as you like, then press ➡️ Continue.", formatTraffic(f.TrafficLimitBytes)),
		Actions: []domain.Choice{
			{Token: "tr_50", Label: "50 GB"},
			{Token: "tr_100", Label: "100 GB"},
			{Token: "tr_200", Label: "200 GB"},
			{Token: "tr_500", Label: "500 GB"},
			{Token: "tr_unlim", Label: "♾ Unlimited"},
			{Token: "tr_manual", Label: "✍️ Enter GB manually"},
			{Token: "tr_reset", Label: "❌ Reset"},
			{Token: "tr_next", Label: "➡️ Continue"},
			choiceCancel,
		},
		Layout: []int{2, 2, 2, 3},
	}
}

func promptTrafficGB(_ *Env, _ domain.Fields) domain.Prompt {
	return inputPrompt("✍️ Enter the traffic limit in GB (e.g. 37).\nFor unlimited, skip back and press ♾ Unlimited.")
}

func promptStrategy(_ *Env, _ domain.Fields) domain.Prompt {
	return domain.Prompt{
		Text: "🔄 Choose the traffic reset strategy (or skip):",
		Actions: []domain.Choice{
			{Token: "str_NO_RESET", Label: "NO_RESET"},
			{Token: "str_MONTHLY", Label: "MONTHLY (default)"},
			{Token: "str_WEEKLY", Label: "WEEKLY"},
			{Token: "str_DAILY", Label: "DAILY"},
			{Token: "str_skip", Label: "⏭ Skip (MONTHLY)"},
			choiceCancel,
		},
		Layout: []int{2, 2, 1, 1},
	}
}

func promptInternalSquads(env *Env, f domain.Fields) domain.Prompt {
	squads := env.Catalog.Internal
	actions := make([]domain.Choice, 0, len(squads)+3)
	layout := make([]int, 0, len(squads)+1)
	for _, sq := range squads {
		mark := "⬜"
		if f.Selected(sq.Key) {
			mark = "✅"
		}
		actions = append(actions, domain.Choice{Token: "int_" + sq.Key, Label: mark + " " + sq.Name})
		layout = append(layout, 1)
	}
	actions = append(actions,
		domain.Choice{Token: "int_reset", Label: "❌ Reset"},
		domain.Choice{Token: "int_next", Label: "➡️ Continue"},
		choiceCancel,
	)
	layout = append(layout, 3)
	return domain.Prompt{
		Text:    "👥 Choose internal squads (several allowed):",
		Actions: actions,
		Layout:  layout,
	}
}

func promptExternalSquad(env *Env, _ domain.Fields) domain.Prompt {
	squads := env.Catalog.External
	actions := make([]domain.Choice, 0, len(squads)+2)
	for _, sq := range squads {
		actions = append(actions, domain.Choice{Token: "ext_" + sq.Key, Label: sq.Name})
	}
	actions = append(actions,
		domain.Choice{Token: "ext_skip", Label: "⏭ Skip (none)"},
		choiceCancel,
	)
	return domain.Prompt{
		Text:    "🌍 Choose an external squad (or skip):",
		Actions: actions,
	}
}

func promptConfirm(_ *Env, f domain.Fields) domain.Prompt {
	return domain.Prompt{
		Text: Summary(f),
		Actions: []domain.Choice{
			{Token: domain.TokenConfirm, Label: "✅ Create"},
			choiceCancel,
		},
		Layout: []int{2},
	}
}

// Summary renders the whole accumulator for review before submission.
func Summary(f domain.Fields) string {
	var b strings.Builder
	b.WriteString("📋 Review the data:\n\n")
	fmt.Fprintf(&b, "👤 Username: %s\n", f.Username)
	fmt.Fprintf(&b, "🔗 Short UUID: %s\n", f.ShortID)
	fmt.Fprintf(&b, "⏳ Expire: %s\n\n", formatTime(f.ExpireAt))
	fmt.Fprintf(&b, "📧 Email: %s\n", orDash(f.Email))
	fmt.Fprintf(&b, "📱 Telegram ID: %s\n", formatOptionalInt(f.TelegramID))
	fmt.Fprintf(&b, "📌 Tag: %s\n", orDash(f.Tag))
	fmt.Fprintf(&b, "📝 Description: %s\n\n", orDash(f.Description))
	hwid := "-"
	if f.HWIDDeviceLimit != nil {
		hwid = strconv.Itoa(*f.HWIDDeviceLimit)
	}
	fmt.Fprintf(&b, "📲 HWID limit: %s\n", hwid)
	fmt.Fprintf(&b, "📦 Traffic: %s\n", formatTraffic(f.TrafficLimitBytes))
	strategy := string(f.TrafficLimitStrategy)
	if strategy == "" {
		strategy = "-"
	}
	fmt.Fprintf(&b, "🔄 Strategy: %s\n\n", strategy)
	fmt.Fprintf(&b, "👥 Internal squads: %d\n", len(f.ActiveInternalSquads))
	fmt.Fprintf(&b, "🌍 External squad: %s\n", orDash(f.ExternalSquadID))
	return b.String()
}

func formatTerm(f domain.Fields) string {
	switch {
	case f.ExpireMonths == 1:
		return "1 month"
	case f.ExpireMonths > 0:
		return fmt.Sprintf("%d months", f.ExpireMonths)
	case f.ExpireDays == 1:
		return "1 day"
	case f.ExpireDays > 0:
		return fmt.Sprintf("%d days", f.ExpireDays)
	}
	return notSet
}

func formatTraffic(b *int64) string {
	switch {
	case b == nil:
		return notSet
	case *b == 0:
		return "♾ Unlimited"
	}
	return fmt.Sprintf("%d GB", (*b+validator.GiB/2)/validator.GiB)
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return notSet
	}
	return t.UTC().Format("2006-01-02 15:04:05 UTC")
}

func formatOptionalInt(v *int64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatInt(*v, 10)
}

func orDash(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
