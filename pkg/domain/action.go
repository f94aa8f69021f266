package domain

import (
	"strconv"
	"strings"
)

// ActionKind is the tag of an Action.
type ActionKind string

const (
	ActionUnknown   ActionKind = "unknown"
	ActionHome      ActionKind = "home"   // "/start": clear and show the main menu
	ActionBegin     ActionKind = "begin"  // start a fresh wizard
	ActionCancel    ActionKind = "cancel" // global, valid from any step
	ActionSkip      ActionKind = "skip"
	ActionGenerate  ActionKind = "generate"
	ActionManual    ActionKind = "manual"
	ActionPreset    ActionKind = "preset"
	ActionUnlimited ActionKind = "unlimited"
	ActionReset     ActionKind = "reset"
	ActionProceed   ActionKind = "proceed"
	ActionStrategy  ActionKind = "strategy"
	ActionToggle    ActionKind = "toggle"
	ActionChoose    ActionKind = "choose"
	ActionConfirm   ActionKind = "confirm"
	ActionText      ActionKind = "text"
)

// Callback scopes. A scoped action is only meaningful in the step owning the scope.
const (
	ScopeUsername = "username"
	ScopeExpire   = "exp"
	ScopeTraffic  = "tr"
	ScopeStrategy = "str"
	ScopeInternal = "int"
	ScopeExternal = "ext"
	ScopeConfirm  = "confirm"
)

// Wire tokens for the global actions.
const (
	TokenHome    = "/start"
	TokenBegin   = "start_create"
	TokenCancel  = "cancel"
	TokenSkip    = "skip"
	TokenConfirm = "confirm_create"
)

// Action is a single operator event, interpreted relative to the current step.
type Action struct {
	Kind ActionKind
	// Scope is the callback namespace ("exp", "tr", ...). Empty for global actions.
	Scope string
	// Arg carries the preset amount, strategy name or squad key.
	Arg string
	// N is Arg parsed as an integer for presets.
	N int
	// Text is the raw free-text input for ActionText.
	Text string
}

// TextAction wraps free-text input.
func TextAction(text string) Action {
	return Action{Kind: ActionText, Text: text}
}

// ParseAction decodes a callback token. Unrecognized tokens yield ActionUnknown.
func ParseAction(token string) Action {
	token = strings.TrimSpace(token)
	switch token {
	case TokenHome:
		return Action{Kind: ActionHome}
	case TokenBegin:
		return Action{Kind: ActionBegin}
	case TokenCancel:
		return Action{Kind: ActionCancel}
	case TokenSkip:
		return Action{Kind: ActionSkip}
	case TokenConfirm:
		return Action{Kind: ActionConfirm, Scope: ScopeConfirm}
	case "username_generate":
		return Action{Kind: ActionGenerate, Scope: ScopeUsername}
	case "username_manual":
		return Action{Kind: ActionManual, Scope: ScopeUsername}
	}

	scope, arg, ok := strings.Cut(token, "_")
	if !ok || arg == "" {
		return Action{Kind: ActionUnknown, Arg: token}
	}

	switch scope {
	case ScopeExpire, ScopeTraffic:
		switch arg {
		case "manual":
			return Action{Kind: ActionManual, Scope: scope}
		case "reset":
			return Action{Kind: ActionReset, Scope: scope}
		case "next":
			return Action{Kind: ActionProceed, Scope: scope}
		case "unlim":
			if scope == ScopeTraffic {
				return Action{Kind: ActionUnlimited, Scope: scope}
			}
		default:
			if n, err := strconv.Atoi(arg); err == nil && n > 0 {
				return Action{Kind: ActionPreset, Scope: scope, Arg: arg, N: n}
			}
		}
	case ScopeStrategy:
		if arg == "skip" {
			return Action{Kind: ActionSkip, Scope: scope}
		}
		return Action{Kind: ActionStrategy, Scope: scope, Arg: arg}
	case ScopeInternal:
		switch arg {
		case "reset":
			return Action{Kind: ActionReset, Scope: scope}
		case "next":
			return Action{Kind: ActionProceed, Scope: scope}
		}
		return Action{Kind: ActionToggle, Scope: scope, Arg: arg}
	case ScopeExternal:
		if arg == "skip" {
			return Action{Kind: ActionSkip, Scope: scope}
		}
		return Action{Kind: ActionChoose, Scope: scope, Arg: arg}
	}

	return Action{Kind: ActionUnknown, Arg: token}
}

// Global reports whether the action is valid regardless of the current step.
func (a Action) Global() bool {
	switch a.Kind {
	case ActionHome, ActionBegin, ActionCancel:
		return true
	}
	return false
}
