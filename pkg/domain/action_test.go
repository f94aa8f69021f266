package domain_test

import (
	"testing"

	"github.com/aretw0/remnawizard/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestParseAction(t *testing.T) {
	tests := []struct {
		token string
		want  domain.Action
	}{
		{"start_create", domain.Action{Kind: domain.ActionBegin}},
		{"cancel", domain.Action{Kind: domain.ActionCancel}},
		{"skip", domain.Action{Kind: domain.ActionSkip}},
		{"username_generate", domain.Action{Kind: domain.ActionGenerate, Scope: "username"}},
		{"username_manual", domain.Action{Kind: domain.ActionManual, Scope: "username"}},
		{"exp_3", domain.Action{Kind: domain.ActionPreset, Scope: "exp", Arg: "3", N: 3}},
		{"exp_manual", domain.Action{Kind: domain.ActionManual, Scope: "exp"}},
		{"exp_next", domain.Action{Kind: domain.ActionProceed, Scope: "exp"}},
		{"tr_500", domain.Action{Kind: domain.ActionPreset, Scope: "tr", Arg: "500", N: 500}},
		{"tr_unlim", domain.Action{Kind: domain.ActionUnlimited, Scope: "tr"}},
		{"tr_reset", domain.Action{Kind: domain.ActionReset, Scope: "tr"}},
		{"str_NO_RESET", domain.Action{Kind: domain.ActionStrategy, Scope: "str", Arg: "NO_RESET"}},
		{"str_skip", domain.Action{Kind: domain.ActionSkip, Scope: "str"}},
		{"int_promo1", domain.Action{Kind: domain.ActionToggle, Scope: "int", Arg: "promo1"}},
		{"int_reset", domain.Action{Kind: domain.ActionReset, Scope: "int"}},
		{"int_next", domain.Action{Kind: domain.ActionProceed, Scope: "int"}},
		{"ext_both", domain.Action{Kind: domain.ActionChoose, Scope: "ext", Arg: "both"}},
		{"ext_skip", domain.Action{Kind: domain.ActionSkip, Scope: "ext"}},
		{"confirm_create", domain.Action{Kind: domain.ActionConfirm, Scope: "confirm"}},
		{"exp_unlim", domain.Action{Kind: domain.ActionUnknown, Arg: "exp_unlim"}},
		{"exp_0", domain.Action{Kind: domain.ActionUnknown, Arg: "exp_0"}},
		{"garbage", domain.Action{Kind: domain.ActionUnknown, Arg: "garbage"}},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.ParseAction(tt.token))
		})
	}
}

func TestEnvelope_Action(t *testing.T) {
	assert.Equal(t, domain.ActionHome, domain.Envelope{Text: "/start"}.Action().Kind)
	assert.Equal(t, domain.ActionCancel, domain.Envelope{Text: " /cancel "}.Action().Kind)
	assert.Equal(t, domain.TextAction("hello"), domain.Envelope{Text: "hello"}.Action())
	assert.Equal(t, domain.ActionBegin, domain.Envelope{Token: "start_create", Text: "ignored"}.Action().Kind)
}

func TestPrompt_Rows(t *testing.T) {
	p := domain.Prompt{
		Actions: []domain.Choice{{Token: "a"}, {Token: "b"}, {Token: "c"}, {Token: "d"}, {Token: "e"}},
		Layout:  []int{2, 2},
	}
	rows := p.Rows()
	assert.Len(t, rows, 3)
	assert.Len(t, rows[0], 2)
	assert.Len(t, rows[1], 2)
	assert.Equal(t, "e", rows[2][0].Token)

	p.Layout = nil
	assert.Len(t, p.Rows(), 5)
}
