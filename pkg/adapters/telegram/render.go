package telegram

import (
	"github.com/go-telegram/bot/models"

	"github.com/aretw0/remnawizard/pkg/domain"
)

// Keyboard lays out the prompt's actions as inline buttons.
func Keyboard(p domain.Prompt) *models.InlineKeyboardMarkup {
	rows := p.Rows()
	kb := make([][]models.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]models.InlineKeyboardButton, 0, len(row))
		for _, c := range row {
			buttons = append(buttons, models.InlineKeyboardButton{Text: c.Label, CallbackData: c.Token})
		}
		kb = append(kb, buttons)
	}
	return &models.InlineKeyboardMarkup{InlineKeyboard: kb}
}

// Text is the message body for p, error first when present.
func Text(p domain.Prompt) string {
	if p.Error == "" {
		return p.Text
	}
	return p.Error + "\n\n" + p.Text
}

// Envelope converts an update into a wizard envelope. ok is false for
// updates the wizard does not consume.
func Envelope(u *models.Update) (env domain.Envelope, ok bool) {
	switch {
	case u.CallbackQuery != nil:
		return domain.Envelope{
			UserID: domain.UserID(u.CallbackQuery.From.ID),
			Token:  u.CallbackQuery.Data,
		}, true
	case u.Message != nil && u.Message.From != nil && u.Message.Text != "":
		return domain.Envelope{
			UserID: domain.UserID(u.Message.From.ID),
			Text:   u.Message.Text,
		}, true
	}
	return domain.Envelope{}, false
}
