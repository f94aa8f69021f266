// Package telegram connects the wizard to a Telegram bot via long polling.
//
// Button presses edit the wizard message in place; rejections and denials
// surface as callback alerts. Free text gets a fresh message, since the
// operator's own message sits between the bot's last prompt and the next one.
package telegram
