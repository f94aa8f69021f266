/*
Package remnawizard is a guided "create user" wizard for Remnawave panel administrators.

It implements a step state machine that collects a provisioning request one
button press or one text message at a time, with per-step validation, skip
defaults and a global cancel, and submits the finished request exactly once.

# Concept

Every inbound action is an Envelope carrying the user id and either a button
token or free text. The current step always comes from the session store, never
from the transport, so stale buttons are ignored rather than replayed. The
wizard answers with a Reply holding the next Prompt (text, buttons and their
layout) that a transport renders however it likes.

# Usage

	wiz, err := remnawizard.New(
		remnawave.NewClient(baseURL, token),
		remnawizard.WithAdmins(access.NewAllowList(42)),
	)
	if err != nil {
		log.Fatal(err)
	}

	reply, err := wiz.Handle(ctx, domain.Envelope{UserID: 42, Token: "start_create"})

Transports for Telegram, HTTP and an interactive console live under pkg/adapters
and internal/console; cmd/remnawizard wires them from the environment.
*/
package remnawizard
