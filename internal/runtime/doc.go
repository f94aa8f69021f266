// Package runtime implements the wizard state machine.
//
// The Registry holds one Step per domain.StepID: its callback scope, prompt
// builder and the handlers for buttons, free text and skip. Handlers are pure
// and return a Result; the Engine loads the session, dispatches the action,
// applies the Result and persists the outcome under the user's lock.
package runtime
