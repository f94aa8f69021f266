/*
Package domain contains the core models of the provisioning wizard.

It defines the fixed step set, the actions an operator can send, the session
accumulator and the prompt descriptors returned to transports. The package is
kept pure and free of I/O: persistence, transport and the provisioning API are
described by the interfaces in package ports.

# Key Entities

  - StepID: one stage of the wizard (username, expire_select, ..., confirm).
  - Action: a button press or free-text submission, parsed from a wire token.
  - Session: the per-user snapshot (current step plus accumulated Fields).
  - Prompt: what the transport should render next (text, actions, error).
  - Catalog: the immutable squad catalogs offered by the squad steps.
*/
package domain
