/*
Package ports defines the driven ports (interfaces) of the wizard.

These interfaces decouple the core from external implementations, allowing the
engine to work with various session backends and provisioning services.

# Key Interfaces

  - SessionStore: persists and loads per-user wizard sessions.
  - DistributedLocker: serializes access to a user's session across replicas.
  - Provisioner: the external service that creates the provisioned user.
*/
package ports
