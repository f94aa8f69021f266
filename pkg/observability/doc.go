/*
Package observability turns wizard lifecycle hooks into metrics and logs.

Metrics registers Prometheus collectors on its own registry and exposes them
as domain.LifecycleHooks; Combine fans a single hook set out to several
consumers so metrics and audit logging can run side by side.
*/
package observability
