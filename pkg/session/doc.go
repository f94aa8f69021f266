/*
Package session serializes access to wizard sessions.

Every transition reads the whole session, computes the next one and writes it
back, so two actions of the same operator must never interleave. The Manager
hands out a per-user critical section (a reference counted local mutex, plus an
optional distributed lock for multi-replica deployments) and delegates the data
itself to a ports.SessionStore.
*/
package session
