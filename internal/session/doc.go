// Package session holds the signed-in session slot, the auth-state listener
// registry and the notifier that delivers SIGNED_IN / SIGNED_OUT events to
// listeners after a fixed delay.
//
// A backend strategy owns one State and one Notifier. Nothing here is
// package-level, so several backends can coexist in one process (tests do).
package session
