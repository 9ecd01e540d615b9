// Package session tracks per-conversation command availability and the last
// executed command. It is intentionally free of transport concerns so the
// dispatcher and handlers can share it.
package session
