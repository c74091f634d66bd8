// Package logx is a thin zerolog wrapper with slog-like field ergonomics.
//
// The zero Logger value is a safe no-op, so components can hold a Logger
// without nil checks.
package logx
