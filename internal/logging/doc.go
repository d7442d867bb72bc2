// Package logging configures structured slog output for conductorboot.
//
// Without --debug, JSON logs go to stderr at the configured level. With
// --debug, logs are also written to ~/.conductor/logs/conductorboot.log
// through a size-rotating writer.
package logging
