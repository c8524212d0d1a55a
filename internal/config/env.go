package config

import "os"

// Environment variables read by FromEnv.
const (
	EnvLogLevel = "SEGMENTER_LOG_LEVEL"
	EnvDiagDir  = "SEGMENTER_DIAG_DIR"
)

// Env holds settings taken from the environment.
type Env struct {
	// LogLevel is a zerolog level name; empty means info.
	LogLevel string

	// DiagDir enables diagnostic images when non-empty.
	DiagDir string
}

// FromEnv reads Env from the process environment.
func FromEnv() Env {
	return Env{
		LogLevel: os.Getenv(EnvLogLevel),
		DiagDir:  os.Getenv(EnvDiagDir),
	}
}
