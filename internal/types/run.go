package types

// RunMode describes how the process was started
type RunMode string

const (
	RunModeAPI   RunMode = "api"
	RunModeLocal RunMode = "local"
)

// LogLevel controls logger verbosity
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)
