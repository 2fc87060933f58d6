package utils

// EmptyString represents a reusable empty string constant.
const EmptyString = ""

// ErrorLogFormat defines the formatting string for error log messages.
const ErrorLogFormat = "Error: %v"

// LoggerInitializationFailedMessageFormat reports a failure to construct the logger.
const LoggerInitializationFailedMessageFormat = "failed to initialize logger: %w"

// ApplicationExecutionFailedMessage prefixes the fatal error printed on exit.
const ApplicationExecutionFailedMessage = "vcoctl failed"

// StandardErrorPath is the zap sink name for stderr.
const StandardErrorPath = "stderr"

// Configuration and session locations.
const (
	// ApplicationName is used for directory and environment names.
	ApplicationName = "vcoctl"
	// GlobalConfigDirectoryName is the directory under the user's home holding the global configuration.
	GlobalConfigDirectoryName = ".vcoctl"
	// ConfigFileName is the global configuration file name.
	ConfigFileName = "config.yaml"
	// LocalConfigFileName is the configuration file looked up in the working directory.
	LocalConfigFileName = ".vcoctl.yaml"
	// EnvironmentPrefix prefixes every environment variable read by vcoctl.
	EnvironmentPrefix = "VCOCTL"
	// SessionDirectoryName is the directory under the XDG config home that stores session files.
	SessionDirectoryName = "sessions"
)
