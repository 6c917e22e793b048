package constants

// CLIName is the name used in user-facing output to refer to the command line tool
const CLIName = "swaggitor"

// DiagnosticSource is the fixed source tag attached to every published diagnostic
const DiagnosticSource = "Swaggitor"

// ConfigurationSection is the settings section the editor pushes on configuration change
const ConfigurationSection = "swaggitor"

// VersionMarker is the top-level key that identifies a Swagger document
const VersionMarker = "swagger"

// InfoKey is the top-level key holding the API metadata object
const InfoKey = "info"

// ValidatedMethod is the custom notification sent to the editor after each validation pass
const ValidatedMethod = "validated"

// SupportedExtensions lists the file extensions considered by the file based commands
var SupportedExtensions = []string{".json", ".yaml", ".yml"}
