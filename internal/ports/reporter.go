package ports

// ReporterPort surfaces run progress and results to the CI platform.
type ReporterPort interface {
	Notice(message string)
	Error(message string)
	SetOutput(name string, value string) error
}
