package types

// SchemaPointer identifies a schema file at a version-control revision,
// parsed from a "ref:path" string.
type SchemaPointer struct {
	Ref  string
	Path string
}

// Change is a single detected schema difference. Path is the schema
// coordinate the change applies to, e.g. "Query.user" or "Role.ADMIN".
type Change struct {
	Code       string
	Message    string
	Path       string
	Severity   Severity
	Deprecated bool
}

// DiffResult is the diff engine's verdict: the raw conclusion before any
// policy override, plus the ordered list of detected changes.
type DiffResult struct {
	Conclusion Conclusion
	Changes    []Change
}
