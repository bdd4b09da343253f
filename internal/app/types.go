package app

import "schema-check/internal/types"

type CheckRequest struct {
	Token          string
	Name           string
	SchemaPointer  string
	MergeEnabled   bool
	FailOnBreaking bool
	ApproveLabel   string
	Rules          []string
	UsageHook      string
	CommitSHA      string
	Workspace      string
	Repository     string
	Endpoint       string
	OutputPath     string
}

type CheckResult struct {
	Conclusion types.Conclusion
	Changes    int
	Summary    string
}
