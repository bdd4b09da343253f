package types

type Severity string

const (
	SeverityBreaking  Severity = "breaking"
	SeverityDangerous Severity = "dangerous"
	SeveritySafe      Severity = "safe"
)

type Conclusion string

const (
	ConclusionSuccess Conclusion = "success"
	ConclusionFailure Conclusion = "failure"
)

type PullRequestState string

const (
	PullRequestStateOpen   PullRequestState = "open"
	PullRequestStateClosed PullRequestState = "closed"
)
