package types

// PullRequest holds the details of the pull request associated with the
// commit under check, when one exists.
type PullRequest struct {
	Number  int
	State   PullRequestState
	BaseRef string
	Labels  []string
}

func (p PullRequest) HasLabel(name string) bool {
	for _, label := range p.Labels {
		if label == name {
			return true
		}
	}
	return false
}
