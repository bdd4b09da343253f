package core

import (
	"os"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"
)

// UsageList is the optional usage-check hook: a set of schema coordinates
// known to be requested by consumers. The file is a YAML sequence of
// coordinate strings ("Query.user", "Query.user.id", "Role").
type UsageList struct {
	coordinates map[string]struct{}
}

func LoadUsageList(path string) (*UsageList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("usage list not found").
			WithCause(err)
	}
	var entries []string
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse usage list yaml").
			WithCause(err)
	}
	coordinates := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry != "" {
			coordinates[entry] = struct{}{}
		}
	}
	return &UsageList{coordinates: coordinates}, nil
}

// InUse reports whether a coordinate, or any of its ancestors, is listed.
// Listing "Query.user" covers "Query.user.id".
func (u *UsageList) InUse(coordinate string) bool {
	parts := strings.Split(coordinate, ".")
	for i := range parts {
		prefix := strings.Join(parts[:i+1], ".")
		if _, ok := u.coordinates[prefix]; ok {
			return true
		}
	}
	return false
}
