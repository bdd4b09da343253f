package ports

import (
	"context"

	"schema-check/internal/core"
)

// UsagePort loads the optional usage-check hook.
type UsagePort interface {
	Load(ctx context.Context, path string) (*core.UsageList, error)
}
