package adapters

import (
	"context"

	"schema-check/internal/core"
)

type UsageFileAdapter struct{}

func NewUsageFileAdapter() UsageFileAdapter {
	return UsageFileAdapter{}
}

func (UsageFileAdapter) Load(_ context.Context, path string) (*core.UsageList, error) {
	return core.LoadUsageList(path)
}
