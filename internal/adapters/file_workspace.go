package adapters

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

// WorkspaceFileAdapter reads schema files from the checked-out workspace
// directory.
type WorkspaceFileAdapter struct {
	Root string
}

func NewWorkspaceFileAdapter(root string) WorkspaceFileAdapter {
	return WorkspaceFileAdapter{Root: root}
}

func (a WorkspaceFileAdapter) Load(_ context.Context, path string) (string, error) {
	data, err := os.ReadFile(filepath.Join(a.Root, path))
	if err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("schema file %s not found in workspace", path)).
			WithCause(err)
	}
	return string(data), nil
}
