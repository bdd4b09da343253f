package ports

import "context"

// RemoteFilePort fetches a file's contents at a version-control ref.
type RemoteFilePort interface {
	Load(ctx context.Context, ref string, path string) (string, error)
}

// WorkspaceFilePort reads a file from the checked-out workspace.
type WorkspaceFilePort interface {
	Load(ctx context.Context, path string) (string, error)
}
