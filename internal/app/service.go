package app

import (
	"schema-check/internal/adapters"
	"schema-check/internal/core"
	"schema-check/internal/ports"
)

type Service struct {
	RemoteFiles    ports.RemoteFilePort
	WorkspaceFiles ports.WorkspaceFilePort
	PullRequests   ports.PullRequestPort
	Diff           ports.DiffPort
	Usage          ports.UsagePort
	Reporter       ports.ReporterPort
	Builder        core.SchemaBuilder
}

func NewService(req CheckRequest) Service {
	return Service{
		RemoteFiles:    adapters.NewGitHubFileAdapter(req.Endpoint, req.Repository, req.Token),
		WorkspaceFiles: adapters.NewWorkspaceFileAdapter(req.Workspace),
		PullRequests:   adapters.NewGitHubPullRequestAdapter(req.Endpoint, req.Repository, req.Token),
		Diff:           adapters.NewDiffEngineAdapter(),
		Usage:          adapters.NewUsageFileAdapter(),
		Reporter:       adapters.NewActionsReporterAdapter(req.OutputPath),
		Builder:        core.NewSchemaBuilder(),
	}
}
