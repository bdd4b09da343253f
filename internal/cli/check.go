package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"schema-check/internal/app"
	"schema-check/internal/shared"
)

const defaultDisplayName = "GraphQL Inspector"
const defaultApproveLabel = "approved-breaking-change"

type checkOptions struct {
	Token          string
	Name           string
	Schema         string
	MergeEnabled   bool
	FailOnBreaking bool
	ApproveLabel   string
	Rules          string
	UsageHook      string
	Endpoint       string
}

func newCheckCommand() *cobra.Command {
	opts := checkOptions{}
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Compare two schema revisions and report a verdict",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Token, "github-token", "", "GitHub API token")
	cmd.Flags().StringVar(&opts.Name, "name", defaultDisplayName, "Display label used in notices")
	cmd.Flags().StringVar(&opts.Schema, "schema", "", "Schema pointer, ref:path")
	cmd.Flags().BoolVar(&opts.MergeEnabled, "experimental-merge", true, "Compare against the pull request merge state")
	cmd.Flags().BoolVar(&opts.FailOnBreaking, "fail-on-breaking", false, "Fail the run on breaking changes")
	cmd.Flags().StringVar(&opts.ApproveLabel, "approve-label", defaultApproveLabel, "Label that approves breaking changes")
	cmd.Flags().StringVar(&opts.Rules, "rules", "", "Newline-separated rule references")
	cmd.Flags().StringVar(&opts.UsageHook, "usage-hook", "", "Optional usage list path")
	cmd.Flags().StringVar(&opts.Endpoint, "endpoint", "", "GitHub API base URL")
	_ = viper.BindPFlag("github_token", cmd.Flags().Lookup("github-token"))
	_ = viper.BindPFlag("name", cmd.Flags().Lookup("name"))
	_ = viper.BindPFlag("schema", cmd.Flags().Lookup("schema"))
	_ = viper.BindPFlag("experimental_merge", cmd.Flags().Lookup("experimental-merge"))
	_ = viper.BindPFlag("fail_on_breaking", cmd.Flags().Lookup("fail-on-breaking"))
	_ = viper.BindPFlag("approve_label", cmd.Flags().Lookup("approve-label"))
	_ = viper.BindPFlag("rules", cmd.Flags().Lookup("rules"))
	_ = viper.BindPFlag("usage_hook", cmd.Flags().Lookup("usage-hook"))
	_ = viper.BindPFlag("endpoint", cmd.Flags().Lookup("endpoint"))
	return cmd
}

func runCheck(ctx context.Context, cmd *cobra.Command, opts checkOptions) error {
	req, err := buildCheckRequest(cmd, opts)
	if err != nil {
		return err
	}
	service := app.NewService(req)
	result, err := service.Check(ctx, req)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %d change(s)\n", result.Conclusion, result.Changes)
	return nil
}

// buildCheckRequest is the only place the process environment is read;
// the pipeline itself takes the explicit request struct.
func buildCheckRequest(cmd *cobra.Command, opts checkOptions) (app.CheckRequest, error) {
	workspace := os.Getenv("GITHUB_WORKSPACE")
	if workspace == "" {
		return app.CheckRequest{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("GITHUB_WORKSPACE is not set")
	}
	return app.CheckRequest{
		Token:          resolveString(cmd, opts.Token, "github_token", "github-token"),
		Name:           resolveString(cmd, opts.Name, "name", "name"),
		SchemaPointer:  resolveString(cmd, opts.Schema, "schema", "schema"),
		MergeEnabled:   resolveBool(cmd, opts.MergeEnabled, "experimental_merge", "experimental-merge"),
		FailOnBreaking: resolveBool(cmd, opts.FailOnBreaking, "fail_on_breaking", "fail-on-breaking"),
		ApproveLabel:   resolveString(cmd, opts.ApproveLabel, "approve_label", "approve-label"),
		Rules:          shared.SplitList(resolveString(cmd, opts.Rules, "rules", "rules")),
		UsageHook:      resolveString(cmd, opts.UsageHook, "usage_hook", "usage-hook"),
		Endpoint:       resolveString(cmd, opts.Endpoint, "endpoint", "endpoint"),
		CommitSHA:      os.Getenv("GITHUB_SHA"),
		Workspace:      workspace,
		Repository:     os.Getenv("GITHUB_REPOSITORY"),
		OutputPath:     os.Getenv("GITHUB_OUTPUT"),
	}, nil
}

func resolveString(cmd *cobra.Command, value string, key string, flagName string) string {
	if cmd == nil {
		if value != "" {
			return value
		}
		return viper.GetString(key)
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetString(key)
}

func resolveBool(cmd *cobra.Command, value bool, key string, flagName string) bool {
	if cmd == nil {
		return value
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetBool(key)
}

func flagChanged(cmd *cobra.Command, name string) bool {
	if cmd == nil || name == "" {
		return false
	}
	if flag := cmd.Flags().Lookup(name); flag != nil {
		return flag.Changed
	}
	if flag := cmd.PersistentFlags().Lookup(name); flag != nil {
		return flag.Changed
	}
	return false
}
