package adapters

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
)

// ActionsReporterAdapter reports through GitHub Actions workflow
// commands, mirroring every message to the structured log. Outputs are
// appended to the runner's output file when one is configured.
type ActionsReporterAdapter struct {
	Out        io.Writer
	OutputPath string
}

func NewActionsReporterAdapter(outputPath string) ActionsReporterAdapter {
	return ActionsReporterAdapter{
		Out:        os.Stdout,
		OutputPath: outputPath,
	}
}

func (a ActionsReporterAdapter) Notice(message string) {
	fmt.Fprintf(a.Out, "::notice::%s\n", escapeCommandData(message))
	log.Info().Msg(message)
}

func (a ActionsReporterAdapter) Error(message string) {
	fmt.Fprintf(a.Out, "::error::%s\n", escapeCommandData(message))
	log.Error().Msg(message)
}

func (a ActionsReporterAdapter) SetOutput(name string, value string) error {
	if a.OutputPath == "" {
		log.Debug().Str("output", name).Str("value", value).Msg("no output file configured")
		return nil
	}
	file, err := os.OpenFile(a.OutputPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to open output file").
			WithCause(err)
	}
	defer file.Close()
	if _, err := fmt.Fprintf(file, "%s=%s\n", name, value); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write output").
			WithCause(err)
	}
	return nil
}

// Workflow command data must have newlines and percent signs escaped.
func escapeCommandData(value string) string {
	replacer := strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A")
	return replacer.Replace(value)
}
