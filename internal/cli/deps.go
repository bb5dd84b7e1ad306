package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"

	"github.com/crunchfoods/crunch-cli/internal/domain"
	"github.com/crunchfoods/crunch-cli/internal/gateway/directory"
	"github.com/crunchfoods/crunch-cli/internal/gateway/geo"
)

// StateStore persists local application state between invocations.
type StateStore interface {
	Path() string
	Load() (domain.State, error)
	Save(domain.State) error
}

// MapResolver turns street addresses into map artifacts. A disabled
// resolver skips map output without failing the command.
type MapResolver interface {
	Enabled() bool
	Geocode(ctx context.Context, address string) (geo.Point, error)
	StaticMapURL(point geo.Point) (string, error)
}

// Dependencies wires runtime services.
type Dependencies struct {
	Directory directory.API
	Maps      MapResolver
	Store     StateStore
	Version   string
}

// errVersionShown short-circuits command execution after --version
// output without being reported as a failure.
var errVersionShown = errors.New("version shown")

var unknownCommandPattern = regexp.MustCompile(`unknown command "([^"]+)"`)

// Execute runs the CLI with injected dependencies and maps the result
// onto a process exit code.
func Execute(ctx context.Context, args []string, deps Dependencies, stdout io.Writer, stderr io.Writer) int {
	root := NewRootCommand(deps)
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	return exitCode(root.ExecuteContext(ctx), stderr)
}

func exitCode(err error, stderr io.Writer) int {
	if err == nil || errors.Is(err, errVersionShown) {
		return 0
	}
	var controlled *exitError
	if errors.As(err, &controlled) {
		return controlled.code
	}
	if matches := unknownCommandPattern.FindStringSubmatch(err.Error()); len(matches) > 1 {
		_, _ = fmt.Fprintf(stderr, "No such command '%s'\n", matches[1])
		return 2
	}
	if msg := err.Error(); msg != "" {
		_, _ = fmt.Fprintln(stderr, msg)
	}
	return 1
}
