package checkout

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strings"
)

// Opener hands a link to whatever opens it.
type Opener interface {
	Open(ctx context.Context, link string) error
}

// WriterOpener prints the link for the user to open.
type WriterOpener struct {
	W io.Writer
}

func (o WriterOpener) Open(_ context.Context, link string) error {
	_, err := fmt.Fprintln(o.W, link)
	return err
}

// CommandOpener runs an external command with the link as last argument.
type CommandOpener struct {
	Command string
	Args    []string
}

// NewCommandOpener splits a command line such as "xdg-open" or
// "open -a Safari". An empty line selects the platform default.
func NewCommandOpener(line string) CommandOpener {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		fields = defaultCommand()
	}
	return CommandOpener{Command: fields[0], Args: fields[1:]}
}

func defaultCommand() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"open"}
	case "windows":
		return []string{"rundll32", "url.dll,FileProtocolHandler"}
	default:
		return []string{"xdg-open"}
	}
}

func (o CommandOpener) Open(ctx context.Context, link string) error {
	args := append(append([]string{}, o.Args...), link)
	out, err := exec.CommandContext(ctx, o.Command, args...).CombinedOutput()
	if err != nil {
		msg := strings.TrimSpace(string(out))
		if msg != "" {
			return fmt.Errorf("%s: %w: %s", o.Command, err, msg)
		}
		return fmt.Errorf("%s: %w", o.Command, err)
	}
	return nil
}
