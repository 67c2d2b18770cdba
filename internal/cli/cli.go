// Package cli dispatches storefront and admin panel commands.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ssbags/storefront/internal/api"
	"github.com/ssbags/storefront/internal/cart"
	"github.com/ssbags/storefront/internal/catalog"
	"github.com/ssbags/storefront/internal/checkout"
	"github.com/ssbags/storefront/internal/event"
	"github.com/ssbags/storefront/internal/session"
	"github.com/ssbags/storefront/internal/view"
	apperrors "github.com/ssbags/storefront/pkg/errors"
	"github.com/ssbags/storefront/pkg/health"
	"github.com/ssbags/storefront/pkg/pagination"
)

// Deps are the stores and clients the commands run against.
type Deps struct {
	Cart     *cart.Service
	Session  *session.Service
	Checkout *checkout.Service
	API      *api.Client
	Products *catalog.Loaded
	Sample   catalog.Static
	Events   *event.Publisher
	Health   *health.Registry

	// BreakerState reports the backend circuit breaker state, if any.
	BreakerState func() string
	// Gatherer supplies the metrics command; nil means the default registry.
	Gatherer prometheus.Gatherer

	Platform checkout.Platform
	Logger   *slog.Logger
}

type command struct {
	name    string
	args    string
	summary string
	run     func(ctx context.Context, args []string) error
}

// CLI runs one command per invocation.
type CLI struct {
	Deps
	out      io.Writer
	errOut   io.Writer
	commands map[string]command
	admin    map[string]command
}

// New creates a CLI writing results to out and problems to errOut. It
// subscribes to cart and notice events so every change is rendered.
func New(deps Deps, out, errOut io.Writer) *CLI {
	c := &CLI{Deps: deps, out: out, errOut: errOut}
	c.commands = index(c.shopCommands())
	c.admin = index(c.adminCommands())
	deps.Events.Subscribe(c.render)
	return c
}

func index(cmds []command) map[string]command {
	m := make(map[string]command, len(cmds))
	for _, cmd := range cmds {
		m[cmd.name] = cmd
	}
	return m
}

func (c *CLI) render(_ context.Context, e event.Event) {
	switch data := e.Data.(type) {
	case event.CartChangedData:
		_ = view.Cart(c.out, data.Items, data.Totals)
	case event.NoticeData:
		_ = view.Notice(c.out, data)
	}
}

// Run executes args and returns the process exit code.
func (c *CLI) Run(ctx context.Context, args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		c.usage(c.out)
		return 0
	}

	table, name, rest := c.commands, args[0], args[1:]
	if name == "admin" {
		if len(rest) == 0 {
			c.usage(c.out)
			return 0
		}
		table, name, rest = c.admin, rest[0], rest[1:]
	}

	cmd, ok := table[name]
	if !ok {
		fmt.Fprintf(c.errOut, "unknown command %q\n\n", strings.Join(args[:len(args)-len(rest)], " "))
		c.usage(c.errOut)
		return 2
	}

	if err := cmd.run(ctx, rest); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		c.Logger.DebugContext(ctx, "command failed",
			slog.String("command", name),
			slog.String("error", err.Error()),
		)
		fmt.Fprintln(c.errOut, apperrors.Message(err))
		if errors.Is(err, errUsage) {
			return 2
		}
		return 1
	}
	return 0
}

func (c *CLI) usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: storefront <command> [flags] [args]")
	fmt.Fprintln(w, "\nShop commands:")
	printCommands(w, c.commands, "")
	fmt.Fprintln(w, "\nAdmin commands:")
	printCommands(w, c.admin, "admin ")
}

func printCommands(w io.Writer, cmds map[string]command, prefix string) {
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		cmd := cmds[name]
		fmt.Fprintf(w, "  %-36s %s\n", strings.TrimSpace(prefix+cmd.name+" "+cmd.args), cmd.summary)
	}
}

var errUsage = errors.New("usage")

func usageError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, args...))
}

// newFlags creates a flag set that reports parse errors instead of exiting.
func (c *CLI) newFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.errOut)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return usageError("%v", err)
	}
	return nil
}

// pageFlags registers -page and -per-page on fs.
func pageFlags(fs *flag.FlagSet) func() pagination.Params {
	page := fs.Int("page", 1, "page number")
	perPage := fs.Int("per-page", 0, "rows per page, 0 shows everything")
	return func() pagination.Params { return pagination.New(*page, *perPage) }
}

// pageFooter notes which page was shown when paging is on.
func pageFooter[T any](w io.Writer, r pagination.Result[T]) {
	if r.TotalPages > 1 {
		fmt.Fprintf(w, "Page %d of %d (%d total)\n", r.Page, r.TotalPages, r.TotalCount)
	}
}

// intArg parses the i-th positional argument as an integer.
func intArg(args []string, i int, what string) (int, error) {
	if len(args) <= i {
		return 0, usageError("missing %s", what)
	}
	n, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, usageError("%s must be a number, got %q", what, args[i])
	}
	return n, nil
}

// position converts a 1-based cart position to an index.
func position(args []string, i int) (int, error) {
	n, err := intArg(args, i, "cart position")
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, usageError("cart position starts at 1")
	}
	return n - 1, nil
}
