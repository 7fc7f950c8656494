package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/aretw0/ripple"
	"github.com/aretw0/ripple/internal/logging"
	"github.com/aretw0/ripple/internal/presentation/graph"
	"github.com/aretw0/ripple/internal/presentation/tui"
	"github.com/aretw0/ripple/pkg/domain"
	"github.com/aretw0/ripple/pkg/dsl"
	"golang.org/x/term"
)

// ErrEmptyFixture is returned when a fixture declares no nodes to start from.
var ErrEmptyFixture = errors.New("fixture has no nodes")

// DemoOptions contains the configuration for the demo command.
type DemoOptions struct {
	FixturePath string
	Start       string // Fixture label or node ID; defaults to the fixture's start
	Watch       bool
	Period      time.Duration
	SubDelay    time.Duration
	Style       string // Glamour style, "auto" by default
	Plain       bool   // Print raw markdown even on a terminal
	Mermaid     bool   // Print the final Mermaid diagram after each run
	Out         io.Writer
	Logger      *slog.Logger
}

// nodeSource defers the node listing to the workspace created after the renderer.
type nodeSource struct {
	ws *ripple.Workspace
}

func (n *nodeSource) Nodes() []string {
	if n.ws == nil {
		return nil
	}
	return n.ws.Nodes()
}

// RunDemo animates a breadth-first traversal of a fixture on the terminal.
// Without Watch it returns once the traversal completes. With Watch it keeps
// running, reloading and restarting whenever the fixture file changes, until
// ctx is cancelled.
func RunDemo(ctx context.Context, opts DemoOptions) error {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	logger := opts.Logger

	interactive := isTerminal(opts.Out) && !opts.Plain
	var markdown func(string) (string, error)
	if interactive {
		tui.PrintBanner(opts.Out)
		r, err := tui.NewRenderer(opts.Style, 80)
		if err != nil {
			return fmt.Errorf("failed to create renderer: %w", err)
		}
		markdown = r
	}

	completed := make(chan *domain.TraversalEvent, 1)
	nodes := &nodeSource{}
	wsOpts := []ripple.Option{
		ripple.WithName("demo"),
		ripple.WithLogger(logger),
		ripple.WithRenderer(tui.NewFrameRenderer(opts.Out, nodes, markdown)),
		ripple.WithLifecycleHooks(domain.LifecycleHooks{
			OnComplete: func(_ context.Context, ev *domain.TraversalEvent) {
				select {
				case completed <- ev:
				default:
				}
			},
		}),
	}
	if opts.Period > 0 || opts.SubDelay > 0 {
		wsOpts = append(wsOpts, ripple.WithTiming(opts.Period, opts.SubDelay))
	}

	ws, err := ripple.New(wsOpts...)
	if err != nil {
		return err
	}
	defer ws.Close()
	nodes.ws = ws

	var changes <-chan struct{}
	if opts.Watch {
		changes, err = watchFile(ctx, opts.FixturePath, 100*time.Millisecond, logger)
		if err != nil {
			return err
		}
		logger.Info("Starting Watcher", "path", opts.FixturePath)
		printSystemMessage(opts.Out, "Watching '%s'.", opts.FixturePath)
	}

	if err := runFixture(ctx, ws, opts); err != nil {
		if !opts.Watch {
			return err
		}
		logger.Error("Fixture load failed", "path", opts.FixturePath, "err", err)
		printSystemMessage(opts.Out, "Load failed: %v", err)
	}

	for {
		select {
		case <-ctx.Done():
			ws.Reset(context.WithoutCancel(ctx))
			printSystemMessage(opts.Out, "Interrupted.")
			return nil

		case ev := <-completed:
			printSystemMessage(opts.Out, "Traversal from '%s' complete: %d nodes visited.", ev.Start, ev.Visited)
			if opts.Mermaid {
				frame := ws.Snapshot()
				fmt.Fprintln(opts.Out, graph.GenerateMermaid(ws.View(), &frame))
			}
			if !opts.Watch {
				return nil
			}
			printSystemMessage(opts.Out, "Waiting for changes...")

		case <-changes:
			logger.Info("Change detected, triggering reload", "path", opts.FixturePath)
			printSystemMessage(opts.Out, "Change detected in '%s'.", opts.FixturePath)
			if err := runFixture(ctx, ws, opts); err != nil {
				logger.Error("Fixture reload failed", "path", opts.FixturePath, "err", err)
				printSystemMessage(opts.Out, "Reload failed: %v", err)
			}
			// A completion queued by the previous graph is stale now.
			select {
			case <-completed:
			default:
			}
		}
	}
}

// runFixture loads the fixture into ws, replacing its graph, and starts a
// traversal from the resolved start node.
func runFixture(ctx context.Context, ws *ripple.Workspace, opts DemoOptions) error {
	fx, err := dsl.LoadFile(opts.FixturePath)
	if err != nil {
		return err
	}
	if len(fx.Nodes) == 0 {
		return ErrEmptyFixture
	}

	ids, err := ws.Load(ctx, fx)
	if err != nil {
		return err
	}

	start := opts.Start
	if start == "" {
		start = fx.Start
	}
	if start == "" {
		start = fx.Nodes[0].ID
	}
	if id, ok := ids[start]; ok {
		start = id
	}
	return ws.Start(ctx, start)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}
