package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/leapstack-labs/dbtdoc/internal/watch"
	"github.com/spf13/cobra"
)

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch [dbt_dir]",
		Short: "Regenerate docs whenever SQL files change",
		Long: `Run a generation pass, then watch the model and macro directories and
run another full pass after each burst of .sql changes.

Passes never overlap. A pass that fails is reported and watching continues.
Stop with Ctrl-C.`,
		Example: `  dbtdoc watch path/to/dbt`,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(withContext(cmd.Context()), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, NewCommandContext(cmd), args, debounce)
		},
	}

	AddGenerateFlags(cmd.Flags())
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "Quiet period before regenerating")
	return cmd
}

func runWatch(ctx context.Context, cc *CommandContext, args []string, debounce time.Duration) error {
	dir, err := projectDirArg(args)
	if err != nil {
		return err
	}

	// The project file must exist before watching starts.
	eng, err := cc.NewEngine(dir)
	if err != nil {
		return err
	}

	r := cc.Renderer
	rebuild := func(ctx context.Context) error {
		res, err := cc.generate(ctx, dir, nil)
		if err != nil {
			r.StatusLine(time.Now().Format("15:04:05"), "failed", err.Error())
			return err
		}
		r.StatusLine(time.Now().Format("15:04:05"), "success",
			fmt.Sprintf("%d records in %d directories", res.summary.Records, res.summary.Directories))
		return nil
	}

	_ = rebuild(ctx)

	var dirs []string
	for _, p := range eng.Project().Directories() {
		path := filepath.Join(dir, p)
		if _, err := os.Stat(path); err != nil {
			cc.Logger.Warn("directory not found", "path", path)
			continue
		}
		dirs = append(dirs, path)
	}

	r.Muted(fmt.Sprintf("Watching %d directories for changes (Ctrl-C to stop)", len(dirs)))

	w := &watch.Watcher{
		Dirs:     dirs,
		Debounce: debounce,
		Logger:   cc.Logger,
		Rebuild:  rebuild,
	}
	return w.Run(ctx)
}
