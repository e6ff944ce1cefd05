// Command gohl renders, previews and manages highlight queries for markdown
// and text documents.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dl/gohighlight/internal/cli"
	"github.com/dl/gohighlight/internal/input"
	"github.com/dl/gohighlight/internal/settings"
)

var version = "dev"

// options are the flags shared by every command.
type options struct {
	settingsPath string
	debug        bool
	color        string
	cfg          cli.Config
}

func main() {
	exitCode := 0
	root := newRootCmd(&exitCode)
	root.SetArgs(cli.MergeArgs(os.Args[1:], cli.LoadConfigArgs(), func(arg string) bool {
		for _, c := range root.Commands() {
			if c.Name() == arg || c.HasAlias(arg) {
				return true
			}
		}
		return false
	}))
	if err := root.Execute(); err != nil {
		os.Exit(2)
	}
	os.Exit(exitCode)
}

func newRootCmd(exitCode *int) *cobra.Command {
	opts := &options{}
	debug, _ := strconv.ParseBool(os.Getenv("GOHL_DEBUG"))

	root := &cobra.Command{
		Use:          "gohl",
		Short:        "Highlight queries for markdown and text documents",
		Version:      version,
		SilenceUsage: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&opts.settingsPath, "settings", settings.DefaultPath(), "settings file (yaml, json or toml)")
	pf.BoolVar(&opts.debug, "debug", debug, "debug logging (GOHL_DEBUG)")
	pf.StringVar(&opts.color, "color", "auto", "when to use color: auto, always, never")
	pf.BoolVarP(&opts.cfg.LineNumbers, "line-number", "n", false, "prefix lines with their number")
	pf.BoolVarP(&opts.cfg.OnlyDecorated, "only-decorated", "o", false, "print only decorated lines")
	pf.BoolVarP(&opts.cfg.CountOnly, "count", "c", false, "print the number of token decorations per document")
	pf.BoolVar(&opts.cfg.JSONOutput, "json", false, "print decorations as JSON Lines")
	pf.IntVarP(&opts.cfg.Workers, "workers", "j", 0, "documents rendered in parallel (0 = one per CPU)")
	pf.BoolVar(&opts.cfg.NoIgnore, "no-ignore", false, "do not respect .gitignore files")
	pf.BoolVar(&opts.cfg.Hidden, "hidden", false, "include hidden files and directories")
	pf.StringSliceVar(&opts.cfg.Extensions, "ext", nil, "document extensions to walk (default .md,.markdown,.txt)")
	pf.IntVar(&opts.cfg.Cursor, "cursor", -1, "caret offset for selection highlighting (-1 = off)")
	pf.IntVar(&opts.cfg.SelectLen, "select", 0, "select this many bytes from the cursor")
	pf.Int64Var(&opts.cfg.MmapThreshold, "mmap-threshold", input.DefaultMmapThreshold, "map documents of at least this many bytes")

	root.AddCommand(
		newRenderCmd(opts, exitCode),
		newWatchCmd(opts),
		newCSSCmd(opts),
		newExportCmd(opts),
		newImportCmd(opts),
		newToggleCmd(opts),
	)
	return root
}

// prepare validates the shared flags and opens the settings store.
func (o *options) prepare(args []string) (*settings.Store, error) {
	mode, err := cli.ParseColorMode(o.color)
	if err != nil {
		return nil, err
	}
	o.cfg.Color = mode
	o.cfg.SettingsPath = o.settingsPath
	o.cfg.Paths = args
	if err := o.cfg.Validate(); err != nil {
		return nil, err
	}
	return settings.NewStore(o.settingsPath, cli.NewLogger(o.debug)), nil
}

func newRenderCmd(opts *options, exitCode *int) *cobra.Command {
	return &cobra.Command{
		Use:   "render [path...]",
		Short: "Render documents with their decorations",
		Long: `Render documents with static query and selection decorations.
Directories are walked for documents, honoring .gitignore. With no path, or
"-", the document is read from standard input.

Exit status is 0 when something was decorated, 1 when nothing was and 2 on
error.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.prepare(args)
			if err != nil {
				return err
			}
			cfg, err := store.LoadOrDefault()
			if err != nil {
				return err
			}
			*exitCode = cli.Run(opts.cfg, cfg, cli.NewLogger(opts.debug))
			return nil
		},
	}
}

func newWatchCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <path>",
		Short: "Preview a document, repainting on document or settings changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.prepare(args)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return cli.Preview(ctx, opts.cfg, store, cmd.OutOrStdout(), cli.NewLogger(opts.debug))
		},
	}
}

func newCSSCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "css",
		Short: "Print the stylesheet for the configured queries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.prepare(nil)
			if err != nil {
				return err
			}
			return cli.Stylesheet(store, cmd.OutOrStdout())
		},
	}
}

func newExportCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Export the query dictionary as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.prepare(nil)
			if err != nil {
				return err
			}
			if len(args) == 0 || args[0] == input.Stdin {
				return cli.Export(store, cmd.OutOrStdout())
			}
			f, err := os.Create(args[0])
			if err != nil {
				return err
			}
			if err := cli.Export(store, f); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}
}

func newImportCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Merge a JSON query dictionary into the settings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.prepare(nil)
			if err != nil {
				return err
			}
			var data []byte
			if args[0] == input.Stdin {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return err
			}
			names, err := cli.Import(store, data, cli.NewLogger(opts.debug))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d queries: %s\n", len(names), strings.Join(names, ", "))
			return nil
		},
	}
}

func newToggleCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle [command]",
		Short: "Run a toggle command; without one, list them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.prepare(nil)
			if err != nil {
				return err
			}
			logger := cli.NewLogger(opts.debug)
			if len(args) == 0 {
				return cli.ListCommands(store, cmd.OutOrStdout(), logger)
			}
			id := args[0]
			if !strings.HasPrefix(id, "toggle-") {
				id = "toggle-" + id
			}
			return cli.Toggle(store, id, cmd.OutOrStdout(), logger)
		},
	}
}
