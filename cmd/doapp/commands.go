package doapp

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/doapp/pkg/archive"
	"github.com/arthur-debert/doapp/pkg/config"
	"github.com/arthur-debert/doapp/pkg/fetch"
	"github.com/arthur-debert/doapp/pkg/filesystem"
	"github.com/arthur-debert/doapp/pkg/install"
	"github.com/arthur-debert/doapp/pkg/paths"
	"github.com/arthur-debert/doapp/pkg/snapshot"
	"github.com/arthur-debert/doapp/pkg/types"
)

// cmdContext bundles what every command needs: resolved config, the
// scope's paths, and the filesystem.
type cmdContext struct {
	cfg   *config.Config
	fs    types.FS
	paths paths.Paths
}

// newContext resolves the effective scope (flag beats config) and
// builds the shared command context.
func newContext(cmd *cobra.Command) (*cmdContext, error) {
	// The config dir does not depend on scope
	bootstrap, err := paths.New(types.ScopeUser)
	if err != nil {
		return nil, fmt.Errorf(MsgErrInitPaths, err)
	}

	cfg, err := config.Load(bootstrap.ConfigDir())
	if err != nil {
		return nil, fmt.Errorf(MsgErrLoadConfig, err)
	}

	scope := cfg.Scope()
	if flag, _ := cmd.Root().PersistentFlags().GetString("scope"); flag != "" {
		scope = types.Scope(flag)
	}

	p, err := paths.New(scope)
	if err != nil {
		return nil, fmt.Errorf(MsgErrInitPaths, err)
	}

	return &cmdContext{cfg: cfg, fs: filesystem.NewOS(), paths: p}, nil
}

func (c *cmdContext) snapshots() *snapshot.Manager {
	return snapshot.NewManager(c.fs, c.paths)
}

// printBatch renders a batch result and returns its error, so a partial
// batch exits non-zero after reporting every item.
func printBatch(result *types.BatchResult, verb string) error {
	for _, item := range result.Items {
		switch item.Status {
		case types.StatusCommitted:
			fmt.Printf(MsgItemCommitted, item.Name, verb)
		case types.StatusSkipped:
			fmt.Printf(MsgItemSkipped, item.Name, item.Reason)
		case types.StatusFailed:
			fmt.Printf(MsgItemFailed, item.Name, item.Reason)
		}
	}
	fmt.Printf(MsgBatchSummary, result.Installed, result.Skipped, result.Failed, result.SnapshotID)
	return result.Err()
}

func newInstallCmd() *cobra.Command {
	var (
		name        string
		entry       string
		interpreter string
		workdir     string
		linkMode    string
	)

	cmd := &cobra.Command{
		Use:     "install [sources...]",
		Short:   MsgInstallShort,
		GroupID: "core",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := newContext(cmd)
			if err != nil {
				return err
			}
			force, _ := cmd.Root().PersistentFlags().GetBool("force")

			opts := install.Options{
				Force:    force,
				LinkMode: ctx.cfg.LinkMode(),
				Name:     name,
			}
			if linkMode != "" {
				opts.LinkMode = types.LinkMode(linkMode)
			}
			if entry != "" {
				opts.Entry = &types.EntrySpec{
					Interpreter: interpreter,
					Entry:       entry,
					WorkDir:     workdir,
				}
			}

			log.Info().Strs("sources", args).Bool("force", force).Msg("Installing")

			installer := install.NewInstaller(ctx.fs, ctx.paths, ctx.snapshots(), fetch.NewHTTP())
			result, err := installer.Install(cmd.Context(), args, opts)
			if err != nil {
				return err
			}
			return printBatch(result, "installed")
		},
	}

	cmd.Flags().StringVar(&name, "name", "", MsgFlagName)
	cmd.Flags().StringVar(&entry, "entry", "", MsgFlagEntry)
	cmd.Flags().StringVar(&interpreter, "interpreter", "", MsgFlagInterp)
	cmd.Flags().StringVar(&workdir, "workdir", "", MsgFlagWorkdir)
	cmd.Flags().StringVar(&linkMode, "link-mode", "", MsgFlagLinkMode)
	return cmd
}

func newUninstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "uninstall [names...]",
		Short:   MsgUninstallShort,
		GroupID: "core",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := newContext(cmd)
			if err != nil {
				return err
			}
			uninstaller := install.NewUninstaller(ctx.fs, ctx.paths, ctx.snapshots())
			result, err := uninstaller.Uninstall(args)
			if err != nil {
				return err
			}
			return printBatch(result, "removed")
		},
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Short:   MsgListShort,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := newContext(cmd)
			if err != nil {
				return err
			}
			items, err := install.List(ctx.fs, ctx.paths)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Println(MsgNoItems)
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
			for _, item := range items {
				desc := item.Description
				if desc == "" {
					desc = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					formatBold(item.Name), item.Kind, item.Version, desc)
			}
			return w.Flush()
		},
	}
}

func newSnapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "snapshot",
		Short:   MsgSnapshotShort,
		GroupID: "core",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "take",
		Short: "Take a snapshot of the managed dirs now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := newContext(cmd)
			if err != nil {
				return err
			}
			id, err := ctx.snapshots().Take()
			if err != nil {
				return err
			}
			fmt.Printf(MsgSnapshotTaken, id)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List snapshots, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := newContext(cmd)
			if err != nil {
				return err
			}
			ids, err := ctx.snapshots().List()
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				fmt.Println(MsgNoSnapshots)
				return nil
			}
			for _, id := range ids {
				fmt.Println(id)
			}
			return nil
		},
	})

	return cmd
}

func newRollbackCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rollback [snapshot-id]",
		Short:   MsgRollbackShort,
		GroupID: "core",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := newContext(cmd)
			if err != nil {
				return err
			}
			force, _ := cmd.Root().PersistentFlags().GetBool("force")

			snapshots := ctx.snapshots()
			var id string
			if len(args) == 1 {
				id = args[0]
			} else {
				latest, ok := snapshots.Latest()
				if !ok {
					fmt.Println(MsgNoSnapshots)
					return nil
				}
				id = latest
			}

			report, err := snapshots.Restore(id, force)
			if err != nil {
				return err
			}
			fmt.Printf("Rolled back to %s: %d bin entries, %d apps restored\n",
				id,
				len(report.Bin.Copied)+len(report.Bin.Replaced),
				len(report.Apps.Copied)+len(report.Apps.Replaced))
			return nil
		},
	}
}

func newPackCmd() *cobra.Command {
	var (
		all    bool
		apps   []string
		out    string
		format string
	)

	cmd := &cobra.Command{
		Use:     "pack [commands...]",
		Short:   MsgPackShort,
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := newContext(cmd)
			if err != nil {
				return err
			}

			if format == "" {
				format = ctx.cfg.Archive.Format
			}
			packer, err := archive.NewPacker(ctx.fs, ctx.paths, format)
			if err != nil {
				return err
			}

			selection := archive.SelectEverything()
			if !all {
				var items []archive.ItemRef
				for _, name := range args {
					items = append(items, archive.ItemRef{Kind: types.KindCommand, Name: name})
				}
				for _, name := range apps {
					items = append(items, archive.ItemRef{Kind: types.KindApp, Name: name})
				}
				if len(items) == 0 {
					return fmt.Errorf("nothing selected: name items or pass --all")
				}
				selection = archive.SelectItems(items...)
			}

			dest, err := packer.Pack(selection, out)
			if err != nil {
				return err
			}
			fmt.Printf(MsgPacked, dest)
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, MsgFlagAll)
	cmd.Flags().StringSliceVar(&apps, "app", nil, MsgFlagApp)
	cmd.Flags().StringVar(&out, "out", "doapp-backup", MsgFlagOut)
	cmd.Flags().StringVar(&format, "format", "", MsgFlagFormat)
	return cmd
}

func newRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "restore <archive>",
		Short:   MsgRestoreShort,
		GroupID: "core",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := newContext(cmd)
			if err != nil {
				return err
			}
			force, _ := cmd.Root().PersistentFlags().GetBool("force")

			restorer := archive.NewRestorer(ctx.fs, ctx.paths, ctx.snapshots())
			report, err := restorer.Restore(args[0], force)
			if err != nil {
				return err
			}
			fmt.Printf(MsgRestored, args[0],
				len(report.Bin.Copied)+len(report.Bin.Replaced),
				len(report.Apps.Copied)+len(report.Apps.Replaced),
				report.SnapshotID)
			return nil
		},
	}
}
