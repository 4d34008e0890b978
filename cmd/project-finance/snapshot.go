package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/iwvelando/project-finance/internal/snapshot"
	"github.com/iwvelando/project-finance/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func newSnapshotCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Manage named assumption snapshots",
	}
	cmd.AddCommand(
		newSnapshotSaveCmd(opts),
		newSnapshotListCmd(opts),
		newSnapshotShowCmd(opts),
		newSnapshotDeleteCmd(opts),
	)
	return cmd
}

// withStore opens the session and the configured snapshot store for fn.
func withStore(opts *rootOptions, cmd *cobra.Command, fn func(*session, snapshot.Store) error) error {
	s, err := opts.open(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	store, err := s.store(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(s, store)
}

func newSnapshotSaveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "save <name>",
		Short: "Store the current configuration under a name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if err := validation.ValidateSnapshotName(name); err != nil {
				return err
			}
			return withStore(opts, cmd, func(s *session, store snapshot.Store) error {
				s.warn()
				info, err := store.Save(cmd.Context(), name, *s.conf)
				if err != nil {
					return err
				}
				s.logger.Info("saved snapshot",
					zap.String("op", "main.snapshotSave"),
					zap.String("name", info.Name),
					zap.Int("version", info.Version),
				)
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "saved %s version %d (%s)\n", info.Name, info.Version, info.ID)
				return err
			})
		},
	}
}

func newSnapshotListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored snapshots, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(opts, cmd, func(_ *session, store snapshot.Store) error {
				infos, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				_, _ = fmt.Fprintln(tw, "NAME\tVERSION\tUPDATED\tID")
				for _, info := range infos {
					_, _ = fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n",
						info.Name, info.Version, info.UpdatedAt.Format("2006-01-02 15:04:05"), info.ID)
				}
				return tw.Flush()
			})
		},
	}
}

func newSnapshotShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Print a stored snapshot as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(opts, cmd, func(_ *session, store snapshot.Store) error {
				snap, err := store.Load(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("failed to load snapshot %s: %w", args[0], err)
				}
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent(2)
				if err := enc.Encode(snap); err != nil {
					return err
				}
				return enc.Close()
			})
		},
	}
}

func newSnapshotDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Remove a stored snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(opts, cmd, func(s *session, store snapshot.Store) error {
				if err := store.Delete(cmd.Context(), args[0]); err != nil {
					return fmt.Errorf("failed to delete snapshot %s: %w", args[0], err)
				}
				s.logger.Info("deleted snapshot",
					zap.String("op", "main.snapshotDelete"),
					zap.String("name", args[0]),
				)
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
				return err
			})
		},
	}
}
