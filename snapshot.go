package main

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"waitlist-rank-system/services"
)

func snapshotCommand() *cobra.Command {
	var label string
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Take a global snapshot of the current ranking and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDatabase()
			if err != nil {
				return err
			}
			defer closeDatabase(db)
			snapshots := services.NewSnapshotService(db, clockwork.NewRealClock(), rt.logger)
			release, err := attachSnapshotOutputs(cmd.Context(), snapshots)
			defer release()
			if err != nil {
				return err
			}
			run, err := snapshots.TakeGlobalSnapshot(cmd.Context(), label)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "snapshot %s ranked %d entrants\n", run.ID, run.EntrantCount)
			if run.ArchiveKey != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "archived to %s\n", run.ArchiveKey)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&label, "label", "l", "manual", "label stored with the snapshot run")
	return cmd
}

// attachSnapshotOutputs wires the optional Redis board and R2 archive. The returned func
// releases the board connection and is never nil.
func attachSnapshotOutputs(ctx context.Context, snapshots *services.SnapshotService) (func(), error) {
	release := func() {}
	board, err := newSnapshotBoard()
	if err != nil {
		return release, err
	}
	if board != nil {
		snapshots.Board = board
		release = func() {
			if err := board.Close(); err != nil {
				rt.logger.Warn("failed to close snapshot board", "error", err)
			}
		}
	}
	archive, err := newSnapshotArchive(ctx)
	if err != nil {
		return release, err
	}
	if archive != nil {
		snapshots.Archiver = archive
	}
	return release, nil
}

func closeDatabase(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		rt.logger.Warn("failed to close database", "error", err)
	}
}
