package main

import (
	"context"
	"fmt"
	"time"

	libzmx "github.com/dariussullivan/libzmx"
	"github.com/spf13/cobra"
)

var replayCmd = &cobra.Command{
	Use:   "replay <name>",
	Short: "Push a saved prescription and verify the round trip",
	Long: `Loads a saved prescription into a fresh local model, pushes it to the
simulated design server, pulls it back and checks that the surface count and
types survived the round trip.`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)
}

func runReplay(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(cfg.Server.TimeoutMs)*time.Millisecond)
	defer cancel()

	st, err := openStore()
	if err != nil {
		return err
	}
	snap, err := st.LoadPrescription(args[0])
	if err != nil {
		return err
	}

	_, conn, metrics := newSimConn()
	model := libzmx.NewSequence(conn)
	if err := model.LoadSnapshot(snap); err != nil {
		return err
	}
	if err := model.Push(ctx); err != nil {
		return fmt.Errorf("push prescription: %w", err)
	}
	if err := model.Pull(ctx); err != nil {
		return fmt.Errorf("pull prescription: %w", err)
	}

	if model.Len() != snap.Count() {
		return fmt.Errorf("round trip lost surfaces: pushed %d, pulled %d", snap.Count(), model.Len())
	}
	fmt.Printf("Round trip ok: %d surfaces\n", model.Len())

	if err := printSequence(ctx, model); err != nil {
		return err
	}
	printCallCounts(metrics)
	return nil
}
