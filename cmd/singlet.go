package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	libzmx "github.com/dariussullivan/libzmx"
	"github.com/spf13/cobra"
)

var singletSave string

var singletCmd = &cobra.Command{
	Use:   "singlet",
	Short: "Build and push a demo singlet lens",
	Long: `Builds a two-surface singlet in the local model (BK7 front surface,
an f/10 curvature solve and a focus solve on the back surface), pushes it to
the simulated design server and prints the resulting prescription.`,
	RunE: runSinglet,
}

func init() {
	singletCmd.Flags().StringVar(&singletSave, "save", "", "Save the pushed prescription under this name")
	rootCmd.AddCommand(singletCmd)
}

func runSinglet(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(cfg.Server.TimeoutMs)*time.Millisecond)
	defer cancel()

	_, conn, metrics := newSimConn()
	model := libzmx.NewSequence(conn)

	// Object plane 100 units in front of the lens.
	obj, err := model.At(0)
	if err != nil {
		return err
	}
	if err := obj.Thickness().SetNumber(100); err != nil {
		return err
	}

	front, err := model.AppendNew(libzmx.TypeStandard)
	if err != nil {
		return err
	}
	if err := front.Glass().SetText("BK7"); err != nil {
		return err
	}
	if err := front.Thickness().SetNumber(1.0); err != nil {
		return err
	}

	back, err := model.AppendNew(libzmx.TypeStandard)
	if err != nil {
		return err
	}
	// f/number solve on the radius, marginal ray height solve for focus.
	if err := back.Curvature().SetFNumber(10); err != nil {
		return err
	}
	if err := back.Thickness().FocusOnNext(); err != nil {
		return err
	}

	if err := model.Push(ctx); err != nil {
		return fmt.Errorf("push singlet: %w", err)
	}
	slog.Info("Singlet pushed", "surfaces", model.Len(), "generation", model.Generation())

	if err := printSequence(ctx, model); err != nil {
		return err
	}

	if singletSave != "" {
		snap, err := model.Snapshot(ctx)
		if err != nil {
			return err
		}
		st, err := openStore()
		if err != nil {
			return err
		}
		if err := st.SavePrescription(singletSave, snap); err != nil {
			return err
		}
		fmt.Printf("\nSaved prescription %q\n", singletSave)
	}

	printCallCounts(metrics)
	return nil
}
