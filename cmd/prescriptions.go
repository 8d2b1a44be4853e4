package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved prescriptions",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		infos, err := st.ListPrescriptions()
		if err != nil {
			return err
		}
		if len(infos) == 0 {
			fmt.Println("No saved prescriptions")
			return nil
		}
		fmt.Printf("%-24s %s\n", "Name", "Surfaces")
		for _, info := range infos {
			fmt.Printf("%-24s %d\n", info.Name, info.Surfaces)
		}
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print a saved prescription",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		snap, err := st.LoadPrescription(args[0])
		if err != nil {
			return err
		}
		printSnapshot(snap)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a saved prescription",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		if err := st.DeletePrescription(args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted prescription %q\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(deleteCmd)
}
