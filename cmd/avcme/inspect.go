package main

import (
	"github.com/spf13/cobra"
)

func newInspectCmd() *cobra.Command {
	var listMBs bool
	cmd := &cobra.Command{
		Use:   "inspect [flags] <field.mvz>",
		Short: "Summarize a stored motion field",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			field, err := loadField(args[0])
			if err != nil {
				return err
			}
			printField(cmd.OutOrStdout(), field, listMBs)
			return nil
		},
	}
	cmd.Flags().BoolVar(&listMBs, "mbs", false, "Print the motion of every macroblock")
	return cmd
}
