package main

import (
	"github.com/spf13/cobra"

	"github.com/brunobiangulo/pdfoutline"
)

var extractCmd = &cobra.Command{
	Use:   "extract <file.pdf>",
	Short: "Print the outline of a single PDF as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ex, err := pdfoutline.New(cfg)
		if err != nil {
			return err
		}
		defer ex.Close()

		res, err := ex.Extract(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		data, err := pdfoutline.Marshal(res)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
}
