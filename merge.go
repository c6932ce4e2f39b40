package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/NastasiaHalabi/CertificateGenerator/pdfops"
)

var mergeOut string

var mergeCmd = &cobra.Command{
	Use:   "merge [flags] a.pdf b.pdf ...",
	Short: "Concatenate PDF files in the given order",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMerge(args, mergeOut)
	},
}

func init() {
	mergeCmd.Flags().StringVarP(&mergeOut, "out", "o", "merged.pdf", "输出文件")
}

func runMerge(inputs []string, out string) error {
	buffers := make([][]byte, 0, len(inputs))
	for _, in := range inputs {
		data, err := os.ReadFile(in)
		if err != nil {
			return fmt.Errorf("read %s: %w", in, err)
		}
		buffers = append(buffers, data)
	}
	merged, err := pdfops.Merge(buffers)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, merged, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	return nil
}
