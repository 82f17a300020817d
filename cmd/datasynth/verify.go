package main

import (
	"fmt"

	"datasynth/app"
	"datasynth/internal/config"

	"github.com/spf13/cobra"
)

func newVerifyCmd(currentConfig func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <manifest>",
		Short: "Check an output against its manifest and regenerate it from the recorded seed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manifest, err := app.ReadManifest(args[0])
			if err != nil {
				return err
			}

			svc, closeLedger, err := newService(cmd, currentConfig())
			if err != nil {
				return err
			}
			defer closeLedger()

			res, err := svc.Verify(cmd.Context(), manifest)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "OK %s\n", manifest.Output)
			fmt.Fprintf(out, "  sha256      %s\n", res.FileHash)
			if res.RegeneratedHash.IsEmpty() {
				fmt.Fprintf(out, "  regenerated skipped for %s output\n", manifest.Fingerprint.Format)
			} else {
				fmt.Fprintf(out, "  regenerated %s\n", res.RegeneratedHash)
			}
			return nil
		},
	}
}
