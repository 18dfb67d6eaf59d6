package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Faultbox/lidarview/pkg/las"
)

var infoCmd = &cobra.Command{
	Use:   "info [file.las...]",
	Short: "Print the header of LAS files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	for i, path := range args {
		r, err := las.Open(path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		h := r.Header()
		r.Close()

		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "File:         %s\n", path)
		fmt.Fprintf(out, "Version:      %d.%d\n", h.VersionMajor, h.VersionMinor)
		if h.Software != "" {
			fmt.Fprintf(out, "Software:     %s\n", h.Software)
		}
		fmt.Fprintf(out, "Point format: %d (%d bytes, color: %t)\n", h.PointFormat, h.RecordLength, h.HasColor())
		fmt.Fprintf(out, "Points:       %d\n", h.PointCount)
		fmt.Fprintf(out, "Scale:        %g %g %g\n", h.Scale[0], h.Scale[1], h.Scale[2])
		fmt.Fprintf(out, "Offset:       %g %g %g\n", h.Offset[0], h.Offset[1], h.Offset[2])
		fmt.Fprintf(out, "Min:          %.3f %.3f %.3f\n", h.Min[0], h.Min[1], h.Min[2])
		fmt.Fprintf(out, "Max:          %.3f %.3f %.3f\n", h.Max[0], h.Max[1], h.Max[2])
	}
	return nil
}
