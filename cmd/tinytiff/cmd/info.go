package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/robert-malhotra/go-tinytiff/tiff"
	"github.com/spf13/cobra"
)

func DefineInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info <file>",
		Short: "Print the header and the frame table of a TIFF file",
		Args:  cobra.ExactArgs(1),
		RunE:  RunInfo,
	}
}

func RunInfo(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}

	r, err := tiff.Open(args[0], tiff.WithLogger(logger))
	if err != nil {
		return err
	}
	defer r.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "File:       %s\n", args[0])
	fmt.Fprintf(out, "Byte order: %s\n", r.ByteOrder())
	fmt.Fprintf(out, "Size:       %d bytes\n", r.FileSize())
	fmt.Fprintln(out)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FRAME\tIFD\tSIZE\tSAMPLES\tBITS\tFORMAT\tPLANAR\tSTRIPS\tDESCRIPTION")

	var iterErr error
	for f, err := range r.Frames() {
		if err != nil {
			iterErr = err
			break
		}
		fmt.Fprintf(tw, "%d\t%d\t%dx%d\t%d\t%v\t%v\t%d\t%d\t%q\n",
			f.Index, f.Offset, f.Width, f.Height, f.SamplesPerPixel,
			f.BitsPerSample, f.SampleFormats, f.PlanarConfiguration,
			len(f.StripOffsets), f.ImageDescription)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	return iterErr
}
