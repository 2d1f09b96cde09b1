package cmd

import (
	"fmt"
	"strconv"

	"github.com/robert-malhotra/go-tinytiff/tiff"
	"github.com/spf13/cobra"
)

func DefineDumpCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump <file>",
		Short: "Print the decoded values of one sample plane",
		Args:  cobra.ExactArgs(1),
		RunE:  RunDump,
	}

	cmd.Flags().Int("frame", 0, "index of the frame to dump")
	cmd.Flags().Int("sample", 0, "index of the sample within a pixel")
	cmd.Flags().Int("limit", 64, "maximum number of values to print, 0 for all")

	return cmd
}

func RunDump(cmd *cobra.Command, args []string) error {
	frame, _ := cmd.Flags().GetInt("frame")
	sample, _ := cmd.Flags().GetInt("sample")
	limit, _ := cmd.Flags().GetInt("limit")

	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}

	r, err := tiff.Open(args[0], tiff.WithLogger(logger))
	if err != nil {
		return err
	}
	defer r.Close()

	for r.FrameIndex() < frame {
		if !r.ReadNext() {
			if r.WasError() {
				return r.Err()
			}
			return fmt.Errorf("frame %d out of range, file has %d frames", frame, r.FrameIndex()+1)
		}
	}

	values, err := formatPlane(r, sample)
	if err != nil {
		return err
	}
	if limit > 0 && limit < len(values) {
		values = values[:limit]
	}

	out := cmd.OutOrStdout()
	width := r.Width()
	for i, v := range values {
		fmt.Fprintf(out, "%d,%d: %s\n", i%width, i/width, v)
	}
	return nil
}

// formatPlane decodes one sample plane of the current frame into the Go
// type matching its format and bit depth, and formats every value.
func formatPlane(r *tiff.Reader, sample int) ([]string, error) {
	bits, err := r.BitsPerSample(sample)
	if err != nil {
		return nil, err
	}
	format := r.Frame().SampleFormats[sample]

	switch {
	case format == tiff.SampleFormatFloat && bits == 32:
		return formatValues[float32](tiff.ReadSamples[float32](r, sample))
	case format == tiff.SampleFormatFloat && bits == 64:
		return formatValues[float64](tiff.ReadSamples[float64](r, sample))
	case format == tiff.SampleFormatInt && bits == 8:
		return formatValues[int8](tiff.ReadSamples[int8](r, sample))
	case format == tiff.SampleFormatInt && bits == 16:
		return formatValues[int16](tiff.ReadSamples[int16](r, sample))
	case format == tiff.SampleFormatInt && bits == 32:
		return formatValues[int32](tiff.ReadSamples[int32](r, sample))
	case format == tiff.SampleFormatInt && bits == 64:
		return formatValues[int64](tiff.ReadSamples[int64](r, sample))
	case bits == 8:
		return formatValues[uint8](tiff.ReadSamples[uint8](r, sample))
	case bits == 16:
		return formatValues[uint16](tiff.ReadSamples[uint16](r, sample))
	case bits == 32:
		return formatValues[uint32](tiff.ReadSamples[uint32](r, sample))
	case bits == 64:
		return formatValues[uint64](tiff.ReadSamples[uint64](r, sample))
	}
	return nil, fmt.Errorf("%w: %d-bit %v samples", tiff.ErrUnsupportedBitDepth, bits, format)
}

func formatValues[T tiff.Sample](vals []T, err error) ([]string, error) {
	if err != nil {
		return nil, err
	}
	out := make([]string, len(vals))
	for i, v := range vals {
		switch v := any(v).(type) {
		case float32:
			out[i] = strconv.FormatFloat(float64(v), 'g', -1, 32)
		case float64:
			out[i] = strconv.FormatFloat(v, 'g', -1, 64)
		default:
			out[i] = fmt.Sprint(v)
		}
	}
	return out, nil
}
