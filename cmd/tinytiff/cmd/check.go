package cmd

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/robert-malhotra/go-tinytiff/tiff"
	"github.com/spf13/cobra"
)

func DefineCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>",
		Short: "Decode every sample plane of every frame and report all failures",
		Args:  cobra.ExactArgs(1),
		RunE:  RunCheck,
	}
}

func RunCheck(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}

	r, err := tiff.Open(args[0], tiff.WithLogger(logger))
	if err != nil {
		return err
	}
	defer r.Close()

	frames, result := checkFrames(r)
	if result == nil {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: OK, %d frames\n", args[0], frames)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d problems in %d frames\n", args[0], len(result.Errors), frames)
	return result
}

// checkFrames walks the chain from the current frame, decoding every
// sample plane. It returns the number of frames visited and every failure.
func checkFrames(r *tiff.Reader) (int, *multierror.Error) {
	var result *multierror.Error
	frames := 0
	for {
		frames++
		for s := 0; s < r.SamplesPerPixel(); s++ {
			if err := checkPlane(r, s); err != nil {
				result = multierror.Append(result, fmt.Errorf("frame %d sample %d: %w", r.FrameIndex(), s, err))
			}
		}
		if r.ReadNext() {
			continue
		}
		if r.WasError() {
			result = multierror.Append(result, fmt.Errorf("frame %d: %w", r.FrameIndex()+1, r.Err()))
		}
		return frames, result
	}
}

func checkPlane(r *tiff.Reader, sample int) error {
	bits, err := r.BitsPerSample(sample)
	if err != nil {
		return err
	}

	switch bits {
	case 8:
		_, err = tiff.ReadSamples[uint8](r, sample)
	case 16:
		_, err = tiff.ReadSamples[uint16](r, sample)
	case 32:
		_, err = tiff.ReadSamples[uint32](r, sample)
	case 64:
		_, err = tiff.ReadSamples[uint64](r, sample)
	default:
		err = fmt.Errorf("%w: %d bits per sample", tiff.ErrUnsupportedBitDepth, bits)
	}
	return err
}
