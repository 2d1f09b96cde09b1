package cmd

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/orcaman/writerseeker"
	"github.com/robert-malhotra/go-tinytiff/tiff"
	"github.com/spf13/cobra"
	xtiff "golang.org/x/image/tiff"
)

func DefineImportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <in.tif> <out.tif>",
		Short: "Rewrite any TIFF as an uncompressed grayscale TIFF",
		Long: "Decodes a TIFF in any compression and color model supported by " +
			"golang.org/x/image/tiff and rewrites it as a single uncompressed " +
			"grayscale frame, 16-bit for 16-bit sources and 8-bit otherwise.",
		Args: cobra.ExactArgs(2),
		RunE: RunImport,
	}

	cmd.Flags().StringP("description", "d", "", "ImageDescription of the output file")
	cmd.Flags().String("byte-order", "", "byte order of the output file: II, MM or empty for the host order")
	cmd.Flags().Bool("verify", false, "decode the output again before writing it and compare every pixel")

	return cmd
}

func RunImport(cmd *cobra.Command, args []string) error {
	desc, _ := cmd.Flags().GetString("description")
	orderFlag, _ := cmd.Flags().GetString("byte-order")
	verify, _ := cmd.Flags().GetBool("verify")

	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}

	opts := []tiff.Option{tiff.WithLogger(logger)}
	switch orderFlag {
	case "":
	case "II":
		opts = append(opts, tiff.WithByteOrder(binary.LittleEndian))
	case "MM":
		opts = append(opts, tiff.WithByteOrder(binary.BigEndian))
	default:
		return fmt.Errorf("invalid --byte-order %q, want II or MM", orderFlag)
	}

	in, err := os.Open(args[0])
	if err != nil {
		return err
	}
	img, err := xtiff.Decode(in)
	in.Close()
	if err != nil {
		return fmt.Errorf("decoding %s: %w", args[0], err)
	}

	plane := toGray(img)
	logger.Info("decoded input",
		"path", args[0],
		"width", plane.width,
		"height", plane.height,
		"bitsPerSample", plane.bits)

	if !verify {
		w, err := tiff.Create(args[1], plane.bits, plane.width, plane.height, opts...)
		if err != nil {
			return err
		}
		if err := plane.write(w); err != nil {
			w.Close(desc)
			return err
		}
		return w.Close(desc)
	}

	ws := &writerseeker.WriterSeeker{}
	w, err := tiff.NewWriter(ws, plane.bits, plane.width, plane.height, opts...)
	if err != nil {
		return err
	}
	if err := plane.write(w); err != nil {
		return err
	}
	if err := w.Close(desc); err != nil {
		return err
	}

	data, err := io.ReadAll(ws.Reader())
	if err != nil {
		return err
	}
	if err := plane.verify(data, logger); err != nil {
		return err
	}
	return os.WriteFile(args[1], data, 0o644)
}

// grayPlane is a decoded image reduced to one gray sample per pixel.
type grayPlane struct {
	width, height int
	bits          int
	pix8          []uint8
	pix16         []uint16
}

func is16Bit(img image.Image) bool {
	switch img.(type) {
	case *image.Gray16, *image.RGBA64, *image.NRGBA64:
		return true
	}
	return false
}

func toGray(img image.Image) *grayPlane {
	b := img.Bounds()
	p := &grayPlane{width: b.Dx(), height: b.Dy(), bits: 8}
	n := p.width * p.height

	if is16Bit(img) {
		p.bits = 16
		p.pix16 = make([]uint16, 0, n)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				p.pix16 = append(p.pix16, color.Gray16Model.Convert(img.At(x, y)).(color.Gray16).Y)
			}
		}
		return p
	}

	p.pix8 = make([]uint8, 0, n)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			p.pix8 = append(p.pix8, color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y)
		}
	}
	return p
}

func (p *grayPlane) write(w *tiff.Writer) error {
	if p.bits == 16 {
		return w.WriteImageVoid(p.pix16)
	}
	return w.WriteImageVoid(p.pix8)
}

// verify decodes data and compares it with the plane.
func (p *grayPlane) verify(data []byte, logger *slog.Logger) error {
	r, err := tiff.NewReader(bytes.NewReader(data), int64(len(data)), tiff.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("verifying output: %w", err)
	}
	defer r.Close()

	var same bool
	if p.bits == 16 {
		got, err := tiff.ReadSamples[uint16](r, 0)
		if err != nil {
			return fmt.Errorf("verifying output: %w", err)
		}
		same = slices.Equal(got, p.pix16)
	} else {
		got, err := tiff.ReadSamples[uint8](r, 0)
		if err != nil {
			return fmt.Errorf("verifying output: %w", err)
		}
		same = slices.Equal(got, p.pix8)
	}
	if !same {
		return fmt.Errorf("verifying output: decoded pixels differ from the input")
	}

	logger.Info("verified output", "bytes", len(data))
	return nil
}
