// Package strip converts between TIFF strip bytes and Go sample slices.
//
// A frame's strips, concatenated in StripOffsets order, form one byte
// stream. [Layout] describes how that stream is organized:
//
//   - Chunky (PlanarConfiguration 1): samples are interleaved per pixel.
//     The pixel stride is the sum of the per-sample byte widths, and
//     sample s starts at the sum of the widths of samples before it.
//   - Planar (PlanarConfiguration 2): each sample is stored as one
//     contiguous plane, planes following each other in sample order.
//
// [Layout.Span] tells the caller which part of the stream holds a sample,
// so only the overlapping strips have to be read. [Layout.Extract] then
// gathers the sample's units from that span.
//
// # Typed conversion
//
// [Decode] copies units into a caller slice by bitwise reinterpretation.
// When the file byte order matches the host the bytes are copied straight
// into the slice memory; otherwise every unit is decoded in file order.
// [Encode] is the inverse used by the writer.
//
//	l := strip.Layout{Width: 4, Height: 2, Bits: []int{16, 16, 16}}
//	start, end, _ := l.Span(1)
//	units, _ := l.Extract(stream[start:end], 1)
//	dst := make([]uint16, 8)
//	err := strip.Decode(dst, units, binary.BigEndian)
package strip
