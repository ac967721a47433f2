// Package mvbank stores motion fields. A bank file is a fixed header
// followed by a zstd-compressed array of fixed-size macroblock records:
//
//	offset size field
//	0      4    magic "AVMV"
//	4      1    version
//	5      1    slice type (0 = P, 1 = B)
//	6      2    reserved, zero
//	8      2    width in macroblocks
//	10     2    height in macroblocks
//	12     12   POC of the picture, list-0 and list-1 references (int32)
//	24     4    compressed payload size
//
// All integers are little-endian.
package mvbank

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/deepteams/avcme/internal/me"
)

const (
	// Version is the record layout written by Write.
	Version = 1
	// HeaderSize is the size of the uncompressed file header.
	HeaderSize = 28
	// RecordSize is the size of one macroblock record.
	RecordSize = 20
	// MaxPayload bounds the compressed payload a reader accepts.
	MaxPayload = 1 << 28
	// MaxSideMBs bounds the width and height of a stored picture, 16384
	// pixels in macroblocks.
	MaxSideMBs = 1024
	// maxRecords bounds the decoded size of a payload.
	maxRecords = MaxSideMBs * MaxSideMBs
)

// Magic identifies a bank file.
var Magic = [4]byte{'A', 'V', 'M', 'V'}

var (
	ErrBadMagic   = errors.New("mvbank: not a motion bank")
	ErrBadVersion = errors.New("mvbank: unsupported version")
	ErrTruncated  = errors.New("mvbank: truncated data")
	ErrCorrupt    = errors.New("mvbank: corrupt record")
	ErrTooLarge   = errors.New("mvbank: payload too large")
)

// Record flag bits.
const (
	flagIntra = 1 << iota
	flagSkip
	flagMinSAD
)

// Header describes the picture a field belongs to.
type Header struct {
	WidthMBs, HeightMBs int
	Slice               me.SliceType
	POC                 me.POCInfo
}

// Entry is the stored outcome of one macroblock.
type Entry struct {
	PU               me.PU
	Cost, Distortion int
	Skip             bool
	MinSADReached    bool
}

var encoders = sync.Pool{
	New: func() any {
		enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		return enc
	},
}

var decoders = sync.Pool{
	New: func() any {
		dec, _ := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderMaxMemory(maxRecords*RecordSize))
		return dec
	},
}

// Write stores h and entries to w. entries must hold WidthMBs*HeightMBs
// records in raster order.
func Write(w io.Writer, h Header, entries []Entry) (int64, error) {
	if h.WidthMBs <= 0 || h.HeightMBs <= 0 || h.WidthMBs > MaxSideMBs || h.HeightMBs > MaxSideMBs {
		return 0, fmt.Errorf("mvbank: invalid size %dx%d", h.WidthMBs, h.HeightMBs)
	}
	if len(entries) != h.WidthMBs*h.HeightMBs {
		return 0, fmt.Errorf("mvbank: %d entries for %dx%d macroblocks", len(entries), h.WidthMBs, h.HeightMBs)
	}

	raw := make([]byte, len(entries)*RecordSize)
	for i := range entries {
		putRecord(raw[i*RecordSize:], &entries[i])
	}
	enc := encoders.Get().(*zstd.Encoder)
	payload := enc.EncodeAll(raw, nil)
	encoders.Put(enc)

	var hdr [HeaderSize]byte
	copy(hdr[0:4], Magic[:])
	hdr[4] = Version
	hdr[5] = byte(h.Slice)
	binary.LittleEndian.PutUint16(hdr[8:10], uint16(h.WidthMBs))
	binary.LittleEndian.PutUint16(hdr[10:12], uint16(h.HeightMBs))
	binary.LittleEndian.PutUint32(hdr[12:16], uint32(int32(h.POC.Cur)))
	binary.LittleEndian.PutUint32(hdr[16:20], uint32(int32(h.POC.Ref0)))
	binary.LittleEndian.PutUint32(hdr[20:24], uint32(int32(h.POC.Ref1)))
	binary.LittleEndian.PutUint32(hdr[24:28], uint32(len(payload)))

	n, err := w.Write(hdr[:])
	if err != nil {
		return int64(n), fmt.Errorf("mvbank: writing header: %w", err)
	}
	m, err := w.Write(payload)
	if err != nil {
		return int64(n + m), fmt.Errorf("mvbank: writing payload: %w", err)
	}
	return int64(n + m), nil
}

// ParseHeader validates the fixed header at the start of data and returns
// it with the compressed payload size.
func ParseHeader(data []byte) (Header, int, error) {
	if len(data) < HeaderSize {
		return Header{}, 0, ErrTruncated
	}
	if [4]byte(data[0:4]) != Magic {
		return Header{}, 0, ErrBadMagic
	}
	if data[4] != Version {
		return Header{}, 0, fmt.Errorf("%w: %d", ErrBadVersion, data[4])
	}
	h := Header{
		Slice:     me.SliceType(data[5]),
		WidthMBs:  int(binary.LittleEndian.Uint16(data[8:10])),
		HeightMBs: int(binary.LittleEndian.Uint16(data[10:12])),
		POC: me.POCInfo{
			Cur:  int(int32(binary.LittleEndian.Uint32(data[12:16]))),
			Ref0: int(int32(binary.LittleEndian.Uint32(data[16:20]))),
			Ref1: int(int32(binary.LittleEndian.Uint32(data[20:24]))),
		},
	}
	if h.Slice != me.SliceP && h.Slice != me.SliceB {
		return Header{}, 0, fmt.Errorf("%w: slice type %d", ErrCorrupt, data[5])
	}
	if h.WidthMBs == 0 || h.HeightMBs == 0 {
		return Header{}, 0, fmt.Errorf("%w: empty picture", ErrCorrupt)
	}
	if h.WidthMBs > MaxSideMBs || h.HeightMBs > MaxSideMBs {
		return Header{}, 0, fmt.Errorf("%w: %dx%d macroblocks", ErrTooLarge, h.WidthMBs, h.HeightMBs)
	}
	size := binary.LittleEndian.Uint32(data[24:28])
	if size > MaxPayload {
		return Header{}, 0, ErrTooLarge
	}
	return h, int(size), nil
}

// Read loads a bank written by Write.
func Read(r io.Reader) (Header, []Entry, error) {
	var hdr [HeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return Header{}, nil, truncated(err, "header")
	}
	h, size, err := ParseHeader(hdr[:])
	if err != nil {
		return Header{}, nil, err
	}
	payload := make([]byte, size)
	if _, err := io.ReadFull(r, payload); err != nil {
		return Header{}, nil, truncated(err, "payload")
	}

	n := h.WidthMBs * h.HeightMBs
	dec := decoders.Get().(*zstd.Decoder)
	raw, err := dec.DecodeAll(payload, nil)
	decoders.Put(dec)
	if err != nil {
		return Header{}, nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if len(raw) != n*RecordSize {
		return Header{}, nil, fmt.Errorf("%w: %d record bytes for %d macroblocks", ErrTruncated, len(raw), n)
	}

	entries := make([]Entry, n)
	for i := range entries {
		if err := getRecord(raw[i*RecordSize:], &entries[i]); err != nil {
			return Header{}, nil, fmt.Errorf("macroblock %d: %w", i, err)
		}
	}
	return h, entries, nil
}

func truncated(err error, what string) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %s", ErrTruncated, what)
	}
	return fmt.Errorf("mvbank: reading %s: %w", what, err)
}

// Record layout:
//
//	0  mode        4  list-0 MV x,y (int16)
//	1  flags       8  list-1 MV x,y (int16)
//	2  list-0 ref  12 cost (int32)
//	3  list-1 ref  16 distortion (int32)
func putRecord(b []byte, e *Entry) {
	var flags byte
	if e.PU.Intra {
		flags |= flagIntra
	}
	if e.Skip {
		flags |= flagSkip
	}
	if e.MinSADReached {
		flags |= flagMinSAD
	}
	b[0] = byte(e.PU.Mode)
	b[1] = flags
	b[2] = byte(e.PU.Info[me.L0].RefIdx)
	b[3] = byte(e.PU.Info[me.L1].RefIdx)
	for list := me.L0; list <= me.L1; list++ {
		mv := e.PU.Info[list].MV
		binary.LittleEndian.PutUint16(b[4+4*list:], uint16(mv.X))
		binary.LittleEndian.PutUint16(b[6+4*list:], uint16(mv.Y))
	}
	binary.LittleEndian.PutUint32(b[12:16], uint32(saturate32(e.Cost)))
	binary.LittleEndian.PutUint32(b[16:20], uint32(saturate32(e.Distortion)))
}

func getRecord(b []byte, e *Entry) error {
	mode := me.PredMode(b[0])
	if mode > me.PredBi {
		return fmt.Errorf("%w: prediction mode %d", ErrCorrupt, b[0])
	}
	flags := b[1]
	if flags&^(flagIntra|flagSkip|flagMinSAD) != 0 {
		return fmt.Errorf("%w: flags %#x", ErrCorrupt, flags)
	}
	e.PU.Mode = mode
	e.PU.Intra = flags&flagIntra != 0
	e.Skip = flags&flagSkip != 0
	e.MinSADReached = flags&flagMinSAD != 0
	for list := me.L0; list <= me.L1; list++ {
		ref := int8(b[2+list])
		if ref < me.RefUnused {
			return fmt.Errorf("%w: reference index %d", ErrCorrupt, ref)
		}
		e.PU.Info[list] = me.MEInfo{
			RefIdx: ref,
			MV: me.MV{
				X: int16(binary.LittleEndian.Uint16(b[4+4*list:])),
				Y: int16(binary.LittleEndian.Uint16(b[6+4*list:])),
			},
		}
	}
	e.Cost = int(int32(binary.LittleEndian.Uint32(b[12:16])))
	e.Distortion = int(int32(binary.LittleEndian.Uint32(b[16:20])))
	return nil
}

func saturate32(v int) int32 {
	const lo, hi = -1 << 31, 1<<31 - 1
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	}
	return int32(v)
}
