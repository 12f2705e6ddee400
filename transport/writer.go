package transport

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/klauspost/compress/flate"
)

// Writer writes frames to an io.Writer in the same header-line-plus-
// raw-payload shape the teacher's GS1-T writer uses.
//
// Format: `@frame{v=1 sid=N seq=N kind=K len=N [crc=X] [final=true]}\n`
// followed by len(payload) raw bytes and a trailing newline.
type Writer struct {
	w           io.Writer
	withCRC     bool
	compressMin int // payloads at or above this size are flate-compressed; 0 disables
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithCRC makes the writer compute and attach a CRC-32 to every frame.
func WithCRC() WriterOption {
	return func(w *Writer) { w.withCRC = true }
}

// WithCompression flate-compresses any payload at least minSize bytes
// long, marking the frame FlagCompressed (§4.8's "optional payload
// compression" for large ArrayBuffer/Blob follow-ups).
func WithCompression(minSize int) WriterOption {
	return func(w *Writer) { w.compressMin = minSize }
}

// NewWriter creates a frame writer with the given options.
func NewWriter(w io.Writer, opts ...WriterOption) *Writer {
	writer := &Writer{w: w}
	for _, opt := range opts {
		opt(writer)
	}
	return writer
}

// WriteFrame writes one frame.
func (w *Writer) WriteFrame(f *Frame) error {
	payload := f.Payload
	flags := f.Flags
	if w.compressMin > 0 && len(payload) >= w.compressMin {
		compressed, err := deflate(payload)
		if err != nil {
			return fmt.Errorf("compress payload: %w", err)
		}
		payload = compressed
		flags |= FlagCompressed
	}

	crc := f.CRC
	if crc == nil && w.withCRC {
		c := ComputeCRC(payload)
		crc = &c
	}

	version := f.Version
	if version == 0 {
		version = 1
	}
	attrs := []string{
		"v=" + strconv.Itoa(int(version)),
		"sid=" + strconv.FormatUint(f.SID, 10),
		"seq=" + strconv.FormatUint(f.Seq, 10),
		"kind=" + f.Kind.String(),
		"len=" + strconv.Itoa(len(payload)),
	}
	if crc != nil {
		attrs = append(attrs, fmt.Sprintf("crc=%08x", *crc))
	}
	if flags&FlagCompressed != 0 {
		attrs = append(attrs, "compressed=true")
	}
	if f.Final || flags&FlagFinal != 0 {
		attrs = append(attrs, "final=true")
	}
	header := "@frame{" + strings.Join(attrs, " ") + "}\n"

	if _, err := io.WriteString(w.w, header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if len(payload) > 0 {
		if _, err := w.w.Write(payload); err != nil {
			return fmt.Errorf("write payload: %w", err)
		}
	}
	if _, err := io.WriteString(w.w, "\n"); err != nil {
		return fmt.Errorf("write trailing newline: %w", err)
	}
	return nil
}

// WriteDoc writes the initial keyed root binding for sid.
func (w *Writer) WriteDoc(sid, seq uint64, payload []byte) error {
	return w.WriteFrame(&Frame{Version: Version, SID: sid, Seq: seq, Kind: KindDoc, Payload: payload})
}

// WriteFollow writes a streaming follow-up expression for sid.
func (w *Writer) WriteFollow(sid, seq uint64, payload []byte) error {
	return w.WriteFrame(&Frame{Version: Version, SID: sid, Seq: seq, Kind: KindFollow, Payload: payload})
}

// WriteAck writes an acknowledgement frame.
func (w *Writer) WriteAck(sid, seq uint64) error {
	return w.WriteFrame(&Frame{Version: Version, SID: sid, Seq: seq, Kind: KindAck})
}

// WriteErr writes an error frame.
func (w *Writer) WriteErr(sid, seq uint64, payload []byte) error {
	return w.WriteFrame(&Frame{Version: Version, SID: sid, Seq: seq, Kind: KindErr, Payload: payload})
}

// WriteFinal writes the closing frame for sid.
func (w *Writer) WriteFinal(sid, seq uint64, kind FrameKind, payload []byte) error {
	return w.WriteFrame(&Frame{Version: Version, SID: sid, Seq: seq, Kind: kind, Payload: payload, Final: true})
}

func deflate(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	fw, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		return nil, err
	}
	if _, err := fw.Write(data); err != nil {
		return nil, err
	}
	if err := fw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
