package transport

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

func TestWriterMinimalFrame(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	if err := w.WriteDoc(0, 0, []byte("1+1")); err != nil {
		t.Fatalf("WriteDoc: %v", err)
	}

	got := buf.String()
	want := "@frame{v=1 sid=0 seq=0 kind=doc len=3}\n1+1\n"
	if got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestWriterWithCRC(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, WithCRC())

	if err := w.WriteFollow(1, 2, []byte("$R[3].resolve(1)")); err != nil {
		t.Fatalf("WriteFollow: %v", err)
	}
	if !strings.Contains(buf.String(), "crc=") {
		t.Fatalf("expected crc= in output: %s", buf.String())
	}
}

func TestRoundTripFrames(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, WithCRC())

	if err := w.WriteDoc(0, 0, []byte("[1,2,3]")); err != nil {
		t.Fatalf("WriteDoc: %v", err)
	}
	if err := w.WriteFollow(0, 1, []byte("$R[0].close()")); err != nil {
		t.Fatalf("WriteFollow: %v", err)
	}
	if err := w.WriteFinal(0, 2, KindFinal, nil); err != nil {
		t.Fatalf("WriteFinal: %v", err)
	}

	r := NewReader(&buf, WithCRCVerification())
	frames, err := r.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(frames) != 3 {
		t.Fatalf("expected 3 frames, got %d", len(frames))
	}
	if frames[0].Kind != KindDoc || string(frames[0].Payload) != "[1,2,3]" {
		t.Fatalf("frame 0 mismatch: %+v", frames[0])
	}
	if frames[1].Kind != KindFollow || string(frames[1].Payload) != "$R[0].close()" {
		t.Fatalf("frame 1 mismatch: %+v", frames[1])
	}
	if !frames[2].IsFinal() {
		t.Fatalf("frame 2 should be final: %+v", frames[2])
	}
}

func TestReaderRejectsCRCMismatch(t *testing.T) {
	bad := "@frame{v=1 sid=0 seq=0 kind=doc len=3 crc=00000000}\nabc\n"
	r := NewReader(strings.NewReader(bad), WithCRCVerification())
	_, err := r.Next()
	if _, ok := err.(*CRCMismatchError); !ok {
		t.Fatalf("expected CRCMismatchError, got %v", err)
	}
}

func TestReaderReturnsEOFOnEmptyStream(t *testing.T) {
	r := NewReader(strings.NewReader(""))
	_, err := r.Next()
	if err != io.EOF {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}

func TestCompressedPayloadRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, WithCompression(8))

	large := strings.Repeat("a", 256)
	if err := w.WriteDoc(0, 0, []byte(large)); err != nil {
		t.Fatalf("WriteDoc: %v", err)
	}

	r := NewReader(&buf)
	f, err := r.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if string(f.Payload) != large {
		t.Fatalf("payload did not round-trip through compression: got %d bytes", len(f.Payload))
	}
}

func TestParseKindRoundTrip(t *testing.T) {
	for _, k := range []FrameKind{KindDoc, KindFollow, KindAck, KindErr, KindFinal} {
		parsed, ok := ParseKind(k.String())
		if !ok || parsed != k {
			t.Fatalf("ParseKind(%q) = %v, %v", k.String(), parsed, ok)
		}
	}
}
