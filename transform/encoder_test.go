package transform

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/davecgh/go-spew/spew"

	"github.com/moffa90/go-aiecdo/cdo"
)

type groupHeader struct {
	Op    cdo.Opcode
	Count uint32
}

// groupHeaders lists the raw group headers of a command zone.
func groupHeaders(t *testing.T, zone []byte) []groupHeader {
	t.Helper()
	var out []groupHeader
	for pos := 0; pos < len(zone); {
		op := binary.LittleEndian.Uint32(zone[pos:])
		count := binary.LittleEndian.Uint32(zone[pos+4:])
		size, ok := cdo.RecordBodySize(op)
		if !ok {
			t.Fatalf("unexpected opcode 0x%X at zone offset %d", op, pos)
		}
		out = append(out, groupHeader{cdo.Opcode(op), count})
		pos += cdo.GroupHeaderSize + int(count)*size
	}
	return out
}

func dmaRecords(t *testing.T, img *Image) []cdo.Command {
	t.Helper()
	var out []cdo.Command
	err := cdo.WalkRecords(img.CommandZone, func(cmd cdo.Command, _ []byte) error {
		if cmd.Op == cdo.OpDmaWrite {
			out = append(out, cmd)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WalkRecords: %v", err)
	}
	return out
}

func TestEncodeGroupMerging(t *testing.T) {
	b := cdo.NewBuilder()
	for i := 0; i < 5; i++ {
		b.Write(uint32(0x1000+4*i), uint32(i))
	}
	for i := 0; i < 3; i++ {
		b.MaskWrite(uint32(0x2000+4*i), 0xFF, uint32(i))
	}

	img, err := Encode(b.Bytes())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got := groupHeaders(t, img.CommandZone)
	want := []groupHeader{{cdo.OpWrite, 5}, {cdo.OpMaskWrite, 3}}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("group headers:\n%s\nwant:\n%s", spew.Sdump(got), spew.Sdump(want))
	}

	wantLen := 2*cdo.GroupHeaderSize + 5*8 + 3*12
	if int(img.CommandZoneLen) != wantLen || len(img.CommandZone) != wantLen {
		t.Errorf("command zone = %d bytes (CommandZoneLen %d), want %d", len(img.CommandZone), img.CommandZoneLen, wantLen)
	}
	if len(img.DataZone) != 0 {
		t.Errorf("data zone = %d bytes, want 0", len(img.DataZone))
	}
}

func TestEncodeNopAndEnd(t *testing.T) {
	b := cdo.NewBuilder()
	b.Write(0x10, 1)
	b.Nop(2)
	b.Write(0x14, 2)
	b.End()
	b.Write(0x18, 3) // after end: never emitted

	img, err := Encode(b.Bytes())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got := groupHeaders(t, img.CommandZone)
	want := []groupHeader{{cdo.OpWrite, 2}, {cdo.OpEnd, 1}}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("group headers = %v, want %v", got, want)
	}
}

func TestEncodeRelocatesDma(t *testing.T) {
	b := cdo.NewBuilder()
	b.DmaWrite(0x0000_0001_0002_0000, []uint32{1, 2, 3})
	b.Write(0x40, 7)
	b.DmaWrite(0x0000_0001_0003_0000, []uint32{4, 5})
	b.End()

	buf := b.Bytes()
	orig := append([]byte(nil), buf...)

	img, err := Encode(buf)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !bytes.Equal(buf, orig) {
		t.Fatal("Encode modified its input")
	}

	wantData := cdo.AppendWords(nil, 1, 2, 3, 4, 5)
	if !bytes.Equal(img.DataZone, wantData) {
		t.Errorf("data zone = % X, want % X", img.DataZone, wantData)
	}

	dmas := dmaRecords(t, img)
	if len(dmas) != 2 {
		t.Fatalf("found %d dma records, want 2", len(dmas))
	}
	if dmas[0].SourceRef != 0 || dmas[0].LengthWords != 3 || dmas[0].Addr != 0x0000_0001_0002_0000 {
		t.Errorf("dma[0] = %+v", dmas[0])
	}
	if dmas[1].SourceRef != 12 || dmas[1].LengthWords != 2 {
		t.Errorf("dma[1] = %+v", dmas[1])
	}

	if err := img.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestEncodeZeroRunFlag(t *testing.T) {
	zeros := make([]uint32, 8)

	tests := []struct {
		name string
		dest uint64
		data []uint32
		opts []Option
		want bool
	}{
		{name: "zero payload in data memory", dest: 0x0000_0001_0000_1000, data: zeros, want: true},
		{name: "non-zero payload", dest: 0x0000_0001_0000_1000, data: []uint32{0, 1}, want: false},
		{name: "tile offset zero", dest: 0x0000_0001_0010_0000, data: zeros, want: false},
		{name: "program memory", dest: 0x0000_0001_0002_0000, data: zeros, want: false},
		{name: "detection disabled", dest: 0x1000, data: zeros, opts: []Option{WithZeroRunDetection(false)}, want: false},
		{name: "narrowed window", dest: 0x9000, data: zeros, opts: []Option{WithDataMemoryWindow(0, 0x8000)}, want: false},
		{name: "widened window", dest: 0x2_0000, data: zeros, opts: []Option{WithDataMemoryWindow(0x1_0000, 0x4_0000)}, want: true},
		{name: "inverted window ignored", dest: 0x1000, data: zeros, opts: []Option{WithDataMemoryWindow(0x8000, 0x10)}, want: true},
		{name: "empty payload", dest: 0x1000, data: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := cdo.NewBuilder()
			b.DmaWrite(tt.dest, tt.data)

			img, err := Encode(b.Bytes(), tt.opts...)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}

			dmas := dmaRecords(t, img)
			if len(dmas) != 1 {
				t.Fatalf("found %d dma records, want 1", len(dmas))
			}
			if dmas[0].ZeroRun != tt.want {
				t.Errorf("ZeroRun = %v, want %v", dmas[0].ZeroRun, tt.want)
			}
			if dmas[0].LengthWords != uint32(len(tt.data)) {
				t.Errorf("LengthWords = %d, want %d", dmas[0].LengthWords, len(tt.data))
			}

			field := binary.LittleEndian.Uint32(img.CommandZone[cdo.GroupHeaderSize+12:])
			if (field&cdo.ZeroRunFlag != 0) != tt.want {
				t.Errorf("stored length field 0x%08X, zero-run bit want %v", field, tt.want)
			}
		})
	}
}

func TestEncodeEmptyDma(t *testing.T) {
	b := cdo.NewBuilder()
	b.DmaWrite(0x0000_0001_0002_0000, []uint32{1, 2, 3})
	b.DmaWrite(0x0000_0001_0000_1000, nil)
	b.End()

	img, err := Encode(b.Bytes())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	dmas := dmaRecords(t, img)
	if len(dmas) != 2 {
		t.Fatalf("found %d dma records, want 2", len(dmas))
	}
	empty := dmas[1]
	if empty.LengthWords != 0 || empty.ZeroRun {
		t.Errorf("empty dma = %+v, want zero length without zero-run flag", empty)
	}
	if int(empty.SourceRef) >= len(img.DataZone) {
		t.Errorf("empty dma SourceRef = %d, want < data zone length %d", empty.SourceRef, len(img.DataZone))
	}
	if empty.Addr != 0x0000_0001_0000_1000 {
		t.Errorf("empty dma Addr = 0x%X", empty.Addr)
	}
	if err := img.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestEncodeSplitsFullGroups(t *testing.T) {
	b := cdo.NewBuilder()
	for i := 0; i < cdo.MaxGroupEntries+1; i++ {
		b.Write(0x100, uint32(i))
	}

	img, err := Encode(b.Bytes())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got := groupHeaders(t, img.CommandZone)
	if len(got) != 2 || got[0].Count != cdo.MaxGroupEntries || got[1].Count != 1 {
		t.Errorf("group headers = %v, want counts [%d 1]", got, cdo.MaxGroupEntries)
	}
}

func TestEncodeErrors(t *testing.T) {
	unsupported := cdo.NewBuilder()
	unsupported.Write(0x10, 1)
	unsupported.Raw(cdo.Opcode(0x04), 100) // delay is not supported

	badChecksum := cdo.NewBuilder()
	badChecksum.Write(0x10, 1)
	corrupt := badChecksum.Bytes()
	corrupt[8] ^= 0x80

	oversized := cdo.NewBuilder()
	oversized.DmaWrite(0x1000, make([]uint32, cdo.MaxDmaWords+1))

	malformed := cdo.NewBuilder()
	malformed.Raw(cdo.OpMaskWrite, 1, 2)

	tests := []struct {
		name    string
		buf     []byte
		wantErr error
	}{
		{name: "unsupported opcode", buf: unsupported.Bytes(), wantErr: cdo.ErrUnsupportedCommand},
		{name: "header checksum", buf: corrupt, wantErr: cdo.ErrChecksumMismatch},
		{name: "dma too large", buf: oversized.Bytes(), wantErr: cdo.ErrMalformedCommand},
		{name: "short mask write", buf: malformed.Bytes(), wantErr: cdo.ErrMalformedCommand},
		{name: "truncated buffer", buf: unsupported.Bytes()[:cdo.HeaderSize+4], wantErr: cdo.ErrTruncatedCommand},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Encode(tt.buf)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Encode() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

type captureLogger struct {
	debugMsgs []string
}

func (l *captureLogger) Debug(msg string, kv ...interface{}) { l.debugMsgs = append(l.debugMsgs, msg) }
func (l *captureLogger) Info(msg string, kv ...interface{})  {}
func (l *captureLogger) Error(msg string, kv ...interface{}) {}

func TestEncodeLogs(t *testing.T) {
	b := cdo.NewBuilder()
	b.End()

	logger := &captureLogger{}
	if _, err := NewEncoder(WithLogger(logger)).Encode(b.Bytes()); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(logger.debugMsgs) != 1 || logger.debugMsgs[0] != "cdo transformed" {
		t.Errorf("debug messages = %v", logger.debugMsgs)
	}
}
