package cdo

import (
	"errors"
	"testing"
)

func TestRecordRoundTrip(t *testing.T) {
	cmds := []Command{
		{Op: OpMaskWrite, Addr: 0x1000, Mask: 0xFF, Value: 1},
		{Op: OpWrite, Addr: 0x2000, Value: 2},
		{Op: OpMaskWrite64, Addr: 0x0000_0007_0000_3000, Mask: 0xF, Value: 3},
		{Op: OpWrite64, Addr: 0x0000_0008_0000_4000, Value: 4},
		{Op: OpDmaWrite, Addr: 0x0000_0009_0000_5000, SourceRef: 64, LengthWords: 12, ZeroRun: true},
		{Op: OpEnd},
	}

	for _, want := range cmds {
		t.Run(want.Op.String(), func(t *testing.T) {
			body := AppendRecord(nil, want)
			size, ok := RecordBodySize(uint32(want.Op))
			if !ok || len(body) != size {
				t.Fatalf("body is %d bytes, RecordBodySize = %d (%v)", len(body), size, ok)
			}
			got, err := DecodeRecord(want.Op, body)
			if err != nil {
				t.Fatalf("DecodeRecord: %v", err)
			}
			if got.Addr != want.Addr || got.Mask != want.Mask || got.Value != want.Value ||
				got.SourceRef != want.SourceRef || got.LengthWords != want.LengthWords || got.ZeroRun != want.ZeroRun {
				t.Errorf("DecodeRecord = %+v, want %+v", got, want)
			}
		})
	}
}

func TestDmaRecordLayout(t *testing.T) {
	body := AppendRecord(nil, Command{Op: OpDmaWrite, Addr: 0x0000_0001_0002_0000, SourceRef: 8, LengthWords: 3})
	words := BytesToWords(body)
	want := []uint32{0x0002_0000, 0x0000_0001, 8, 3}
	for i := range want {
		if words[i] != want[i] {
			t.Errorf("word[%d] = 0x%08X, want 0x%08X", i, words[i], want[i])
		}
	}

	PutDmaRecord(body, 40, 3, true)
	words = BytesToWords(body)
	if words[2] != 40 || words[3] != 3|ZeroRunFlag {
		t.Errorf("after PutDmaRecord words = %08X", words)
	}
}

func TestDecodeRecordReservedLengthBits(t *testing.T) {
	body := AppendWords(nil, 0, 0, 0, 1<<20|4)
	if _, err := DecodeRecord(OpDmaWrite, body); !errors.Is(err, ErrMalformedCommand) {
		t.Errorf("error = %v, want ErrMalformedCommand", err)
	}
}

func TestWalkRecords(t *testing.T) {
	var zone []byte
	zone = AppendGroupHeader(zone, OpWrite, 2)
	zone = AppendRecord(zone, Command{Op: OpWrite, Addr: 1, Value: 10})
	zone = AppendRecord(zone, Command{Op: OpWrite, Addr: 2, Value: 20})
	zone = AppendGroupHeader(zone, OpEnd, 1)

	var seen []Opcode
	err := WalkRecords(zone, func(cmd Command, body []byte) error {
		seen = append(seen, cmd.Op)
		return nil
	})
	if err != nil {
		t.Fatalf("WalkRecords: %v", err)
	}
	if len(seen) != 3 || seen[0] != OpWrite || seen[2] != OpEnd {
		t.Errorf("seen = %v, want [write write end]", seen)
	}

	tests := []struct {
		name    string
		zone    []byte
		wantErr error
	}{
		{name: "partial group header", zone: zone[:4], wantErr: ErrTruncatedCommand},
		{name: "entry cut short", zone: zone[:GroupHeaderSize+12], wantErr: ErrTruncatedCommand},
		{name: "nop group", zone: AppendGroupHeader(nil, OpNop, 1), wantErr: ErrUnsupportedCommand},
		{name: "wide opcode", zone: AppendWords(nil, 0x103, 1, 0, 0), wantErr: ErrUnsupportedCommand},
		{name: "oversized count", zone: AppendGroupHeader(nil, OpEnd, MaxGroupEntries+1), wantErr: ErrMalformedCommand},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := WalkRecords(tt.zone, func(Command, []byte) error { return nil })
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
