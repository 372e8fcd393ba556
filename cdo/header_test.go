package cdo

import (
	"errors"
	"strings"
	"testing"
)

func TestNewHeaderRoundTrip(t *testing.T) {
	h := NewHeader(DefaultVersion, 10)
	if h.Checksum != 0xFFB0B9AE {
		t.Fatalf("Checksum = 0x%08X, want 0xFFB0B9AE", h.Checksum)
	}

	got, err := ParseHeader(h.Bytes())
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	if *got != h {
		t.Errorf("ParseHeader = %+v, want %+v", *got, h)
	}
}

func TestParseHeader(t *testing.T) {
	valid := NewHeader(DefaultVersion, 0).Bytes()

	badMagic := NewHeader(DefaultVersion, 0)
	badMagic.Magic = 0x584C4E58
	badMagic.Checksum = Checksum(badMagic.words()[:4])

	badCount := NewHeader(DefaultVersion, 0)
	badCount.WordCount = 5
	badCount.Checksum = Checksum(badCount.words()[:4])

	flipped := append([]byte(nil), valid...)
	flipped[12] ^= 0x01

	tests := []struct {
		name    string
		buf     []byte
		wantErr error
		errMsg  string
	}{
		{name: "valid", buf: valid},
		{name: "too short", buf: valid[:16], errMsg: "too short"},
		{name: "bad magic", buf: badMagic.Bytes(), wantErr: ErrBadMagic},
		{name: "bad word count", buf: badCount.Bytes(), errMsg: "word count"},
		{name: "flipped length bit", buf: flipped, wantErr: ErrChecksumMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseHeader(tt.buf)
			switch {
			case tt.wantErr == nil && tt.errMsg == "":
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
			default:
				if err == nil || !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("error = %v, want substring %q", err, tt.errMsg)
				}
			}
		})
	}
}

func TestStream(t *testing.T) {
	b := NewBuilder()
	b.Write(0x100, 1)
	b.End()
	buf := b.Bytes()

	_, stream, err := Stream(buf)
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if len(stream) != len(buf)-HeaderSize {
		t.Errorf("len(stream) = %d, want %d", len(stream), len(buf)-HeaderSize)
	}

	if _, _, err := Stream(buf[:len(buf)-4]); !errors.Is(err, ErrTruncatedCommand) {
		t.Errorf("Stream(short) = %v, want ErrTruncatedCommand", err)
	}
}
