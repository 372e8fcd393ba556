package loader

import (
	"bytes"
	"testing"

	"github.com/moffa90/go-aiecdo/cdo"
)

func TestCarryRestoreGroup(t *testing.T) {
	var c Carry
	c.saveGroup(cdo.OpMaskWrite64, 7, []byte{1, 2, 3, 4, 5})

	if !c.Pending || c.Opaque() {
		t.Fatalf("Pending = %v, Opaque() = %v; want true, false", c.Pending, c.Opaque())
	}
	if got := c.size(); got != cdo.GroupHeaderSize+5 {
		t.Errorf("size() = %d, want %d", got, cdo.GroupHeaderSize+5)
	}

	cache := make([]byte, MinCacheCapacity)
	n := c.restore(cache)

	want := cdo.AppendGroupHeader(nil, cdo.OpMaskWrite64, 7)
	want = append(want, 1, 2, 3, 4, 5)
	if !bytes.Equal(cache[:n], want) {
		t.Errorf("restore() wrote % X, want % X", cache[:n], want)
	}
	if c.Pending {
		t.Error("carry still pending after restore")
	}
}

func TestCarryRestoreFragment(t *testing.T) {
	var c Carry
	c.saveFragment([]byte{0x03, 0x00, 0x00})

	if !c.Opaque() {
		t.Fatal("Opaque() = false for a header fragment")
	}
	if c.Opcode != cdo.OpNop {
		t.Errorf("Opcode = %s, want %s", c.Opcode, cdo.OpNop)
	}

	cache := make([]byte, MinCacheCapacity)
	n := c.restore(cache)
	if !bytes.Equal(cache[:n], []byte{0x03, 0x00, 0x00}) {
		t.Errorf("restore() wrote % X", cache[:n])
	}
}

func TestCarryRestoreEmpty(t *testing.T) {
	var c Carry
	if n := c.restore(make([]byte, MinCacheCapacity)); n != 0 {
		t.Errorf("restore() = %d, want 0", n)
	}

	// A group cut exactly between entries carries no tail.
	c.saveGroup(cdo.OpWrite, 2, nil)
	cache := make([]byte, MinCacheCapacity)
	n := c.restore(cache)
	if want := cdo.AppendGroupHeader(nil, cdo.OpWrite, 2); !bytes.Equal(cache[:n], want) {
		t.Errorf("restore() wrote % X, want % X", cache[:n], want)
	}
}

func TestCarryFitsMinimumCache(t *testing.T) {
	var c Carry
	c.saveGroup(cdo.OpDmaWrite, 1, make([]byte, cdo.MaxBodySize-1))
	if got := c.size(); got >= MinCacheCapacity {
		t.Errorf("size() = %d, must leave room in a %d byte cache", got, MinCacheCapacity)
	}
}
