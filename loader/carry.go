package loader

import (
	"github.com/moffa90/go-aiecdo/cdo"
)

// Carry holds the unconsumed tail of a cache chunk between refills.
//
// When a group is cut mid-record, the carry remembers the group kind and how
// many entries (including the cut one) are still owed, and restore writes a
// fresh group header for them. When the chunk ends inside a group header, the
// raw bytes are carried as an opaque fragment with Opcode set to cdo.OpNop.
type Carry struct {
	// Pending is set while the carry holds bytes for the next refill
	Pending bool

	// Opcode is the kind of the interrupted group, or cdo.OpNop for a fragment
	Opcode cdo.Opcode

	// EntriesRemaining counts the interrupted group's unexecuted entries
	EntriesRemaining uint16

	// Tail holds the leftover bytes
	Tail [cdo.MaxBodySize]byte

	// TailLen is the number of valid bytes in Tail
	TailLen uint32
}

// Opaque reports whether the carry is a raw group header fragment.
func (c *Carry) Opaque() bool {
	return c.Pending && c.Opcode == cdo.OpNop
}

// saveGroup carries the cut entry of a group together with the count of
// entries still owed. len(tail) must be less than the group's body size.
func (c *Carry) saveGroup(op cdo.Opcode, remaining uint16, tail []byte) {
	c.Pending = true
	c.Opcode = op
	c.EntriesRemaining = remaining
	c.TailLen = uint32(copy(c.Tail[:], tail))
}

// saveFragment carries a partial group header.
func (c *Carry) saveFragment(tail []byte) {
	c.Pending = true
	c.Opcode = cdo.OpNop
	c.EntriesRemaining = 0
	c.TailLen = uint32(copy(c.Tail[:], tail))
}

// restore writes the carried bytes to the start of cache and clears the carry.
// It returns the number of bytes written.
func (c *Carry) restore(cache []byte) int {
	if !c.Pending {
		return 0
	}
	n := 0
	if c.Opcode != cdo.OpNop {
		cdo.AppendGroupHeader(cache[:0], c.Opcode, uint32(c.EntriesRemaining))
		n = cdo.GroupHeaderSize
	}
	n += copy(cache[n:], c.Tail[:c.TailLen])
	c.reset()
	return n
}

// size returns the number of bytes restore would write.
func (c *Carry) size() int {
	if !c.Pending {
		return 0
	}
	if c.Opcode == cdo.OpNop {
		return int(c.TailLen)
	}
	return cdo.GroupHeaderSize + int(c.TailLen)
}

func (c *Carry) reset() {
	*c = Carry{}
}
