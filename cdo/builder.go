package cdo

// Builder assembles an original (untransformed) CDO.
//
// Example:
//
//	b := cdo.NewBuilder()
//	b.MaskWrite(0x0003_2000, 0x0000_00FF, 0x0000_0011)
//	b.DmaWrite(0x0000_0000_0002_0000, []uint32{1, 2, 3})
//	b.End()
//	buf := b.Bytes()
type Builder struct {
	version uint32
	stream  []byte
}

// NewBuilder returns an empty Builder using DefaultVersion.
func NewBuilder() *Builder {
	return &Builder{version: DefaultVersion}
}

// SetVersion sets the version written into the header.
func (b *Builder) SetVersion(v uint32) {
	b.version = v
}

// MaskWrite appends a 32-bit addressed mask write.
func (b *Builder) MaskWrite(addr, mask, value uint32) {
	b.stream = AppendCommand(b.stream, OpMaskWrite, addr, mask, value)
}

// Write appends a 32-bit addressed write.
func (b *Builder) Write(addr, value uint32) {
	b.stream = AppendCommand(b.stream, OpWrite, addr, value)
}

// MaskWrite64 appends a 64-bit addressed mask write.
func (b *Builder) MaskWrite64(addr uint64, mask, value uint32) {
	b.stream = AppendCommand(b.stream, OpMaskWrite64, uint32(addr>>32), uint32(addr), mask, value)
}

// Write64 appends a 64-bit addressed write.
func (b *Builder) Write64(addr uint64, value uint32) {
	b.stream = AppendCommand(b.stream, OpWrite64, uint32(addr>>32), uint32(addr), value)
}

// DmaWrite appends a block copy of data to dest.
func (b *Builder) DmaWrite(dest uint64, data []uint32) {
	payload := make([]uint32, 0, dmaAddrWords+len(data))
	payload = append(payload, uint32(dest>>32), uint32(dest))
	payload = append(payload, data...)
	b.stream = AppendCommand(b.stream, OpDmaWrite, payload...)
}

// Nop appends a no-op carrying padWords words of padding.
func (b *Builder) Nop(padWords int) {
	b.stream = AppendCommand(b.stream, OpNop, make([]uint32, padWords)...)
}

// End appends an end command.
func (b *Builder) End() {
	b.stream = AppendCommand(b.stream, OpEnd)
}

// Raw appends an arbitrary command without validation.
func (b *Builder) Raw(op Opcode, payload ...uint32) {
	b.stream = AppendCommand(b.stream, op, payload...)
}

// Stream returns the command stream without a header.
func (b *Builder) Stream() []byte {
	return append([]byte(nil), b.stream...)
}

// Bytes returns the complete CDO: header followed by the command stream.
func (b *Builder) Bytes() []byte {
	h := NewHeader(b.version, uint32(len(b.stream)/WordSize))
	out := make([]byte, 0, HeaderSize+len(b.stream))
	out = h.AppendTo(out)
	return append(out, b.stream...)
}
