package loader

import (
	"math/rand"

	"github.com/moffa90/go-aiecdo/cdo"
)

// MockLogger records log messages for testing
type MockLogger struct {
	debugMsgs []string
	infoMsgs  []string
	errorMsgs []string
}

func (l *MockLogger) Debug(msg string, kv ...interface{}) {
	l.debugMsgs = append(l.debugMsgs, msg)
}

func (l *MockLogger) Info(msg string, kv ...interface{}) {
	l.infoMsgs = append(l.infoMsgs, msg)
}

func (l *MockLogger) Error(msg string, kv ...interface{}) {
	l.errorMsgs = append(l.errorMsgs, msg)
}

// sampleCDO returns a CDO exercising every command kind, both length forms,
// padding and a zero run.
func sampleCDO() []byte {
	b := cdo.NewBuilder()
	for i := uint32(0); i < 5; i++ {
		b.Write(0x1000+i*4, 0xA0+i)
	}
	b.Nop(2)
	for i := uint32(0); i < 3; i++ {
		b.MaskWrite(0x2000+i*4, 0x0000FFFF, 0x1234+i)
	}
	b.Write64(0x0000_0002_0000_0010, 0xDEADBEEF)
	b.MaskWrite64(0x0000_0002_0000_0014, 0xFF00FF00, 0x11223344)
	b.DmaWrite(0x0000_0000_0004_0000, []uint32{1, 2, 3, 4, 5, 6, 7})
	b.DmaWrite(0x0000_0000_0000_0400, make([]uint32, 300))
	long := make([]uint32, 260)
	for i := range long {
		long[i] = uint32(i) * 0x01010101
	}
	b.DmaWrite(0x0000_0001_0008_0000, long)
	b.Write(0x3000, 1)
	b.Nop(0)
	b.Write(0x3004, 2)
	b.End()
	return b.Bytes()
}

// randomCDO returns a pseudo-random valid CDO of about n commands.
func randomCDO(r *rand.Rand, n int) []byte {
	b := cdo.NewBuilder()
	for i := 0; i < n; i++ {
		switch r.Intn(7) {
		case 0:
			b.Write(r.Uint32(), r.Uint32())
		case 1:
			b.MaskWrite(r.Uint32(), r.Uint32(), r.Uint32())
		case 2:
			b.Write64(r.Uint64(), r.Uint32())
		case 3:
			b.MaskWrite64(r.Uint64(), r.Uint32(), r.Uint32())
		case 4:
			data := make([]uint32, r.Intn(300))
			if r.Intn(2) == 0 {
				for j := range data {
					data[j] = r.Uint32()
				}
			}
			b.DmaWrite(uint64(r.Intn(0x30000))&^3, data)
		case 5:
			b.Nop(r.Intn(4))
		case 6:
			run := 1 + r.Intn(6)
			for j := 0; j < run; j++ {
				b.Write(uint32(j)*4, r.Uint32())
			}
		}
	}
	if r.Intn(4) != 0 {
		b.End()
	}
	return b.Bytes()
}
