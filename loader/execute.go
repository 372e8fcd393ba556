package loader

import (
	"github.com/moffa90/go-aiecdo/cdo"
)

// Stats summarizes the work done by the last load.
type Stats struct {
	// Refills is the number of cache refills (StreamEngine only)
	Refills int

	// Commands is the number of hardware commands executed, skipped zero runs included
	Commands int

	// BytesCopied is the number of bytes copied by dma_write
	BytesCopied int

	// ZeroRunsSkipped is the number of zero-run records not copied
	ZeroRunsSkipped int
}

// executor issues the hardware call for one decoded command.
type executor struct {
	port    IOPort
	metrics *Metrics
	stats   *Stats
}

// run executes cmd. data is the dma_write payload and is ignored for other kinds.
// Nop and end commands are no-ops.
func (x executor) run(cmd cdo.Command, data []byte) error {
	switch cmd.Op {
	case cdo.OpWrite, cdo.OpWrite64:
		if err := x.port.Write32(cmd.Addr, cmd.Value); err != nil {
			return &IOError{Op: "write32", Addr: cmd.Addr, Err: err}
		}
	case cdo.OpMaskWrite, cdo.OpMaskWrite64:
		if err := x.port.MaskWrite32(cmd.Addr, cmd.Mask, cmd.Value); err != nil {
			return &IOError{Op: "mask_write32", Addr: cmd.Addr, Err: err}
		}
	case cdo.OpDmaWrite:
		if err := x.port.CopyToDevice(cmd.Addr, data); err != nil {
			return &IOError{Op: "copy_to_device", Addr: cmd.Addr, Err: err}
		}
		x.stats.BytesCopied += len(data)
		x.metrics.copied(len(data))
	default:
		return nil
	}
	x.stats.Commands++
	x.metrics.command(cmd.Op)
	return nil
}

// commandError attaches the position of cmd to a failure.
func commandError(cmd cdo.Command, err error) error {
	if err == nil {
		return nil
	}
	return &cdo.CommandError{Offset: cmd.Offset, Opcode: uint32(cmd.Op), Err: err}
}
