// Package loader executes CDO command streams against hardware.
//
// # Overview
//
// Two engines are provided:
//   - DirectEngine walks an original (untransformed) CDO held entirely in memory
//   - StreamEngine executes a transformed image through a small fixed-size cache,
//     refilling it from the command zone and carrying any record cut by a chunk
//     boundary into the next refill
//
// Both engines issue identical hardware calls for equivalent input. Hardware
// access goes through the IOPort interface; see package ioport for
// implementations.
//
// # Basic Usage
//
//	img, err := transform.Encode(cdoBytes)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	eng, err := loader.NewStreamEngine(port, 4096)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := eng.LoadImage(img); err != nil {
//	    log.Fatal(err)
//	}
//
// # Cache Sizing
//
// The cache must hold at least one group header plus the largest record body
// (MinCacheCapacity bytes). Larger caches mean fewer refills; the result is the
// same for every capacity.
//
// # Stream Engine States
//
//	Idle -> StreamingChunk -> ExecutingGroup | AwaitingHeader -> Draining -> Done
//
// Any error moves the engine to Failed. An end record moves it straight to Done.
//
// # Progress Tracking
//
//	eng, _ := loader.NewStreamEngine(port, 4096,
//	    loader.WithProgressCallback(func(p loader.Progress) {
//	        fmt.Printf("[%s] %.1f%% - %d refills\n", p.Phase, p.Percentage, p.Refills)
//	    }),
//	)
//
// # Zero Runs
//
// DMA records flagged as all-zero are still copied unless the caller asserts the
// destination memory is already zeroed:
//
//	eng, _ := loader.NewStreamEngine(port, 4096, loader.WithTrustZeroedMemory(true))
package loader
