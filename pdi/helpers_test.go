package pdi

import "github.com/moffa90/go-aiecdo/loader"

// MinTestCapacity is the smallest cache the loader accepts.
const MinTestCapacity = loader.MinCacheCapacity

func loaderTrust(trust bool) []loader.Option {
	return []loader.Option{loader.WithTrustZeroedMemory(trust)}
}
