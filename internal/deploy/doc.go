// Package deploy sequences the publication of the MarketRegistry and Market
// contracts and the optional initialization of Market.
//
// A run is an ordered pipeline of stages:
//
//	accounts   resolve the funded accounts; accounts[0] is the sender
//	registry   publish MarketRegistry
//	market     publish Market
//	initiate   call Market.initiate with the registry address (profile dependent)
//
// Each stage is a function from the previous State to the next State. The
// Runner executes them strictly in order and stops at the first error. There
// is no retry and no rollback: publishing again after a partial failure would
// produce a new contract address, so failures are surfaced to the caller.
//
// Network access goes through the Context interface. The chain package
// provides a deterministic in-memory implementation.
package deploy
