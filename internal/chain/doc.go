// Package chain is an in-memory deployment network implementing deploy.Context.
//
// Contract addresses follow the CREATE rule (keccak256(rlp(sender, nonce))),
// so a fresh network with the same accounts always yields the same addresses.
// Every publish and call is confirmed immediately and recorded for inspection.
// Failures can be injected per artifact and per method.
package chain
