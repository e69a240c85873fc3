// Package config loads deployment target files.
//
// A target names the network, the funded accounts (listed, or derived from a
// seed on the simulated network) and the profile, with optional per-field
// overrides. Files are read by extension: .yaml/.yml, .toml or .cue.
//
//	network: devnet
//	profile: v3
//	accounts:
//	  - 0xeD3de2395531838d449416f8853f9193F2dD8D86
//	bound1: 1700
//	bound2: 2000
package config
