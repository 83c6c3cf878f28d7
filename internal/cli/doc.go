// SPDX-License-Identifier: EPL-2.0

// Package cli implements the audingest command:
//
//	audingest decode FILE... [-o DIR] [--bit-depth 16|24|32] [--workers N] [--force]
//	audingest probe FILE...
//	audingest formats
//	audingest version
//
// Settings come from the config file, then AUDINGEST_* environment
// variables, then flags.
package cli
