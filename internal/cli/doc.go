// Package cli implements the mktdeploy command tree.
//
// Every command honours the global --format flag: text output is meant for
// people, json output wraps the payload in a {status, data|error} envelope
// and keeps stdout free of anything else. Commands return *ExitError so the
// binary can map failures to exit codes.
package cli
