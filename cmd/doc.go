// Package cmd implements the command line interface of the GridKV client.
// Each subcommand lives in its own subpackage, shared flag handling and
// configuration loading live in cmd/util.
package cmd
