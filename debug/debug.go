// Package debug gates diagnostic logging behind TREECONF_DEBUG_*
// environment variables.
package debug

import (
	"os"
	"strconv"
)

type debug struct {
	Track  bool
	Patch  bool
	Reload bool
	RPC    bool
}

var d *debug

func init() {
	d = &debug{}
	d.Track = boolEnv("TREECONF_DEBUG_TRACK")
	d.Patch = boolEnv("TREECONF_DEBUG_PATCH")
	d.Reload = boolEnv("TREECONF_DEBUG_RELOAD")
	d.RPC = boolEnv("TREECONF_DEBUG_RPC")
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

func Track() bool {
	return d.Track
}
func Patch() bool {
	return d.Patch
}
func Reload() bool {
	return d.Reload
}
func RPC() bool {
	return d.RPC
}
