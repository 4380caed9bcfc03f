package fetch

import "strconv"

// BuildArgs appends the timeout and API flags to base, always as
// "--timeout <n>s --api <address>". base is not modified.
func BuildArgs(base []string, address string, timeoutSec uint64) []string {
	out := make([]string, 0, len(base)+4)
	out = append(out, base...)
	return append(out, "--timeout", TimeoutString(timeoutSec), "--api", address)
}

// TimeoutString formats seconds the way the ipfs CLI expects ("5s").
func TimeoutString(sec uint64) string {
	return strconv.FormatUint(sec, 10) + "s"
}

// DagGetArgs returns the full argument list for fetching identifier.
func DagGetArgs(identifier, address string, timeoutSec uint64) []string {
	return BuildArgs([]string{"dag", "get", identifier}, address, timeoutSec)
}
