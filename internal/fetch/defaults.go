package fetch

// Fallback values used when neither the caller nor the config supplies one.
const (
	DefaultMultiaddr  = "/ip4/127.0.0.1/tcp/5001"
	DefaultTimeoutSec = 1
)

// Defaults holds the content-store address and timeout substituted for
// empty caller values.
type Defaults struct {
	Multiaddr  string
	TimeoutSec uint64
}

// NewDefaults returns Defaults populated with the built-in fallbacks.
func NewDefaults() Defaults {
	return Defaults{Multiaddr: DefaultMultiaddr, TimeoutSec: DefaultTimeoutSec}
}

// Resolve picks the effective address and timeout: caller values win unless
// the address is empty or the timeout is zero.
func (d Defaults) Resolve(address string, timeoutSec uint64) (string, uint64) {
	if address == "" {
		address = d.Multiaddr
		if address == "" {
			address = DefaultMultiaddr
		}
	}
	if timeoutSec == 0 {
		timeoutSec = d.TimeoutSec
		if timeoutSec == 0 {
			timeoutSec = DefaultTimeoutSec
		}
	}
	return address, timeoutSec
}
