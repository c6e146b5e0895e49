package snowflake

import (
	"context"
	"net"
)

// WorkerIDSource supplies a worker identity for this process instance. It
// is consulted once at generator construction, and again whenever the
// minter reassigns a worker id during intolerable clock regression (see
// Minter.NextID).
//
// A WorkerIDSource must return a non-negative value. The minter truncates
// whatever is returned modulo the layout's worker field, so sources are
// free to return wider identifiers (e.g. derived from a 48-bit IP:port
// pair) without being aware of the configured layout.
type WorkerIDSource interface {
	WorkerID(ctx context.Context) (int64, error)
}

// StaticWorkerIDSource always returns the same configured id. Useful for
// single-node deployments and tests where the default network-derived
// source would be noisy or unavailable.
type StaticWorkerIDSource int64

// WorkerID implements WorkerIDSource.
func (s StaticWorkerIDSource) WorkerID(context.Context) (int64, error) {
	return int64(s), nil
}

// LocalAddrWorkerIDSource derives a worker id from this process's local
// IPv4 address and a configured port:
// concatenate the 32-bit address with the 16-bit port into a 48-bit value,
// then truncate to the caller's bit width with a left/right shift pair,
// keeping the low bits (the port and the tail of the address, the parts
// most likely to differ between co-located instances).
type LocalAddrWorkerIDSource struct {
	// Port is concatenated with the local IPv4 address. Callers typically
	// pass the port their service binds to.
	Port uint16
	// Bits is the width, in bits, that the result will be truncated to.
	// It should match the worker field width of the layout in use.
	Bits int
}

// WorkerID implements WorkerIDSource. Returns 0 if no usable non-loopback
// IPv4 address can be found.
func (s LocalAddrWorkerIDSource) WorkerID(context.Context) (int64, error) {
	addr := localIPv4()
	if addr == nil {
		return 0, nil
	}

	ip4 := addr.To4()
	inetPort := int64(ip4[0])<<24 | int64(ip4[1])<<16 | int64(ip4[2])<<8 | int64(ip4[3])
	inetPort = inetPort<<16 | int64(s.Port)

	bits := s.Bits
	if bits <= 0 || bits > 64 {
		bits = 64
	}
	shift := uint(64 - bits)
	return int64(uint64(inetPort<<shift) >> shift), nil
}

// localIPv4 returns the first non-loopback IPv4 address bound to this
// host, or nil if none is found.
func localIPv4() net.IP {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return nil
	}
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() {
			continue
		}
		if ip4 := ipNet.IP.To4(); ip4 != nil {
			return ip4
		}
	}
	return nil
}
