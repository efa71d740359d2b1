package scan

import (
	"fmt"
	"net"
)

// RangeSize returns the number of addresses in the inclusive IPv4 range
// [startIP, endIP]. It returns ErrInvalidIPRange (wrapped with detail) when
// either bound is not an IPv4 address or the bounds are reversed.
func RangeSize(startIP, endIP string) (int, error) {
	start := net.ParseIP(startIP)
	if start = start.To4(); start == nil {
		return 0, fmt.Errorf("%w: start %q is not an IPv4 address", ErrInvalidIPRange, startIP)
	}
	end := net.ParseIP(endIP)
	if end = end.To4(); end == nil {
		return 0, fmt.Errorf("%w: end %q is not an IPv4 address", ErrInvalidIPRange, endIP)
	}

	s := ipv4ToUint(start)
	e := ipv4ToUint(end)
	if e < s {
		return 0, fmt.Errorf("%w: %s is after %s", ErrInvalidIPRange, startIP, endIP)
	}

	return int(e-s) + 1, nil
}

func ipv4ToUint(ip net.IP) uint32 {
	return uint32(ip[0])<<24 | uint32(ip[1])<<16 | uint32(ip[2])<<8 | uint32(ip[3])
}
