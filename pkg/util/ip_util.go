package util

import (
	"fmt"
	"net/netip"
)

// reserved is kept for the emulator's own management addresses.
var reserved = netip.MustParsePrefix("192.168.10.0/24")

// CheckHostPrefix verifies that p can be assigned to a host interface:
// IPv4, a mask between /8 and /32, not the network or broadcast address
// of its subnet and outside the reserved range.
func CheckHostPrefix(p netip.Prefix) error {
	if !p.IsValid() {
		return fmt.Errorf("invalid prefix %v", p)
	}
	addr := p.Addr()
	if !addr.Is4() {
		return fmt.Errorf("%s: only IPv4 addresses are supported", p)
	}
	if p.Bits() < 8 {
		return fmt.Errorf("%s: mask shorter than /8", p)
	}
	if reserved.Contains(addr) {
		return fmt.Errorf("%s: %s is reserved", p, reserved)
	}
	if p.Bits() >= 31 {
		return nil
	}
	if addr == p.Masked().Addr() {
		return fmt.Errorf("%s: network address", p)
	}
	if addr == Broadcast(p) {
		return fmt.Errorf("%s: broadcast address", p)
	}
	return nil
}

// Broadcast returns the last address of the IPv4 subnet of p.
func Broadcast(p netip.Prefix) netip.Addr {
	b := p.Masked().Addr().As4()
	host := uint32(1)<<(32-p.Bits()) - 1
	v := (uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])) | host
	return netip.AddrFrom4([4]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)})
}
