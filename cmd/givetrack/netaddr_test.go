package main

import (
	"net"
	"testing"
)

func ipNet(s string) *net.IPNet {
	ip, n, _ := net.ParseCIDR(s)
	n.IP = ip
	return n
}

func TestFirstIPv4(t *testing.T) {
	tests := []struct {
		name  string
		addrs []net.Addr
		want  string
	}{
		{"empty", nil, "localhost"},
		{"loopback only", []net.Addr{ipNet("127.0.0.1/8"), ipNet("::1/128")}, "localhost"},
		{"skips ipv6", []net.Addr{ipNet("127.0.0.1/8"), ipNet("fe80::1/64"), ipNet("192.168.1.20/24")}, "192.168.1.20"},
		{"first wins", []net.Addr{ipNet("10.0.0.5/8"), ipNet("192.168.1.20/24")}, "10.0.0.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := firstIPv4(tt.addrs); got != tt.want {
				t.Errorf("firstIPv4() = %q, want %q", got, tt.want)
			}
		})
	}
}
