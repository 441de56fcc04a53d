package protect

import (
	"net"
	"testing"

	"github.com/nalgeon/be"
)

func TestIsPrivateIP(t *testing.T) {
	tests := []struct {
		ip   string
		want bool
	}{
		{"127.0.0.1", true},
		{"10.1.2.3", true},
		{"172.16.0.1", true},
		{"192.168.1.1", true},
		{"169.254.0.1", true},
		{"::1", true},
		{"8.8.8.8", false},
		{"1.1.1.1", false},
	}
	for _, tt := range tests {
		be.Equal(t, IsPrivateIP(net.ParseIP(tt.ip)), tt.want)
	}
}

func TestReplaceHostToIP_RejectsLoopback(t *testing.T) {
	_, err := ReplaceHostToIP("127.0.0.1:80")
	be.Err(t, err, ErrSSRF)
}
