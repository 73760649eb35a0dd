package netutil

import (
	"fmt"
	"net"

	"github.com/fleetward/fleetward/internal/domain"
)

// ListenTCP creates a TCP listener on the specified host and port. If port
// is 0 the OS assigns one; the actual port is returned either way.
func ListenTCP(host string, port int) (net.Listener, int, error) {
	addr := fmt.Sprintf("%s:%d", host, port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, 0, domain.NewLifecycleError("netutil", "listen "+addr, err)
	}

	actualPort := listener.Addr().(*net.TCPAddr).Port
	return listener, actualPort, nil
}
