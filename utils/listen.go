package utils

import (
	"fmt"
	"net"
)

// CheckListenAddr reports whether addr can be bound right now. It is used
// before daemonizing so bind errors reach the terminal instead of a log file.
func CheckListenAddr(addr string) error {
	Verbose("Checking if %s is available", addr)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("cannot listen on %s: %w", addr, err)
	}

	return listener.Close()
}
