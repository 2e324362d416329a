package ipc

import (
	"bufio"
	"fmt"
	"net"
	"time"
)

// DefaultTimeout bounds a whole request on the client side
const DefaultTimeout = 5 * time.Second

// Send writes line to the server at socketPath and returns the reply detail.
// An "error" reply is returned as an error.
func Send(socketPath, line string, timeout time.Duration) (string, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	conn, err := net.DialTimeout("unix", socketPath, timeout)
	if err != nil {
		return "", fmt.Errorf("failed to connect to %s: %w", socketPath, err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(timeout))

	if _, err := conn.Write([]byte(line + "\n")); err != nil {
		return "", fmt.Errorf("failed to send message: %w", err)
	}

	reply, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil && reply == "" {
		return "", fmt.Errorf("failed to read reply: %w", err)
	}
	return ParseReply(reply)
}

// SendCommand sends a parsed command
func SendCommand(socketPath string, cmd Command, timeout time.Duration) (string, error) {
	return Send(socketPath, cmd.String(), timeout)
}
