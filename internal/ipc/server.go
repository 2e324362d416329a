package ipc

import (
	"bufio"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"sync"
	"time"
)

// Commands is what the control channel drives
type Commands interface {
	Broadcast(action string, extras map[string]string) int
	Set(key, value string) error
	Get(key string) (string, bool)
	ToggleVisibility()
	Click(index int, long bool)
	Rebuild()
}

// Server accepts one request line per connection on a unix socket and
// writes back one reply line.
type Server struct {
	socketPath string
	commands   Commands

	mu       sync.Mutex
	listener net.Listener
	running  bool
	wg       sync.WaitGroup
}

// NewServer creates a server for socketPath
func NewServer(socketPath string, commands Commands) *Server {
	return &Server{
		socketPath: socketPath,
		commands:   commands,
	}
}

// SocketPath returns the socket the server listens on
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Start listens on the socket, replacing a stale socket file
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("IPC server already running")
	}

	if _, err := os.Stat(s.socketPath); err == nil {
		os.Remove(s.socketPath)
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create socket listener: %w", err)
	}

	s.listener = listener
	s.running = true

	log.Printf("[IPC] Listening on %s", s.socketPath)

	s.wg.Add(1)
	go s.acceptConnections()

	return nil
}

func (s *Server) isRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Server) acceptConnections() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if !s.isRunning() || errors.Is(err, net.ErrClosed) {
				return
			}
			log.Printf("[IPC] Error accepting connection: %v", err)
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConnection(conn)
		}()
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(5 * time.Second))

	reader := bufio.NewReader(conn)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		log.Printf("[IPC] Error reading from connection: %v", err)
		return
	}

	log.Printf("[IPC] Received: %s", line)

	reply := s.Handle(line)
	if _, err := conn.Write([]byte(reply + "\n")); err != nil {
		log.Printf("[IPC] Error writing reply: %v", err)
	}
}

// Handle executes one request line and returns the reply line
func (s *Server) Handle(line string) string {
	cmd, err := ParseCommand(line)
	if err != nil {
		return errorReply(err)
	}

	detail, err := s.execute(cmd)
	if err != nil {
		return errorReply(err)
	}
	return okReply(detail)
}

func (s *Server) execute(cmd Command) (string, error) {
	switch cmd.Name {
	case CmdBroadcast:
		n := s.commands.Broadcast(cmd.Action, cmd.Extras)
		return strconv.Itoa(n), nil
	case CmdSet:
		return "", s.commands.Set(cmd.Key, cmd.Value)
	case CmdGet:
		v, ok := s.commands.Get(cmd.Key)
		if !ok {
			return "", fmt.Errorf("%s is not set", cmd.Key)
		}
		return v, nil
	case CmdToggle:
		s.commands.ToggleVisibility()
	case CmdClick:
		s.commands.Click(cmd.Index, false)
	case CmdLongClick:
		s.commands.Click(cmd.Index, true)
	case CmdRebuild:
		s.commands.Rebuild()
	case CmdPing:
		return "pong", nil
	}
	return "", nil
}

// Stop closes the listener, waits for open connections and removes the
// socket file.
func (s *Server) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	err := s.listener.Close()
	s.mu.Unlock()

	s.wg.Wait()

	if _, statErr := os.Stat(s.socketPath); statErr == nil {
		os.Remove(s.socketPath)
	}

	log.Println("[IPC] Server stopped")
	return err
}
