package ipc

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Command names on the wire
const (
	CmdBroadcast = "broadcast"
	CmdSet       = "set"
	CmdGet       = "get"
	CmdToggle    = "toggle"
	CmdClick     = "click"
	CmdLongClick = "longclick"
	CmdRebuild   = "rebuild"
	CmdPing      = "ping"
)

var ErrEmptyCommand = errors.New("empty command")

// Command is one parsed request line
type Command struct {
	Name   string
	Action string
	Extras map[string]string
	Key    string
	Value  string
	Index  int
}

// ParseCommand parses a request line. The value of "set" is the rest of the
// line, so it may contain spaces or be empty.
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, ErrEmptyCommand
	}

	cmd := Command{Name: strings.ToLower(fields[0])}
	args := fields[1:]

	switch cmd.Name {
	case CmdBroadcast:
		if len(args) == 0 {
			return cmd, fmt.Errorf("%s: missing action", cmd.Name)
		}
		cmd.Action = args[0]
		cmd.Extras = make(map[string]string, len(args)-1)
		for _, kv := range args[1:] {
			k, v, ok := strings.Cut(kv, "=")
			if !ok || k == "" {
				return cmd, fmt.Errorf("%s: extra %q is not key=value", cmd.Name, kv)
			}
			cmd.Extras[k] = v
		}

	case CmdSet:
		if len(args) == 0 {
			return cmd, fmt.Errorf("%s: usage: set <key> [value]", cmd.Name)
		}
		cmd.Key = args[0]
		rest := strings.TrimSpace(line)
		rest = strings.TrimSpace(rest[len(fields[0]):])
		cmd.Value = strings.TrimSpace(rest[len(cmd.Key):])

	case CmdGet:
		if len(args) != 1 {
			return cmd, fmt.Errorf("%s: usage: get <key>", cmd.Name)
		}
		cmd.Key = args[0]

	case CmdClick, CmdLongClick:
		if len(args) != 1 {
			return cmd, fmt.Errorf("%s: usage: %s <index>", cmd.Name, cmd.Name)
		}
		index, err := strconv.Atoi(args[0])
		if err != nil || index < 0 {
			return cmd, fmt.Errorf("%s: invalid index %q", cmd.Name, args[0])
		}
		cmd.Index = index

	case CmdToggle, CmdRebuild, CmdPing:
		if len(args) != 0 {
			return cmd, fmt.Errorf("%s takes no arguments", cmd.Name)
		}

	default:
		return cmd, fmt.Errorf("unknown command %q", fields[0])
	}

	return cmd, nil
}

// String formats the command as a request line
func (c Command) String() string {
	switch c.Name {
	case CmdBroadcast:
		parts := []string{c.Name, c.Action}
		keys := make([]string, 0, len(c.Extras))
		for k := range c.Extras {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			parts = append(parts, k+"="+c.Extras[k])
		}
		return strings.Join(parts, " ")
	case CmdSet:
		if c.Value == "" {
			return c.Name + " " + c.Key
		}
		return c.Name + " " + c.Key + " " + c.Value
	case CmdGet:
		return c.Name + " " + c.Key
	case CmdClick, CmdLongClick:
		return c.Name + " " + strconv.Itoa(c.Index)
	default:
		return c.Name
	}
}

// Reply lines
const (
	replyOK    = "ok"
	replyError = "error"
)

func okReply(detail string) string {
	if detail == "" {
		return replyOK
	}
	return replyOK + " " + detail
}

func errorReply(err error) string {
	return replyError + " " + strings.ReplaceAll(err.Error(), "\n", " ")
}

// ParseReply splits a reply line into its detail or an error
func ParseReply(line string) (string, error) {
	line = strings.TrimSpace(line)
	switch {
	case line == replyOK:
		return "", nil
	case strings.HasPrefix(line, replyOK+" "):
		return strings.TrimPrefix(line, replyOK+" "), nil
	case strings.HasPrefix(line, replyError):
		msg := strings.TrimSpace(strings.TrimPrefix(line, replyError))
		if msg == "" {
			msg = "unknown error"
		}
		return "", errors.New(msg)
	default:
		return "", fmt.Errorf("malformed reply %q", line)
	}
}
