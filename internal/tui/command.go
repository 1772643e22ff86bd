package tui

import (
	"fmt"
	"strings"
)

// Command represents a parsed command.
type Command struct {
	Name string
	Args string
}

// ParseCommand parses a command string (without the leading ':').
func ParseCommand(input string) Command {
	input = strings.TrimSpace(input)
	parts := strings.SplitN(input, " ", 2)
	cmd := Command{Name: strings.ToLower(parts[0])}
	if len(parts) > 1 {
		cmd.Args = strings.TrimSpace(parts[1])
	}
	return cmd
}

// Nickname splits ":nick <jid> <name>" arguments. The name may contain spaces.
func (c Command) Nickname() (jid, name string, err error) {
	jid, name, _ = strings.Cut(c.Args, " ")
	name = strings.TrimSpace(name)
	if jid == "" || name == "" {
		return "", "", fmt.Errorf("usage: :%s <jid> <nickname>", c.Name)
	}
	return jid, name, nil
}
