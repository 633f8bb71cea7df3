package frontend

import (
	"fmt"
	"strconv"
	"strings"
)

type CommandType string

const (
	CmdChoice       CommandType = "choice"
	CmdReload       CommandType = "reload"
	CmdSetAttribute CommandType = "set_attribute"
)

// SourceKind says where a reload reads its catalog from.
type SourceKind string

const (
	SourceDefault SourceKind = "default" // the built-in catalog
	SourcePath    SourceKind = "path"
	SourceRaw     SourceKind = "raw" // inline catalog text
)

// DataSource names the catalog a reload should read.
type DataSource struct {
	Kind SourceKind
	Path string
	Raw  string
}

func (d DataSource) String() string {
	switch d.Kind {
	case SourcePath:
		return d.Path
	case SourceRaw:
		return fmt.Sprintf("inline catalog (%d bytes)", len(d.Raw))
	}
	return "built-in catalog"
}

// Command is a message from the presentation layer: a choice or an
// administrative command.
type Command struct {
	Type      CommandType
	Index     int        // choice
	Source    DataSource // reload
	Attribute string     // set_attribute
	Value     int        // set_attribute
}

func Choice(index int) Command { return Command{Type: CmdChoice, Index: index} }

func Reload(src DataSource) Command { return Command{Type: CmdReload, Source: src} }

func SetAttribute(name string, value int) Command {
	return Command{Type: CmdSetAttribute, Attribute: name, Value: value}
}

func (c Command) String() string {
	switch c.Type {
	case CmdChoice:
		return fmt.Sprintf("choice %d", c.Index)
	case CmdReload:
		return "reload " + c.Source.String()
	case CmdSetAttribute:
		return fmt.Sprintf("set %s %d", c.Attribute, c.Value)
	}
	return string(c.Type)
}

// ParseCommand parses a line typed into a console. Plain numbers choose an
// option (1-based). Administrative commands start with a colon:
//
//	:reload default
//	:reload <path>
//	:set <attribute> <value>
func ParseCommand(input string) (Command, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return Command{}, fmt.Errorf("empty command")
	}

	if !strings.HasPrefix(trimmed, ":") {
		n, err := strconv.Atoi(trimmed)
		if err != nil || n < 1 {
			return Command{}, fmt.Errorf("%q is not an option number", trimmed)
		}
		return Choice(n - 1), nil
	}

	fields := strings.Fields(trimmed[1:])
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("empty command")
	}
	switch strings.ToLower(fields[0]) {
	case "reload", "r":
		if len(fields) != 2 {
			return Command{}, fmt.Errorf("usage: :reload default|<path>")
		}
		if fields[1] == "default" {
			return Reload(DataSource{Kind: SourceDefault}), nil
		}
		return Reload(DataSource{Kind: SourcePath, Path: fields[1]}), nil
	case "set", "s":
		if len(fields) != 3 {
			return Command{}, fmt.Errorf("usage: :set <attribute> <value>")
		}
		v, err := strconv.Atoi(fields[2])
		if err != nil {
			return Command{}, fmt.Errorf("attribute value must be a whole number: %q", fields[2])
		}
		return SetAttribute(fields[1], v), nil
	}
	return Command{}, fmt.Errorf("unknown command %q", fields[0])
}
