package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/dekarrin/moonp"
)

// blockReader reads one MoonScript compilation unit at a time from the
// user: lines accumulate until a blank line is entered, mirroring the
// teacher's DirectCommandReader/InteractiveCommandReader line-at-a-time
// reading but adapted to read whole blocks instead of single commands,
// since a MoonScript snippet is rarely one line.
type blockReader interface {
	ReadBlock() (string, error)
	Close() error
}

type directBlockReader struct {
	r *bufio.Reader
}

func newDirectBlockReader(r io.Reader) *directBlockReader {
	return &directBlockReader{r: bufio.NewReader(r)}
}

func (d *directBlockReader) ReadBlock() (string, error) {
	var lines []string
	for {
		line, err := d.r.ReadString('\n')
		trimmed := strings.TrimRight(line, "\r\n")
		if trimmed != "" {
			lines = append(lines, trimmed)
		}
		if err != nil {
			if err == io.EOF && len(lines) > 0 {
				return strings.Join(lines, "\n"), nil
			}
			return "", err
		}
		if trimmed == "" && len(lines) > 0 {
			return strings.Join(lines, "\n"), nil
		}
	}
}

func (d *directBlockReader) Close() error { return nil }

type interactiveBlockReader struct {
	rl *readline.Instance
}

func newInteractiveBlockReader() (*interactiveBlockReader, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "moonp> ",
		HistoryFile:     "",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("create readline config: %w", err)
	}
	return &interactiveBlockReader{rl: rl}, nil
}

func (ir *interactiveBlockReader) Close() error { return ir.rl.Close() }

func (ir *interactiveBlockReader) ReadBlock() (string, error) {
	var lines []string
	ir.rl.SetPrompt("moonp> ")
	for {
		line, err := ir.rl.Readline()
		trimmed := strings.TrimRight(line, "\r\n")
		if trimmed != "" {
			lines = append(lines, trimmed)
		}
		if err != nil {
			if err == io.EOF && len(lines) > 0 {
				return strings.Join(lines, "\n"), nil
			}
			return "", err
		}
		if trimmed == "" && len(lines) > 0 {
			return strings.Join(lines, "\n"), nil
		}
		ir.rl.SetPrompt("    > ")
	}
}

// runREPL compiles one block at a time, printing its Lua (or diagnostic)
// to out, until the reader reaches EOF.
func runREPL(reader blockReader, opts moonp.Options, out io.Writer) error {
	defer reader.Close()

	for {
		src, err := reader.ReadBlock()
		if err != nil {
			if err == io.EOF || err == readline.ErrInterrupt {
				return nil
			}
			return err
		}

		lua, errMsg, _ := moonp.Compile(src, opts)
		if errMsg != "" {
			fmt.Fprintln(out, errMsg)
			continue
		}
		fmt.Fprintln(out, lua)
	}
}
