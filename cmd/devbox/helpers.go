package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/johndanger/developer-toolbox/catalog"
)

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "/tmp/devbox"
	}
	return filepath.Join(home, ".local", "state", "devbox")
}

func defaultLogFile() string {
	return filepath.Join(defaultStateDir(), "devbox.log")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "/root"
	}
	return home
}

// promptSelection prints a numbered component list and reads one selection
// line from r. Entries may be numbers or names, comma or space separated.
func promptSelection(w io.Writer, r io.Reader) (string, error) {
	components := catalog.Components
	for i, c := range components {
		kind := "terminal"
		if c.GUI() {
			kind = "GUI"
		}
		fmt.Fprintf(w, "%2d) %-10s %s (%s)\n", i+1, c.ID, c.DisplayName, kind)
	}
	fmt.Fprintf(w, "Select components (numbers or names, empty for all): ")

	text, err := bufio.NewReader(r).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("couldn't read from stdin: %w", err)
	}
	fields := strings.FieldsFunc(strings.TrimSpace(text), func(r rune) bool {
		return r == ',' || r == ' '
	})
	var tokens []string
	for _, f := range fields {
		if n, err := strconv.Atoi(f); err == nil && n >= 1 && n <= len(components) {
			tokens = append(tokens, components[n-1].ID)
			continue
		}
		tokens = append(tokens, f)
	}
	return strings.Join(tokens, ","), nil
}
