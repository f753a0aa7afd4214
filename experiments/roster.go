package experiments

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Entry is one participant: a display name and the command that plays it.
type Entry struct {
	Name    string
	Command string
}

type Roster []Entry

func (r Roster) Names() []string {
	names := make([]string, len(r))
	for i, e := range r {
		names[i] = e.Name
	}
	return names
}

// ReadLines returns the trimmed lines of path, skipping blank lines and
// lines starting with '#'.
func ReadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return lines, nil
}

// LoadRoster pairs the names file with the commands file line by line.
func LoadRoster(namesPath, commandsPath string) (Roster, error) {
	names, err := ReadLines(namesPath)
	if err != nil {
		return nil, err
	}
	commands, err := ReadLines(commandsPath)
	if err != nil {
		return nil, err
	}
	if len(names) != len(commands) {
		return nil, fmt.Errorf("roster has %d names but %d commands", len(names), len(commands))
	}
	roster := make(Roster, len(names))
	for i := range names {
		roster[i] = Entry{Name: names[i], Command: commands[i]}
	}
	return roster, nil
}
