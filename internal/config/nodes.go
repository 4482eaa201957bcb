package config

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/rileyhilliard/pingnodes/internal/errors"
)

// LoadNodes reads a node list file: one address per line, blank lines and
// lines starting with # ignored.
func LoadNodes(path string) ([]string, error) {
	f, err := os.Open(ExpandTilde(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Node list not found: "+path,
				"Pass a file with one address per line to --nodes")
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Can't read node list "+path,
			"Check file permissions")
	}
	defer f.Close()

	nodes, err := ParseNodes(f)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Can't read node list "+path, "")
	}
	return nodes, nil
}

// ParseNodes returns the addresses in r in file order. Inline comments
// after an address are stripped too.
func ParseNodes(r io.Reader) ([]string, error) {
	var nodes []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		nodes = append(nodes, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return nodes, nil
}
