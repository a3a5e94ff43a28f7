package envfile

import (
	"bufio"
	"io"
	"strings"
)

// ParseEnvVars reads back a descriptor written by WriteDescriptor. The
// grammar is deliberately narrow: blank lines and # comments are
// skipped, everything else must be an `export KEY=value` line whose
// value may be double-quoted (paths with spaces). Lines that are not
// exports are ignored so a hand-annotated descriptor still loads.
func ParseEnvVars(r io.Reader) (map[string]string, error) {
	env := make(map[string]string)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rest, ok := strings.CutPrefix(line, "export ")
		if !ok {
			continue
		}
		key, val, ok := strings.Cut(rest, "=")
		if !ok {
			continue
		}
		env[strings.TrimSpace(key)] = unquote(strings.TrimSpace(val))
	}
	return env, scanner.Err()
}

func unquote(val string) string {
	if len(val) >= 2 && val[0] == '"' && val[len(val)-1] == '"' {
		return val[1 : len(val)-1]
	}
	return val
}
