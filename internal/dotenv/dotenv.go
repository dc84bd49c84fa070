// Package dotenv reads KEY=VALUE files into the process environment so
// local development does not require exporting credentials by hand.
package dotenv

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Load reads each given file in order and applies its pairs to the
// process environment. Variables already present in the environment win
// over file values, and earlier files win over later ones. Missing files
// are skipped. With no arguments it loads "./.env".
func Load(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		file, err := os.Open(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("open env file %q: %w", path, err)
		}
		pairs, err := Parse(file)
		file.Close()
		if err != nil {
			return fmt.Errorf("parse env file %q: %w", path, err)
		}
		for key, val := range pairs {
			if _, exists := os.LookupEnv(key); exists {
				continue
			}
			if err := os.Setenv(key, val); err != nil {
				return fmt.Errorf("set env %q from %q: %w", key, path, err)
			}
		}
	}
	return nil
}

// Parse reads dotenv-style lines from r and returns the key/value pairs.
// Blank lines and #-comments are ignored, a leading "export " is
// tolerated, and matching single or double quotes around a value are
// removed. Unquoted values keep everything after the first "=" with
// surrounding whitespace trimmed.
func Parse(r io.Reader) (map[string]string, error) {
	pairs := make(map[string]string)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		key, val, ok := splitLine(scanner.Text())
		if !ok {
			continue
		}
		pairs[key] = val
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return pairs, nil
}

func splitLine(line string) (key, val string, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false
	}
	line = strings.TrimPrefix(line, "export ")

	key, val, found := strings.Cut(line, "=")
	if !found {
		return "", "", false
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", "", false
	}
	return key, unquote(strings.TrimSpace(val)), true
}

func unquote(val string) string {
	if len(val) < 2 {
		return val
	}
	first, last := val[0], val[len(val)-1]
	if first == last && (first == '"' || first == '\'') {
		return val[1 : len(val)-1]
	}
	return val
}
