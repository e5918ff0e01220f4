// Package config reads the voltage offset configuration file.
//
// The file holds one "key: value" setting per line. '#' starts a comment that
// runs to the end of the line; a '#' before the first ':' disables the whole
// line. Keys are matched by substring against the plane keys (see
// voltage.MatchKey) and values are millivolt offsets such as "-80", "+12.5"
// or " -50.0 ". Bad lines produce a Warning and are skipped; the last valid
// line for a plane wins.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/intel-msr-voltages/intel-msr-voltages/pkg/types"
	"github.com/intel-msr-voltages/intel-msr-voltages/pkg/voltage"
)

// DefaultPath is where the configuration is read from unless overridden.
const DefaultPath = "/etc/intel-msr-voltages.conf"

// EnvPath overrides DefaultPath when set.
const EnvPath = "INTEL_MSR_VOLTAGES_CONFIG"

// Path returns the configuration path from the environment, falling back to
// DefaultPath.
func Path() string {
	if p := strings.TrimSpace(os.Getenv(EnvPath)); p != "" {
		return p
	}
	return DefaultPath
}

// Warning describes a configuration line that was skipped.
type Warning struct {
	Line  int    // 1-based line number
	Key   string // text before the first ':'
	Value string // text between ':' and the first '#'
	Err   error  // ErrInvalidValueSyntax or ErrUnrecognizedKey
}

func (w Warning) Error() string {
	switch {
	case errors.Is(w.Err, ErrUnrecognizedKey):
		return fmt.Sprintf("line %d: key '%s' not recognized", w.Line, strings.TrimSpace(w.Key))
	default:
		return fmt.Sprintf("line %d: invalid voltage '%s' for '%s'",
			w.Line, strings.TrimSpace(w.Value), strings.TrimSpace(w.Key))
	}
}

func (w Warning) Unwrap() error { return w.Err }

// Parse reads the configuration file at path.
// A missing file returns ErrConfigNotFound; other I/O failures return
// ErrConfigUnreadable. Per-line problems are returned as warnings.
func Parse(path string) (voltage.Setting, []Warning, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return voltage.Setting{}, nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return voltage.Setting{}, nil, fmt.Errorf("%w: %s: %v", ErrConfigUnreadable, path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	st, err := f.Stat()
	if err == nil && st.IsDir() {
		return voltage.Setting{}, nil, fmt.Errorf("%w: %s is a directory", ErrConfigUnreadable, path)
	}

	s, warns, err := ParseReader(f)
	if err != nil {
		return voltage.Setting{}, warns, fmt.Errorf("%s: %w", path, err)
	}
	return s, warns, nil
}

// ParseReader parses configuration text from r.
// Lines may be of any length; only a read error from r is fatal.
func ParseReader(r io.Reader) (voltage.Setting, []Warning, error) {
	var (
		s     voltage.Setting
		warns []Warning
		n     int
		br    = bufio.NewReader(r)
	)
	for {
		line, err := br.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return s, warns, fmt.Errorf("%w: %v", ErrConfigUnreadable, err)
		}
		if line == "" && err != nil {
			break
		}
		n++
		if w, ok := parseLine(&s, n, line); !ok {
			warns = append(warns, w)
		}
		if err != nil {
			break
		}
	}
	return s, warns, nil
}

// parseLine applies one configuration line to s. ok is false when the line
// carries a setting that could not be used; w then says why.
func parseLine(s *voltage.Setting, n int, line string) (w Warning, ok bool) {
	key, value, found := splitLine(line)
	if !found {
		return Warning{}, true
	}

	mv, err := parseVoltage(value)
	if err != nil {
		return Warning{Line: n, Key: key, Value: value, Err: err}, false
	}

	p, found := voltage.MatchKey(key)
	if !found {
		return Warning{Line: n, Key: key, Value: value, Err: ErrUnrecognizedKey}, false
	}
	s.Set(p, mv)
	return Warning{}, true
}

// splitLine returns the key and value of a setting line, or ok=false for
// lines that carry no setting: blank, comment, no ':' or a '#' before ':'.
func splitLine(line string) (key, value string, ok bool) {
	line = strings.TrimRight(line, "\r\n")
	if line == "" || line[0] == '#' {
		return "", "", false
	}
	colon := strings.IndexByte(line, ':')
	if colon < 0 {
		return "", "", false
	}
	if hash := strings.IndexByte(line, '#'); hash >= 0 && hash < colon {
		return "", "", false
	}
	key, value = line[:colon], line[colon+1:]
	if hash := strings.IndexByte(value, '#'); hash >= 0 {
		value = value[:hash]
	}
	return key, value, true
}

// validVoltage reports whether v has at least one digit, at most one '.',
// and nothing but digits, '.', signs and whitespace.
func validVoltage(v string) bool {
	digits, points := 0, 0
	for _, r := range v {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.':
			points++
		case r == '+' || r == '-':
		case unicode.IsSpace(r):
		default:
			return false
		}
	}
	return digits > 0 && points <= 1
}

// parseVoltage converts a value field to millivolts. Surrounding whitespace
// is ignored; whitespace inside the number ("80. 86") is rejected rather than
// silently truncated.
func parseVoltage(v string) (types.Millivolts, error) {
	if !validVoltage(v) {
		return 0, ErrInvalidValueSyntax
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, ErrInvalidValueSyntax
	}
	return types.Millivolts(f), nil
}

// WriteSummary prints one line per configured plane.
func WriteSummary(w io.Writer, s voltage.Setting) {
	for _, p := range s.Configured() {
		mv, _ := s.Get(p)
		fmt.Fprintf(w, "voltage plane index: %d (%s) | voltage offset: %fmV\n", p.Index(), p, float64(mv))
	}
}
