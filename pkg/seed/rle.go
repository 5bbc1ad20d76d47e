package seed

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// Shape is a small row-major pattern of 0/1 cells.
type Shape struct {
	W, H  int
	Cells []uint8
}

// Live counts the live cells of the shape.
func (s Shape) Live() int {
	n := 0
	for _, c := range s.Cells {
		if c != 0 {
			n++
		}
	}
	return n
}

// ParseRLE reads a pattern in run length encoded form:
//
//	#C optional comments
//	x = 3, y = 3, rule = B3/S23
//	bo$2bo$3o!
func ParseRLE(r io.Reader) (Shape, error) {
	sc := bufio.NewScanner(r)
	var s Shape
	header := false
	var body strings.Builder
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !header {
			w, h, err := parseHeader(line)
			if err != nil {
				return Shape{}, err
			}
			s = Shape{W: w, H: h, Cells: make([]uint8, w*h)}
			header = true
			continue
		}
		body.WriteString(line)
		if strings.Contains(line, "!") {
			break
		}
	}
	if err := sc.Err(); err != nil {
		return Shape{}, fmt.Errorf("seed: read rle: %w", err)
	}
	if !header {
		return Shape{}, fmt.Errorf("seed: rle header missing")
	}
	if err := s.decode(body.String()); err != nil {
		return Shape{}, err
	}
	return s, nil
}

func parseHeader(line string) (w, h int, err error) {
	w, h = -1, -1
	for _, field := range strings.Split(line, ",") {
		key, value, ok := strings.Cut(field, "=")
		if !ok {
			return 0, 0, fmt.Errorf("seed: bad rle header field %q", field)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		switch key {
		case "x":
			w, err = strconv.Atoi(value)
		case "y":
			h, err = strconv.Atoi(value)
		}
		if err != nil {
			return 0, 0, fmt.Errorf("seed: rle header %s: %w", key, err)
		}
	}
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("seed: rle header %q needs positive x and y", line)
	}
	return w, h, nil
}

func (s *Shape) decode(body string) error {
	x, y, run := 0, 0, 0
	for _, c := range body {
		switch {
		case c >= '0' && c <= '9':
			run = run*10 + int(c-'0')
			continue
		case c == ' ' || c == '\t':
			continue
		case c == '!':
			return nil
		}
		n := run
		if n == 0 {
			n = 1
		}
		run = 0
		switch c {
		case '$':
			y += n
			x = 0
		case 'b', '.':
			x += n
		default:
			// o, and any other state letter, is alive.
			if x+n > s.W || y >= s.H {
				return fmt.Errorf("seed: rle cells at (%d,%d) exceed %dx%d", x+n-1, y, s.W, s.H)
			}
			for i := 0; i < n; i++ {
				s.Cells[y*s.W+x+i] = 1
			}
			x += n
		}
	}
	return nil
}

var builtins = map[string]string{
	"glider":  "x = 3, y = 3\nbo$2bo$3o!",
	"blinker": "x = 3, y = 1\n3o!",
	"block":   "x = 2, y = 2\n2o$2o!",
	"rpent":   "x = 3, y = 3\nb2o$2o$bo!",
	"acorn":   "x = 7, y = 3\nbo5b$3bo3b$2o2b3o!",
	"lwss":    "x = 5, y = 4\nbo2bo$o4b$o3bo$4o!",
	"gun": "x = 36, y = 9\n" +
		"24bo$22bobo$12b2o6b2o12b2o$11bo3bo4b2o12b2o$2o8bo5bo3b2o$2o8bo3bob2o4b" +
		"obo$10bo5bo7bo$11bo3bo$12b2o!",
}

// Builtin returns a named pattern shipped with the package.
func Builtin(name string) (Shape, bool) {
	src, ok := builtins[name]
	if !ok {
		return Shape{}, false
	}
	s, err := ParseRLE(strings.NewReader(src))
	if err != nil {
		panic(fmt.Sprintf("seed: builtin %s: %v", name, err))
	}
	return s, true
}

// BuiltinNames lists the shipped patterns in sorted order.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
