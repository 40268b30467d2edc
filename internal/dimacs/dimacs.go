// Package dimacs reads and writes propositional formulas in DIMACS CNF
// format.
package dimacs

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// fingerprintDomain prefixes the canonical bytes before hashing. The
// version suffix enables future algorithm migration.
const fingerprintDomain = "sonda/cnf/v1"

// Problem is a CNF formula. Clauses hold nonzero DIMACS literals;
// variable n is literal n, its negation -n.
type Problem struct {
	Vars    int
	Clauses [][]int
}

// Parse reads a DIMACS CNF problem. Comment lines start with 'c'; the
// "p cnf" header must precede the first clause. Literals beyond the
// declared variable count grow the problem instead of failing, and a
// '%' token ends the input early (some benchmark archives append one).
// An unterminated final clause is an error.
func Parse(r io.Reader) (*Problem, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	p := &Problem{}
	headerSeen := false
	var cur []int
	lineNo := 0

scan:
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == 'c' {
			continue
		}
		if line[0] == 'p' {
			if headerSeen {
				return nil, fmt.Errorf("dimacs: line %d: duplicate header", lineNo)
			}
			fields := strings.Fields(line)
			if len(fields) != 4 || fields[1] != "cnf" {
				return nil, fmt.Errorf("dimacs: line %d: malformed header %q", lineNo, line)
			}
			vars, err := strconv.Atoi(fields[2])
			if err != nil || vars < 0 {
				return nil, fmt.Errorf("dimacs: line %d: bad variable count %q", lineNo, fields[2])
			}
			if _, err := strconv.Atoi(fields[3]); err != nil {
				return nil, fmt.Errorf("dimacs: line %d: bad clause count %q", lineNo, fields[3])
			}
			p.Vars = vars
			headerSeen = true
			continue
		}
		for _, tok := range strings.Fields(line) {
			if tok == "%" {
				break scan
			}
			if !headerSeen {
				return nil, fmt.Errorf("dimacs: line %d: literal before \"p cnf\" header", lineNo)
			}
			n, err := strconv.Atoi(tok)
			if err != nil {
				return nil, fmt.Errorf("dimacs: line %d: bad literal %q", lineNo, tok)
			}
			if n == 0 {
				p.Clauses = append(p.Clauses, cur)
				cur = nil
				continue
			}
			if v := n; v < 0 {
				v = -v
				if v > p.Vars {
					p.Vars = v
				}
			} else if v > p.Vars {
				p.Vars = v
			}
			cur = append(cur, n)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("dimacs: read: %w", err)
	}
	if len(cur) > 0 {
		return nil, errors.New("dimacs: unterminated clause at end of input")
	}
	if !headerSeen {
		return nil, errors.New("dimacs: missing \"p cnf\" header")
	}
	return p, nil
}

// ParseFile opens and parses path.
func ParseFile(path string) (*Problem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open problem file: %w", err)
	}
	defer f.Close()
	p, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Write emits p in canonical form: a single header line, then one
// clause per line with space-separated literals and a trailing 0.
func Write(w io.Writer, p *Problem) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "p cnf %d %d\n", p.Vars, len(p.Clauses))
	for _, cl := range p.Clauses {
		for _, n := range cl {
			bw.WriteString(strconv.Itoa(n))
			bw.WriteByte(' ')
		}
		bw.WriteString("0\n")
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write problem: %w", err)
	}
	return nil
}

// Fingerprint computes a content-addressed identity for p from its
// canonical serialization. Format: SHA256(domain + 0x00 + bytes), hex
// encoded. The null separator prevents domain/data boundary ambiguity.
func Fingerprint(p *Problem) string {
	var buf bytes.Buffer
	_ = Write(&buf, p)
	h := sha256.New()
	h.Write([]byte(fingerprintDomain))
	h.Write([]byte{0x00})
	h.Write(buf.Bytes())
	return hex.EncodeToString(h.Sum(nil))
}
