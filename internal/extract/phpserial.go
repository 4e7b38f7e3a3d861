// phpserial.go decodes PHP's serialize() format, which several page
// builders use to store their layout in entity meta.
//
// Only the value tree matters here. Object class names are dropped, object
// properties become map fields with visibility prefixes removed, and
// references and custom-serialized objects decode to null.

package extract

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const maxSerialDepth = 512

// Unserialize decodes a PHP serialized value. It never panics; any
// structural problem is reported as ErrMalformed.
func Unserialize(s string) (Node, error) {
	d := &phpDecoder{s: s}
	n, err := d.value()
	if err != nil {
		return Node{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if rest := strings.TrimSpace(d.s[d.pos:]); rest != "" {
		return Node{}, fmt.Errorf("%w: trailing data at offset %d", ErrMalformed, d.pos)
	}
	return n, nil
}

type phpDecoder struct {
	s     string
	pos   int
	depth int
}

func (d *phpDecoder) value() (Node, error) {
	if d.pos >= len(d.s) {
		return Node{}, fmt.Errorf("unexpected end of input")
	}

	switch t := d.s[d.pos]; t {
	case 'N':
		return Node{}, d.expect("N;")

	case 'b':
		if err := d.expect("b:"); err != nil {
			return Node{}, err
		}
		v, err := d.until(';')
		if err != nil {
			return Node{}, err
		}
		switch v {
		case "0":
			return Node{Kind: KindBool}, nil
		case "1":
			return Node{Kind: KindBool, Bool: true}, nil
		}
		return Node{}, fmt.Errorf("invalid bool %q", v)

	case 'i':
		if err := d.expect("i:"); err != nil {
			return Node{}, err
		}
		v, err := d.until(';')
		if err != nil {
			return Node{}, err
		}
		if _, err := strconv.ParseInt(v, 10, 64); err != nil {
			return Node{}, fmt.Errorf("invalid int %q", v)
		}
		return Node{Kind: KindNumber, Str: v}, nil

	case 'd':
		if err := d.expect("d:"); err != nil {
			return Node{}, err
		}
		v, err := d.until(';')
		if err != nil {
			return Node{}, err
		}
		switch v {
		case "INF", "-INF", "NAN":
		default:
			f, err := strconv.ParseFloat(v, 64)
			if err != nil || math.IsNaN(f) {
				return Node{}, fmt.Errorf("invalid float %q", v)
			}
		}
		return Node{Kind: KindNumber, Str: v}, nil

	case 's':
		if err := d.expect("s:"); err != nil {
			return Node{}, err
		}
		s, err := d.quoted()
		if err != nil {
			return Node{}, err
		}
		return Str(s), d.expect(";")

	case 'E':
		if err := d.expect("E:"); err != nil {
			return Node{}, err
		}
		s, err := d.quoted()
		if err != nil {
			return Node{}, err
		}
		return Str(s), d.expect(";")

	case 'a':
		if err := d.expect("a:"); err != nil {
			return Node{}, err
		}
		return d.fields(false)

	case 'O':
		if err := d.expect("O:"); err != nil {
			return Node{}, err
		}
		if _, err := d.quoted(); err != nil {
			return Node{}, err
		}
		if err := d.expect(":"); err != nil {
			return Node{}, err
		}
		return d.fields(true)

	case 'C':
		if err := d.expect("C:"); err != nil {
			return Node{}, err
		}
		if _, err := d.quoted(); err != nil {
			return Node{}, err
		}
		if err := d.expect(":"); err != nil {
			return Node{}, err
		}
		n, err := d.length()
		if err != nil {
			return Node{}, err
		}
		if err := d.expect("{"); err != nil {
			return Node{}, err
		}
		if n > len(d.s)-d.pos {
			return Node{}, fmt.Errorf("custom payload overruns input")
		}
		d.pos += n
		return Node{}, d.expect("}")

	case 'r', 'R':
		d.pos++
		if err := d.expect(":"); err != nil {
			return Node{}, err
		}
		if _, err := d.until(';'); err != nil {
			return Node{}, err
		}
		return Node{}, nil

	default:
		return Node{}, fmt.Errorf("unknown type %q at offset %d", t, d.pos)
	}
}

// fields decodes "n:{key value ...}" for arrays and objects.
func (d *phpDecoder) fields(object bool) (Node, error) {
	d.depth++
	defer func() { d.depth-- }()
	if d.depth > maxSerialDepth {
		return Node{}, fmt.Errorf("nesting deeper than %d", maxSerialDepth)
	}

	n, err := d.length()
	if err != nil {
		return Node{}, err
	}
	if err := d.expect("{"); err != nil {
		return Node{}, err
	}

	// Each element takes at least 4 bytes, so n is bounded by the input.
	if n > (len(d.s)-d.pos)/4+1 {
		return Node{}, fmt.Errorf("element count %d exceeds input", n)
	}

	fields := make([]Field, 0, n)
	for range n {
		k, err := d.key()
		if err != nil {
			return Node{}, err
		}
		if object {
			k = propertyName(k)
		}
		v, err := d.value()
		if err != nil {
			return Node{}, err
		}
		fields = append(fields, Field{Key: k, Value: v})
	}
	if err := d.expect("}"); err != nil {
		return Node{}, err
	}
	return Map(fields...), nil
}

func (d *phpDecoder) key() (string, error) {
	if d.pos >= len(d.s) {
		return "", fmt.Errorf("unexpected end of input")
	}
	switch d.s[d.pos] {
	case 'i':
		if err := d.expect("i:"); err != nil {
			return "", err
		}
		v, err := d.until(';')
		if err != nil {
			return "", err
		}
		if _, err := strconv.ParseInt(v, 10, 64); err != nil {
			return "", fmt.Errorf("invalid int key %q", v)
		}
		return v, nil
	case 's':
		if err := d.expect("s:"); err != nil {
			return "", err
		}
		s, err := d.quoted()
		if err != nil {
			return "", err
		}
		return s, d.expect(";")
	}
	return "", fmt.Errorf("invalid key type %q at offset %d", d.s[d.pos], d.pos)
}

// quoted decodes `len:"bytes"` where len is a byte count.
func (d *phpDecoder) quoted() (string, error) {
	n, err := d.length()
	if err != nil {
		return "", err
	}
	if err := d.expect(`"`); err != nil {
		return "", err
	}
	if n > len(d.s)-d.pos {
		return "", fmt.Errorf("string length %d overruns input", n)
	}
	s := d.s[d.pos : d.pos+n]
	d.pos += n
	return s, d.expect(`"`)
}

// length reads a non-negative integer terminated by ':'.
func (d *phpDecoder) length() (int, error) {
	v, err := d.until(':')
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid length %q", v)
	}
	return n, nil
}

func (d *phpDecoder) until(b byte) (string, error) {
	i := strings.IndexByte(d.s[d.pos:], b)
	if i < 0 {
		return "", fmt.Errorf("missing %q after offset %d", b, d.pos)
	}
	v := d.s[d.pos : d.pos+i]
	d.pos += i + 1
	return v, nil
}

func (d *phpDecoder) expect(tok string) error {
	if !strings.HasPrefix(d.s[d.pos:], tok) {
		return fmt.Errorf("expected %q at offset %d", tok, d.pos)
	}
	d.pos += len(tok)
	return nil
}

// propertyName strips the "\0*\0" and "\0Class\0" visibility prefixes PHP
// adds to protected and private property names.
func propertyName(k string) string {
	if strings.HasPrefix(k, "\x00") {
		if i := strings.LastIndexByte(k, 0); i >= 0 {
			return k[i+1:]
		}
	}
	return k
}
