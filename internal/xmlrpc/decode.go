package xmlrpc

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParseResponse parses an XML-RPC <methodResponse> document and returns its
// single value. A <fault> response is returned as a *Fault error.
func ParseResponse(r io.Reader) (Value, error) {
	d := xml.NewDecoder(r)
	inFault := false
	for {
		tok, err := d.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, errors.New("xmlrpc: response carries no value")
			}
			return nil, fmt.Errorf("xmlrpc: invalid response: %w", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch se.Name.Local {
		case "methodResponse", "params", "param":
		case "fault":
			inFault = true
		case "value":
			v, err := parseValue(d)
			if err != nil {
				return nil, err
			}
			if inFault {
				return nil, faultFromValue(v)
			}
			return v, nil
		default:
			return nil, fmt.Errorf("xmlrpc: unexpected element <%s> in response", se.Name.Local)
		}
	}
}

func faultFromValue(v Value) error {
	s, ok := v.(Struct)
	if !ok {
		return errors.New("xmlrpc: fault value is not a struct")
	}
	f := &Fault{}
	if code, ok := s.IntField("faultCode"); ok {
		f.Code = code
	}
	if reason, ok := s.StringField("faultString"); ok {
		f.Reason = reason
	}
	return f
}

// parseValue parses the contents of a <value> element whose start tag has
// already been consumed, leaving the decoder just past the matching end tag.
func parseValue(d *xml.Decoder) (Value, error) {
	var text strings.Builder
	for {
		tok, err := d.Token()
		if err != nil {
			return nil, fmt.Errorf("xmlrpc: truncated value: %w", err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			text.Write(t)
		case xml.StartElement:
			v, err := parseTyped(d, t.Name.Local)
			if err != nil {
				return nil, err
			}
			if err := consumeEnd(d); err != nil {
				return nil, err
			}
			return v, nil
		case xml.EndElement:
			// Untyped text inside <value> is a string.
			return String(text.String()), nil
		}
	}
}

// consumeEnd reads up to the end tag of the enclosing <value>, tolerating
// surrounding whitespace.
func consumeEnd(d *xml.Decoder) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return fmt.Errorf("xmlrpc: truncated value: %w", err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			if len(bytes.TrimSpace(t)) != 0 {
				return fmt.Errorf("xmlrpc: unexpected text %q after typed value", string(t))
			}
		case xml.StartElement:
			return fmt.Errorf("xmlrpc: unexpected element <%s> after typed value", t.Name.Local)
		case xml.EndElement:
			return nil
		}
	}
}

func parseTyped(d *xml.Decoder, name string) (Value, error) {
	switch name {
	case "string":
		s, err := readText(d)
		if err != nil {
			return nil, err
		}
		return String(s), nil
	case "int", "i4":
		s, err := readText(d)
		if err != nil {
			return nil, err
		}
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("xmlrpc: invalid integer %q", s)
		}
		return Int(n), nil
	case "double":
		s, err := readText(d)
		if err != nil {
			return nil, err
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, fmt.Errorf("xmlrpc: invalid double %q", s)
		}
		return Double(f), nil
	case "boolean":
		s, err := readText(d)
		if err != nil {
			return nil, err
		}
		switch strings.TrimSpace(s) {
		case "1":
			return Bool(true), nil
		case "0":
			return Bool(false), nil
		default:
			return nil, fmt.Errorf("xmlrpc: invalid boolean %q", s)
		}
	case "struct":
		return parseStruct(d)
	case "array":
		return parseArray(d)
	default:
		return nil, fmt.Errorf("xmlrpc: unsupported value type <%s>", name)
	}
}

// readText collects character data up to the end tag of the current scalar
// element.
func readText(d *xml.Decoder) (string, error) {
	var b strings.Builder
	for {
		tok, err := d.Token()
		if err != nil {
			return "", fmt.Errorf("xmlrpc: truncated value: %w", err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			b.Write(t)
		case xml.StartElement:
			return "", fmt.Errorf("xmlrpc: unexpected element <%s> in scalar value", t.Name.Local)
		case xml.EndElement:
			return b.String(), nil
		}
	}
}

// parseStruct parses <member> entries until the closing </struct>.
func parseStruct(d *xml.Decoder) (Value, error) {
	s := Struct{}
	for {
		tok, err := d.Token()
		if err != nil {
			return nil, fmt.Errorf("xmlrpc: truncated struct: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "member" {
				return nil, fmt.Errorf("xmlrpc: unexpected element <%s> in struct", t.Name.Local)
			}
			name, v, err := parseMember(d)
			if err != nil {
				return nil, err
			}
			s[name] = v
		case xml.EndElement:
			return s, nil
		}
	}
}

func parseMember(d *xml.Decoder) (string, Value, error) {
	var (
		name      string
		val       Value
		haveName  bool
		haveValue bool
	)
	for {
		tok, err := d.Token()
		if err != nil {
			return "", nil, fmt.Errorf("xmlrpc: truncated struct member: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "name":
				name, err = readText(d)
				if err != nil {
					return "", nil, err
				}
				haveName = true
			case "value":
				val, err = parseValue(d)
				if err != nil {
					return "", nil, err
				}
				haveValue = true
			default:
				return "", nil, fmt.Errorf("xmlrpc: unexpected element <%s> in struct member", t.Name.Local)
			}
		case xml.EndElement:
			if !haveName || !haveValue {
				return "", nil, errors.New("xmlrpc: incomplete struct member")
			}
			return name, val, nil
		}
	}
}

// parseArray parses <array><data><value>... entries until the closing
// </array>.
func parseArray(d *xml.Decoder) (Value, error) {
	arr := Array{}
	for {
		tok, err := d.Token()
		if err != nil {
			return nil, fmt.Errorf("xmlrpc: truncated array: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "data":
			case "value":
				v, err := parseValue(d)
				if err != nil {
					return nil, err
				}
				arr = append(arr, v)
			default:
				return nil, fmt.Errorf("xmlrpc: unexpected element <%s> in array", t.Name.Local)
			}
		case xml.EndElement:
			if t.Name.Local == "array" {
				return arr, nil
			}
		}
	}
}
