package xmlrpc

import (
	"encoding/xml"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Marshal encodes a method call with the given arguments as an XML-RPC
// <methodCall> document.
func Marshal(method string, args ...Value) ([]byte, error) {
	var b strings.Builder
	b.WriteString(xml.Header)
	b.WriteString("<methodCall><methodName>")
	if err := escape(&b, method); err != nil {
		return nil, err
	}
	b.WriteString("</methodName><params>")
	for _, arg := range args {
		b.WriteString("<param>")
		if err := writeValue(&b, arg); err != nil {
			return nil, err
		}
		b.WriteString("</param>")
	}
	b.WriteString("</params></methodCall>")
	return []byte(b.String()), nil
}

func writeValue(b *strings.Builder, v Value) error {
	b.WriteString("<value>")
	switch val := v.(type) {
	case String:
		b.WriteString("<string>")
		if err := escape(b, string(val)); err != nil {
			return err
		}
		b.WriteString("</string>")
	case Int:
		b.WriteString("<int>")
		b.WriteString(strconv.FormatInt(int64(val), 10))
		b.WriteString("</int>")
	case Double:
		b.WriteString("<double>")
		b.WriteString(strconv.FormatFloat(float64(val), 'f', -1, 64))
		b.WriteString("</double>")
	case Bool:
		b.WriteString("<boolean>")
		if val {
			b.WriteString("1")
		} else {
			b.WriteString("0")
		}
		b.WriteString("</boolean>")
	case Array:
		b.WriteString("<array><data>")
		for _, item := range val {
			if err := writeValue(b, item); err != nil {
				return err
			}
		}
		b.WriteString("</data></array>")
	case Struct:
		// Members are written in sorted key order so encoded requests are
		// deterministic.
		names := make([]string, 0, len(val))
		for name := range val {
			names = append(names, name)
		}
		sort.Strings(names)
		b.WriteString("<struct>")
		for _, name := range names {
			b.WriteString("<member><name>")
			if err := escape(b, name); err != nil {
				return err
			}
			b.WriteString("</name>")
			if err := writeValue(b, val[name]); err != nil {
				return err
			}
			b.WriteString("</member>")
		}
		b.WriteString("</struct>")
	default:
		return fmt.Errorf("xmlrpc: cannot encode value of type %T", v)
	}
	b.WriteString("</value>")
	return nil
}

func escape(b *strings.Builder, s string) error {
	return xml.EscapeText(b, []byte(s))
}
