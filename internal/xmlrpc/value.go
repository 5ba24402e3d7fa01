// Package xmlrpc implements the subset of XML-RPC the subtitle catalog
// speaks: scalar, struct and array values, request encoding, and response
// parsing including faults.
//
// Responses are a weakly-typed wire format, so values are modeled as a
// tagged variant with fallible accessors. Every missing or mis-typed field
// surfaces as a failed lookup for the caller to report, never a silent skip.
package xmlrpc

import "fmt"

// Value is an XML-RPC value: one of String, Int, Double, Bool, Struct or Array.
type Value interface {
	isValue()
}

// String is an XML-RPC <string> (or bare text) value.
type String string

// Int is an XML-RPC <int>/<i4> value.
type Int int64

// Double is an XML-RPC <double> value.
type Double float64

// Bool is an XML-RPC <boolean> value.
type Bool bool

// Array is an XML-RPC <array> value.
type Array []Value

// Struct is an XML-RPC <struct> value.
type Struct map[string]Value

func (String) isValue() {}
func (Int) isValue()    {}
func (Double) isValue() {}
func (Bool) isValue()   {}
func (Array) isValue()  {}
func (Struct) isValue() {}

// StringField returns the named member as a string.
func (s Struct) StringField(name string) (string, bool) {
	v, ok := s[name].(String)
	return string(v), ok
}

// IntField returns the named member as an int64.
func (s Struct) IntField(name string) (int64, bool) {
	v, ok := s[name].(Int)
	return int64(v), ok
}

// DoubleField returns the named member as a float64.
func (s Struct) DoubleField(name string) (float64, bool) {
	v, ok := s[name].(Double)
	return float64(v), ok
}

// StructField returns the named member as a nested struct.
func (s Struct) StructField(name string) (Struct, bool) {
	v, ok := s[name].(Struct)
	return v, ok
}

// ArrayField returns the named member as an array.
func (s Struct) ArrayField(name string) (Array, bool) {
	v, ok := s[name].(Array)
	return v, ok
}

// Fault is an XML-RPC <fault> response.
type Fault struct {
	Code   int64
	Reason string
}

// Error implements the error interface.
func (f *Fault) Error() string {
	return fmt.Sprintf("xmlrpc fault %d: %s", f.Code, f.Reason)
}
