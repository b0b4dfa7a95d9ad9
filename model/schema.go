package model

import "strings"

// Attr names an interval attribute a classification rule can read.
type Attr uint16

const (
	AttrSource Attr = 1 << iota
	AttrLocatorType
	AttrLocatorKeys
	AttrReason
	AttrCause
	AttrAnnotations
	AttrMessage
)

var attrNames = []struct {
	attr Attr
	name string
}{
	{AttrSource, "source"},
	{AttrLocatorType, "locator.type"},
	{AttrLocatorKeys, "locator.keys"},
	{AttrReason, "message.reason"},
	{AttrCause, "message.cause"},
	{AttrAnnotations, "message.annotations"},
	{AttrMessage, "message"},
}

// Schema is the set of attributes a batch of records carries at all.
// An attribute outside the schema is absent from the record type, which is
// different from being unset on one record.
type Schema Attr

const (
	// IntervalSchema is the shape of interval documents.
	IntervalSchema = Schema(AttrSource | AttrLocatorType | AttrLocatorKeys |
		AttrReason | AttrCause | AttrAnnotations | AttrMessage)
	// AuditSchema is the shape of normalized audit log lines.
	AuditSchema = Schema(AttrSource | AttrLocatorKeys | AttrMessage)
)

// Has reports whether every attribute in a is present.
func (s Schema) Has(a Attr) bool {
	return Attr(s)&a == a
}

// Missing returns the attributes of a that the schema lacks.
func (s Schema) Missing(a Attr) Attr {
	return a &^ Attr(s)
}

func (a Attr) String() string {
	var names []string
	for _, n := range attrNames {
		if a&n.attr != 0 {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, ",")
}
