package filter

import "strings"

// FormFields are the fields of the filter form, in display order.
var FormFields = []string{"Category", "Classification", "Namespace", "Pod", "UID", "Message"}

// FieldSet holds the text typed into each form field. Non-empty fields are
// AND'd together.
type FieldSet map[string]string

// Form is an OR of field sets.
type Form struct {
	Fields []string
	Sets   []FieldSet
}

// NewForm returns a form over FormFields with one empty set.
func NewForm() *Form {
	return &Form{Fields: FormFields, Sets: []FieldSet{{}}}
}

// Set stores text for field in set i, growing the form as needed.
func (f *Form) Set(i int, fieldName, text string) {
	for len(f.Sets) <= i {
		f.Sets = append(f.Sets, FieldSet{})
	}
	f.Sets[i][fieldName] = text
}

// Get returns the text of field in set i.
func (f *Form) Get(i int, fieldName string) string {
	if i < 0 || i >= len(f.Sets) {
		return ""
	}
	return f.Sets[i][fieldName]
}

// Reset clears every field of every set.
func (f *Form) Reset() {
	for i := range f.Sets {
		f.Sets[i] = FieldSet{}
	}
}

// fieldExpr maps a form label to the grammar field it searches. Labels other
// than Category, Classification and Message are locator keys.
func fieldExpr(label string) string {
	switch l := strings.ToLower(label); l {
	case "category", "classification", "message":
		return l
	default:
		return "key." + l
	}
}

// Expression builds the full-grammar expression for the form, or "" when
// every field is blank.
func (f *Form) Expression() string {
	var sets []string
	for _, set := range f.Sets {
		var terms []string
		for _, name := range f.Fields {
			if e := Simple(fieldExpr(name), set[name]); e != "" {
				terms = append(terms, "("+e+")")
			}
		}
		if len(terms) > 0 {
			sets = append(sets, "("+strings.Join(terms, " & ")+")")
		}
	}
	return strings.Join(sets, " | ")
}
