// internal/common/predicate/predicate.go

// Package predicate models row filters over the opportunity table as plain
// values, so access scoping and plan filters can be composed and inspected
// without touching SQL until the final query is built.
package predicate

import (
	"fmt"
	"strconv"
	"strings"
)

// Field is a filterable opportunity column.
type Field string

const (
	FieldTeamID    Field = "team_id"
	FieldOwnerID   Field = "owner_id"
	FieldStatus    Field = "status"
	FieldCreatedAt Field = "created_at"
)

var knownFields = map[Field]bool{
	FieldTeamID:    true,
	FieldOwnerID:   true,
	FieldStatus:    true,
	FieldCreatedAt: true,
}

// Predicate is one of MatchAll, Equals, InSet, AtLeast, Between or And.
type Predicate interface {
	isPredicate()
}

// MatchAll places no restriction on rows.
type MatchAll struct{}

// Equals matches rows where Field = Value.
type Equals struct {
	Field Field
	Value interface{}
}

// InSet matches rows where Field is one of Values. An empty set matches nothing.
type InSet struct {
	Field  Field
	Values []interface{}
}

// AtLeast matches rows where Field >= Value.
type AtLeast struct {
	Field Field
	Value interface{}
}

// Between matches rows where Lo <= Field <= Hi.
type Between struct {
	Field Field
	Lo    interface{}
	Hi    interface{}
}

// And matches rows satisfying every term.
type And []Predicate

func (MatchAll) isPredicate() {}
func (Equals) isPredicate()   {}
func (InSet) isPredicate()    {}
func (AtLeast) isPredicate()  {}
func (Between) isPredicate()  {}
func (And) isPredicate()      {}

// All conjoins preds, flattening nested And values and dropping MatchAll
// terms. It returns MatchAll when nothing restricts and the bare term when
// only one does.
func All(preds ...Predicate) Predicate {
	terms := make(And, 0, len(preds))
	for _, p := range preds {
		switch v := p.(type) {
		case nil, MatchAll:
			continue
		case And:
			flat := All(v...)
			if nested, ok := flat.(And); ok {
				terms = append(terms, nested...)
			} else if _, ok := flat.(MatchAll); !ok {
				terms = append(terms, flat)
			}
		default:
			terms = append(terms, v)
		}
	}

	switch len(terms) {
	case 0:
		return MatchAll{}
	case 1:
		return terms[0]
	default:
		return terms
	}
}

// Int64Set builds an InSet from integer ids.
func Int64Set(field Field, ids []int64) InSet {
	values := make([]interface{}, len(ids))
	for i, id := range ids {
		values[i] = id
	}
	return InSet{Field: field, Values: values}
}

// StringSet builds an InSet from strings.
func StringSet(field Field, items []string) InSet {
	values := make([]interface{}, len(items))
	for i, s := range items {
		values[i] = s
	}
	return InSet{Field: field, Values: values}
}

// ToSQL renders p as a WHERE clause body with numbered placeholders starting
// after argOffset, returning the clause and its arguments in order.
func ToSQL(p Predicate, argOffset int) (string, []interface{}, error) {
	b := &builder{next: argOffset + 1}
	clause, err := b.render(p)
	if err != nil {
		return "", nil, err
	}
	return clause, b.args, nil
}

type builder struct {
	next int
	args []interface{}
}

func (b *builder) placeholder(v interface{}) string {
	b.args = append(b.args, v)
	ph := "$" + strconv.Itoa(b.next)
	b.next++
	return ph
}

func (b *builder) render(p Predicate) (string, error) {
	switch v := p.(type) {
	case nil, MatchAll:
		return "TRUE", nil
	case Equals:
		if err := checkField(v.Field); err != nil {
			return "", err
		}
		return fmt.Sprintf("%s = %s", v.Field, b.placeholder(v.Value)), nil
	case InSet:
		if err := checkField(v.Field); err != nil {
			return "", err
		}
		if len(v.Values) == 0 {
			return "FALSE", nil
		}
		placeholders := make([]string, len(v.Values))
		for i, val := range v.Values {
			placeholders[i] = b.placeholder(val)
		}
		return fmt.Sprintf("%s IN (%s)", v.Field, strings.Join(placeholders, ", ")), nil
	case AtLeast:
		if err := checkField(v.Field); err != nil {
			return "", err
		}
		return fmt.Sprintf("%s >= %s", v.Field, b.placeholder(v.Value)), nil
	case Between:
		if err := checkField(v.Field); err != nil {
			return "", err
		}
		lo := b.placeholder(v.Lo)
		hi := b.placeholder(v.Hi)
		return fmt.Sprintf("%s BETWEEN %s AND %s", v.Field, lo, hi), nil
	case And:
		if len(v) == 0 {
			return "TRUE", nil
		}
		parts := make([]string, 0, len(v))
		for _, term := range v {
			part, err := b.render(term)
			if err != nil {
				return "", err
			}
			parts = append(parts, part)
		}
		if len(parts) == 1 {
			return parts[0], nil
		}
		return "(" + strings.Join(parts, " AND ") + ")", nil
	default:
		return "", fmt.Errorf("unsupported predicate %T", p)
	}
}

func checkField(f Field) error {
	if !knownFields[f] {
		return fmt.Errorf("unknown field %q", f)
	}
	return nil
}

// Describe renders p for logs, without placeholders.
func Describe(p Predicate) string {
	switch v := p.(type) {
	case nil, MatchAll:
		return "*"
	case Equals:
		return fmt.Sprintf("%s=%v", v.Field, v.Value)
	case InSet:
		items := make([]string, len(v.Values))
		for i, val := range v.Values {
			items[i] = fmt.Sprint(val)
		}
		return fmt.Sprintf("%s IN [%s]", v.Field, strings.Join(items, ","))
	case AtLeast:
		return fmt.Sprintf("%s>=%v", v.Field, v.Value)
	case Between:
		return fmt.Sprintf("%s in [%v,%v]", v.Field, v.Lo, v.Hi)
	case And:
		parts := make([]string, len(v))
		for i, term := range v {
			parts[i] = Describe(term)
		}
		return strings.Join(parts, " AND ")
	default:
		return fmt.Sprintf("%T", p)
	}
}
