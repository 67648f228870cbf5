// Package dynamic implements duck-typed runtime records and the guarded
// callables that let script-defined "classes" take part in the same
// overload resolution as native Go types.
//
// A record is identified by a string tag rather than a Go type. Functions
// wrapped by NewFunction only match calls whose first argument is a record
// with the right tag, and NewConstructor turns an initializer that fills in
// a blank record into a constructor for that tag.
package dynamic

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gofrs/uuid"

	"github.com/clanmills/ChaiScript/boxed"
)

// AnyTypeName is the tag that matches every record regardless of its own
// tag.
const AnyTypeName = "Dynamic_Object"

// Object is a record with a type tag and lazily created attributes.
//
// Objects are not synchronized; concurrent access to the same Object must
// be serialized by the caller.
type Object struct {
	id       uuid.UUID
	typeName string
	attrs    map[string]boxed.Value
}

// NewObject returns an empty record tagged typeName.
func NewObject(typeName string) *Object {
	return &Object{
		id:       uuid.Must(uuid.NewV4()),
		typeName: typeName,
		attrs:    map[string]boxed.Value{},
	}
}

// New returns an empty record tagged typeName, boxed as an owning value.
func New(typeName string) boxed.Value {
	return boxed.New(NewObject(typeName))
}

// probe returns a record used only to test whether a call would match. It
// skips id generation since it never escapes.
func probe(typeName string) boxed.Value {
	return boxed.New(&Object{typeName: typeName, attrs: map[string]boxed.Value{}})
}

// TypeName returns the tag of the record.
func (o *Object) TypeName() string {
	return o.typeName
}

// ID returns the unique id of the record.
func (o *Object) ID() uuid.UUID {
	return o.id
}

// GetAttr returns the attribute called name, creating it as an undefined
// value first if it does not exist. The returned value shares its slot with
// the record, so assigning to it updates the attribute.
//
// Use Lookup to read without creating.
func (o *Object) GetAttr(name string) boxed.Value {
	v, ok := o.attrs[name]
	if !ok {
		v = boxed.Undefined()
		o.attrs[name] = v
	}
	return v
}

// Lookup returns the attribute called name without creating it.
func (o *Object) Lookup(name string) (boxed.Value, bool) {
	v, ok := o.attrs[name]
	return v, ok
}

// HasAttr reports whether the attribute exists.
func (o *Object) HasAttr(name string) bool {
	_, ok := o.attrs[name]
	return ok
}

// SetAttr replaces the attribute called name with v.
func (o *Object) SetAttr(name string, v boxed.Value) {
	o.attrs[name] = v
}

// Attrs returns a snapshot of the attributes. Adding or removing entries in
// the returned map does not affect the record.
func (o *Object) Attrs() map[string]boxed.Value {
	attrs := make(map[string]boxed.Value, len(o.attrs))
	for k, v := range o.attrs {
		attrs[k] = v
	}
	return attrs
}

// AttrNames returns the attribute names in sorted order.
func (o *Object) AttrNames() []string {
	names := make([]string, 0, len(o.attrs))
	for k := range o.attrs {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (o *Object) Inspect() string {
	var b strings.Builder
	b.WriteString(o.typeName)
	b.WriteString("{")
	for i, name := range o.AttrNames() {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %v", name, o.attrs[name].Interface())
	}
	b.WriteString("}")
	return b.String()
}

func (o *Object) String() string {
	if o.id == uuid.Nil {
		return o.Inspect()
	}
	return fmt.Sprintf("%s#%s", o.Inspect(), o.id)
}
