package dynamic

import (
	"context"
	"fmt"

	"github.com/clanmills/ChaiScript/boxed"
	"github.com/clanmills/ChaiScript/dispatch"
	"github.com/clanmills/ChaiScript/errors"
)

var _ dispatch.ProxyFunction = (*Attribute)(nil)

// Attribute is a function of one argument that reads an attribute from a
// record with a given tag. Like Object.GetAttr it creates the attribute if
// it is missing, so the result can be assigned to.
type Attribute struct {
	dispatch.Base
	typeName string
	attrName string
}

// NewAttribute returns an accessor for attrName on records tagged typeName.
func NewAttribute(typeName, attrName string) *Attribute {
	types := []boxed.TypeInfo{boxed.TypeOf[boxed.Value](), objectType}
	return &Attribute{
		Base:     dispatch.NewBase(types, 1, fmt.Sprintf("attribute %s of %s", attrName, typeName)),
		typeName: typeName,
		attrName: attrName,
	}
}

// Name returns the attribute name.
func (a *Attribute) Name() string {
	return a.attrName
}

func (a *Attribute) CallMatch(args []boxed.Value) bool {
	return a.MatchError(args) == nil
}

// MatchError explains why args do not match, or returns nil. A record with
// another tag is reported as a bad cast.
func (a *Attribute) MatchError(args []boxed.Value) error {
	if len(args) != 1 {
		return &errors.ArityError{Function: a.attrName, Expected: 1, Given: len(args)}
	}
	o, ok := asObject(args[0])
	if !ok {
		return errors.NewBadCast(args[0].TypeInfo(), objectType, "expected a record")
	}
	if a.typeName != AnyTypeName && o.TypeName() != a.typeName {
		return errors.BadCastf("Dynamic object type mismatch")
	}
	return nil
}

func (a *Attribute) Call(ctx context.Context, args []boxed.Value) (boxed.Value, error) {
	if err := a.MatchError(args); err != nil {
		return boxed.Value{}, &errors.GuardError{Function: a.attrName, Err: err}
	}
	o, _ := asObject(args[0])
	return o.GetAttr(a.attrName), nil
}

func (a *Attribute) Equals(other dispatch.ProxyFunction) bool {
	o, ok := other.(*Attribute)
	return ok && a.typeName == o.typeName && a.attrName == o.attrName
}

func (a *Attribute) String() string {
	return fmt.Sprintf("attribute(%s.%s)", a.typeName, a.attrName)
}
