package ir

// memberAccessors dispatches, per Kind, the member-handle list a
// container definition holds. It stands in for the open-ended type
// switch a pointer-and-inheritance design would reach for: adding a
// new container kind means adding one entry here, not touching every
// caller that walks members.
var memberAccessors = map[Kind]func(DefData) []Handle{
	KindStruct: func(d DefData) []Handle { return d.(StructData).Members },
	KindCase:   func(d DefData) []Handle { return d.(CaseData).Members },
	KindDefaultCase: func(d DefData) []Handle {
		return d.(DefaultCaseData).Members
	},
}

// Members returns the member handle list of a Struct, Case or
// DefaultCase definition, and false for any other kind.
func Members(d Def) ([]Handle, bool) {
	accessor, ok := memberAccessors[d.Data.Kind()]
	if !ok {
		return nil, false
	}
	return accessor(d.Data), true
}

// containerKinds marks the kinds whose Members holds a nested list
// rather than a single wrapped element.
var containerKinds = map[Kind]bool{
	KindStruct:      true,
	KindCase:        true,
	KindDefaultCase: true,
}

// IsContainerKind reports whether k holds a member list (as opposed to
// a single wrapped element, as Vector/Fragment do, or no children at
// all, as the scalar built-ins and Const do).
func IsContainerKind(k Kind) bool {
	return containerKinds[k]
}

// wrappedElementAccessors dispatches, per Kind, the single child
// Handle a wrapper definition holds (a vector's element type, a
// fragment's wrappee). Select is deliberately absent: its children are
// a list of Case/DefaultCase handles, not a single wrapped element.
var wrappedElementAccessors = map[Kind]func(DefData) Handle{
	KindStaticVector:  func(d DefData) Handle { return d.(StaticVectorData).Element },
	KindDynamicVector: func(d DefData) Handle { return d.(DynamicVectorData).Element },
	KindFragment:      func(d DefData) Handle { return d.(FragmentData).Element },
}

// WrappedElement returns the single child Handle a Vector or Fragment
// definition wraps, and false for any other kind.
func WrappedElement(d Def) (Handle, bool) {
	accessor, ok := wrappedElementAccessors[d.Data.Kind()]
	if !ok {
		return InvalidHandle, false
	}
	return accessor(d.Data), true
}
