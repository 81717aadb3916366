package ir

import "fmt"

// maxInstantiationDepth guards against an instantiation chain that
// dependency sort should already have rejected as cyclic; it is a
// backstop, not the cycle detector.
const maxInstantiationDepth = 256

// FollowInstantiation chases a (possibly aliased, possibly
// parameterized) Instance reference to the Handle of the definition it
// ultimately names, substituting args through each hop so that the
// returned args map is expressed in terms of the final definition's
// own Params. Passing a non-Instance Handle returns it unchanged.
func (c *Collection) FollowInstantiation(h Handle, args map[string]IntElement) (Handle, map[string]IntElement, error) {
	cur := h
	curArgs := args

	for depth := 0; ; depth++ {
		if depth > maxInstantiationDepth {
			return InvalidHandle, nil, fmt.Errorf("ir: instantiation chain too deep starting at %q (likely a cycle)", c.Def(h).Name)
		}
		data, ok := c.Def(cur).Data.(InstanceData)
		if !ok {
			return cur, curArgs, nil
		}
		next, ok := c.ByName(data.TypeName)
		if !ok {
			return InvalidHandle, nil, fmt.Errorf("ir: unknown type %q", data.TypeName)
		}
		curArgs = substituteArgs(data.Args, curArgs)
		cur = next
	}
}

// substituteArgs resolves each IntSymbol in elemArgs that names a
// parameter bound in outerArgs to the value outerArgs provides,
// leaving literals and symbols not bound by outerArgs (e.g. struct
// member names, global symbols) untouched.
func substituteArgs(elemArgs, outerArgs map[string]IntElement) map[string]IntElement {
	if len(elemArgs) == 0 {
		return elemArgs
	}
	result := make(map[string]IntElement, len(elemArgs))
	for name, val := range elemArgs {
		if sym, ok := val.(IntSymbol); ok {
			if resolved, ok := outerArgs[sym.Name]; ok {
				result[name] = resolved
				continue
			}
		}
		result[name] = val
	}
	return result
}
