package ir

// DependsOnTypes returns the set of top-level type names h's
// definition references, directly or through a nested container
// (Struct/Case/DefaultCase members, Select cases, a vector's element,
// a fragment's wrappee). This is the edge set dependency sort walks;
// built-in type names appear in it like any other; built-ins are never
// part of Collection.Order, and dependency sort treats them as already
// satisfied.
func (c *Collection) DependsOnTypes(h Handle) map[string]bool {
	d := c.Def(h)
	deps := map[string]bool{}

	switch data := d.Data.(type) {
	case InstanceData:
		deps[data.TypeName] = true
	case StaticVectorData:
		mergeSymbols(deps, c.DependsOnTypes(data.Element))
	case DynamicVectorData:
		mergeSymbols(deps, c.DependsOnTypes(data.Element))
	case FragmentData:
		mergeSymbols(deps, c.DependsOnTypes(data.Element))
	case StructData:
		for _, m := range data.Members {
			mergeSymbols(deps, c.DependsOnTypes(m))
		}
	case CaseData:
		for _, m := range data.Members {
			mergeSymbols(deps, c.DependsOnTypes(m))
		}
	case DefaultCaseData:
		for _, m := range data.Members {
			mergeSymbols(deps, c.DependsOnTypes(m))
		}
	case SelectData:
		for _, caseH := range data.Cases {
			mergeSymbols(deps, c.DependsOnTypes(caseH))
		}
	}

	return deps
}
