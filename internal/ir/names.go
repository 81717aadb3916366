package ir

import "strings"

// ChainedName walks h's Parent links up to the nearest top-level
// ancestor and joins each Name along the way with "_", giving nested,
// synthesized definitions (struct members promoted by normalize, enum
// hosts, vector elements) a name that is unique across the whole
// collection even though their local Name (often a synthetic _M0,
// _E, _N, _V) is not.
func (c *Collection) ChainedName(h Handle) string {
	var parts []string
	for cur := h; cur.IsValid(); {
		d := c.Def(cur)
		parts = append(parts, d.Name)
		if !d.Parent.IsValid() {
			break
		}
		cur = d.Parent
	}
	// parts was built from h outward to the root; reverse it.
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "_")
}
