package codegen

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/andreaswalz/etplc/internal/ir"
)

// CppFeatureEmitter is the FeatureEmitter grounded on
// original_source/features.py's makeFeatures: EmitFeatureCode renders
// the same stack-machine evaluateFeatures stub the Python tool emitted
// for its C++ back end (kept in that shape because spec.md's Design
// Notes call the algorithm, not the target language, canonical), and
// EmitFeatureList renders the reordered, property-first feature
// strings one per line.
type CppFeatureEmitter struct{}

func (CppFeatureEmitter) EmitFeatureCode(w io.Writer, col *ir.Collection, features []string) error {
	_ = col
	code, _ := makeFeatures(features)
	_, err := io.WriteString(w, strings.Join(code, "\n")+"\n")
	return err
}

func (CppFeatureEmitter) EmitFeatureList(w io.Writer, features []string) error {
	_, list := makeFeatures(features)
	_, err := io.WriteString(w, strings.Join(list, "\n")+"\n")
	return err
}

// makeFeatures is the direct port of features.py's makeFeatures: given
// the raw `<path>[@<property>]` feature strings internal/width.Features
// produces, it re-sorts them by (property, path), renders the
// canonical `<property>@<path>` feature list, and renders the
// evaluateFeatures() stack-machine stub body that walks a DataUnit
// tree computing each boolean feature in the same order. It preserves
// the "explicit `last` initialisation" variant spec.md's Open
// Questions call canonical.
func makeFeatures(features []string) (code []string, list []string) {
	type tuple []string
	tuples := make([]tuple, len(features))
	for i, f := range features {
		parts := strings.Split(f, "@")
		rev := make(tuple, len(parts))
		for j, p := range parts {
			rev[len(parts)-1-j] = p
		}
		tuples[i] = rev
	}
	sort.SliceStable(tuples, func(i, j int) bool {
		return tupleLess(tuples[i], tuples[j])
	})

	featuresSorted := make([]string, len(tuples))
	for i, t := range tuples {
		featuresSorted[i] = strings.Join(t, "@")
	}

	var featureCode []string
	var featureList []string

	depth := 0
	var prefix [][]string

	for fi, f := range featuresSorted {
		hasProp := strings.Contains(f, "@")
		var fPath, fProp string
		if hasProp {
			parts := strings.SplitN(f, "@", 2)
			fProp, fPath = parts[0], parts[1]
			featureList = append(featureList, fmt.Sprintf("%s@%s", fProp, fPath))
		} else {
			fPath = f
			featureList = append(featureList, fPath)
		}

		fPathSplit := strings.Split(fPath, "/")

		for len(prefix) > 0 {
			top := prefix[len(prefix)-1]
			mismatch := len(top) > len(fPathSplit)
			if !mismatch {
				for i := range top {
					if top[i] != fPathSplit[i] {
						mismatch = true
						break
					}
				}
			}
			if !mismatch {
				break
			}
			prefix = prefix[:len(prefix)-1]
		}

		levelChange := len(prefix) != depth

		for len(prefix) > depth {
			featureCode = append(featureCode, "stack.push_back(base);", "base = last;")
			depth++
		}
		for len(prefix) < depth {
			depth--
			featureCode = append(featureCode, "base = stack.back();", "stack.pop_back();")
		}

		if levelChange {
			shown := ""
			if len(prefix) > 0 {
				shown = strings.Join(prefix[len(prefix)-1], "/")
			}
			featureCode = append(featureCode, fmt.Sprintf("\n/* <<< base path now is: %q >>> */\n", shown))
		}

		skip := 0
		if len(prefix) > 0 {
			skip = len(prefix[len(prefix)-1])
		}
		path := strings.Join(fPathSplit[skip:], "/")

		label := fPath
		if hasProp {
			label = fPath + "@" + fProp
		}
		featureCode = append(featureCode, fmt.Sprintf("/* this is feature #%d: %q */", fi, label))

		if hasProp {
			atPath := ""
			if path != "" {
				atPath = "@" + path
			}
			featureCode = append(featureCode, fmt.Sprintf(
				"features.push_back((base != 0) && base->propGetDefault<bool>(\"%s%s\", false));\n",
				fProp, atPath))
		} else {
			featureCode = append(featureCode, fmt.Sprintf(
				"features.push_back((base != 0) && ((last = base->getByPath(\"%s\")) != 0));\n",
				path))
			prefix = append(prefix, fPathSplit)
		}
	}

	decl := indent("vector<DataUnit*> stack;\nDataUnit* last = 0;\n", 1)
	body := indent(strings.Join(featureCode, "\n"), 1)

	code = append(code, "void evaluateFeatures(DataUnit* base, vector<bool>& features) {\n")
	code = append(code, decl)
	code = append(code, strings.Split(body, "\n")...)
	code = append(code, "}")

	return code, featureList
}

// tupleLess compares two 1- or 2-element string tuples the way
// Python's tuple comparison does: element by element, with the
// shorter tuple sorting first when it is a proper prefix of the
// longer one.
func tupleLess(a, b []string) bool {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

// indent prefixes every non-empty line of s with 4*level spaces,
// matching features.py's indent() helper exactly (including its
// quirk of leaving blank lines untouched).
func indent(s string, level int) string {
	lines := strings.Split(s, "\n")
	pad := strings.Repeat(" ", 4*level)
	for i, l := range lines {
		if l != "" {
			lines[i] = pad + l
		}
	}
	return strings.Join(lines, "\n")
}
