package calldep

import (
	"fmt"
	"sort"
	"strings"

	"github.com/m1gwings/treedrawer/tree"
)

// Status is a diagnostic tool that returns a string describing the composed
// configuration of the context: the supplied value names, the substitution
// table, the factory table, whether a validator is set, and the recognized
// marker shapes. Resolution state is per-call and never lives on the
// Context, so it does not appear here.
func (c *Context) Status() string {
	var lines []string

	for name := range c.values {
		lines = append(lines, fmt.Sprintf("value %q - supplied", name))
	}
	for original, replacement := range c.substitutions {
		lines = append(lines, fmt.Sprintf("substitution %s -> %s", original.name, replacement.name))
	}
	for declared, fn := range c.factories {
		lines = append(lines, fmt.Sprintf("factory %v - %s", declared, fn.name))
	}
	for _, shape := range c.markerShapes {
		lines = append(lines, fmt.Sprintf("marker shape %v", shape))
	}
	if c.validator != nil {
		lines = append(lines, fmt.Sprintf("validator %T", c.validator))
	} else {
		lines = append(lines, "validator -")
	}

	sort.Strings(lines)
	return strings.Join(lines, "\n")
}

// DependencyTree renders the static dependency graph reachable from fn:
// every parameter, and for parameters whose marker carries an explicit
// target, the target's own tree. Markers that infer their target from the
// declared type are shown as inferred, since the actual function depends on
// the context the call runs against. A function already on the current
// branch is shown once and marked as a cycle rather than recursed into.
func DependencyTree(fn *Func) string {
	if fn == nil {
		return ""
	}
	root := tree.NewTree(tree.NodeString(fn.name))
	appendParamNodes(root, fn, map[*Func]bool{fn: true})
	return fmt.Sprint(root)
}

func appendParamNodes(node *tree.Tree, fn *Func, onBranch map[*Func]bool) {
	for i, p := range fn.params {
		marker, ok := p.Marker.(DependencyMarker)
		if !ok {
			node.AddChild(tree.NodeString(paramLabel(p)))
			continue
		}

		target := marker.DependencyTarget()
		if target == nil {
			node.AddChild(tree.NodeString(p.Name + ": inferred from " + fmt.Sprint(p.Type)))
			continue
		}
		if onBranch[target] {
			node.AddChild(tree.NodeString(p.Name + ": " + target.name + " (cycle)"))
			continue
		}

		node.AddChild(tree.NodeString(p.Name + ": " + target.name))
		child, err := node.Child(i)
		if err != nil {
			// We should never get here: the child was just added.
			continue
		}
		onBranch[target] = true
		appendParamNodes(child, target, onBranch)
		delete(onBranch, target)
	}
}

func paramLabel(p Param) string {
	switch {
	case p.HasDefault:
		return fmt.Sprintf("%s = %v", p.Name, p.Default)
	case p.Type != nil:
		return fmt.Sprintf("%s: %v", p.Name, p.Type)
	default:
		return p.Name
	}
}
