package ruletree

import "fmt"

type node struct {
	children map[string]*node
	// kinds holds the markers of every rule terminating at this node.
	kinds Kind
	// icann is set when at least one terminating rule is outside the PRIVATE DOMAINS section.
	icann bool
}

func newNode() *node {
	return &node{children: make(map[string]*node)}
}

// Tree is a trie of rules keyed by label, read right to left (TLD first).
// A Tree is immutable after Build and safe for concurrent use.
type Tree struct {
	root       *node
	rules      int
	duplicates int
	version    string
}

// Match is the result of a lookup.
type Match struct {
	// Depth is the number of trailing host labels forming the public suffix.
	Depth int
	// Kind is the kind of rule that decided the match.
	Kind Kind
	// Listed is false when no rule matched and the implicit "*" rule applied.
	Listed bool
	// Private is true when the deciding rule came from the PRIVATE DOMAINS section.
	Private bool
}

// Build builds a Tree from rules.
// Fails only on malformed rules; duplicate rules are counted and otherwise ignored.
func Build(rules []Rule) (*Tree, error) {
	t := &Tree{root: newNode()}

	for _, r := range rules {
		if err := validate(r); err != nil {
			return nil, NewSyntaxError(0, r.String(), err)
		}

		cur := t.root
		for i := len(r.Labels) - 1; i >= 0; i-- {
			lbl := r.Labels[i]
			child, ok := cur.children[lbl]
			if !ok {
				child = newNode()
				cur.children[lbl] = child
			}
			cur = child
		}

		if cur.kinds&r.Kind != 0 {
			t.duplicates++
		} else {
			t.rules++
		}
		cur.kinds |= r.Kind
		if !r.Private {
			cur.icann = true
		}
	}

	return t, nil
}

func validate(r Rule) error {
	if len(r.Labels) == 0 {
		return ErrEmptyRule
	}
	switch r.Kind {
	case Normal, Exception:
		for _, lbl := range r.Labels {
			if lbl == WildcardLabel {
				return ErrMisplacedWildcard
			}
		}
		if r.Kind == Exception && len(r.Labels) < 2 {
			return ErrShortException
		}
	case Wildcard:
		if r.Labels[0] != WildcardLabel {
			return fmt.Errorf("%w: wildcard rule %q does not start with %q", ErrMisplacedWildcard, r.String(), WildcardLabel)
		}
		for _, lbl := range r.Labels[1:] {
			if lbl == WildcardLabel {
				return ErrMisplacedWildcard
			}
		}
	default:
		return fmt.Errorf("unknown rule kind %d", r.Kind)
	}
	for _, lbl := range r.Labels {
		if lbl == "" {
			return ErrEmptyRule
		}
	}
	return nil
}

// Len returns the number of distinct rules in the tree.
func (t *Tree) Len() int {
	return t.rules
}

// Duplicates returns the number of rules that were ignored because they were already present.
func (t *Tree) Duplicates() int {
	return t.duplicates
}

// Version returns the version of the list the tree was built from, if known.
func (t *Tree) Version() string {
	return t.version
}

// Lookup finds the public suffix of a host given as labels in their natural
// left-to-right order, e.g. ["www", "example", "co", "uk"].
//
// An exception rule at any depth wins, the deepest one if several match.
// Otherwise the deepest normal or wildcard rule wins, wildcard first at equal depth.
// Without any matching rule the implicit "*" rule applies and Depth is 1.
// Lookup never returns a Depth greater than len(labels), and returns Depth 0 only for no labels.
func (t *Tree) Lookup(labels []string) Match {
	if len(labels) == 0 {
		return Match{Kind: Normal}
	}

	var best, exc Match
	t.root.walk(labels, len(labels)-1, 0, &best, &exc)

	if exc.Listed {
		return exc
	}
	if best.Listed {
		return best
	}
	return Match{Depth: 1, Kind: Normal}
}

// walk consumes labels[i] and descends through both the exact and the wildcard edge.
func (n *node) walk(labels []string, i, depth int, best, exc *Match) {
	if i < 0 {
		return
	}
	if child, ok := n.children[labels[i]]; ok {
		child.visit(labels, i, depth+1, best, exc)
	}
	if labels[i] == WildcardLabel {
		return
	}
	if child, ok := n.children[WildcardLabel]; ok {
		child.visit(labels, i, depth+1, best, exc)
	}
}

func (n *node) visit(labels []string, i, depth int, best, exc *Match) {
	if n.kinds&Exception != 0 && (!exc.Listed || depth-1 > exc.Depth) {
		*exc = Match{Depth: depth - 1, Kind: Exception, Listed: true, Private: !n.icann}
	}

	if n.kinds&(Normal|Wildcard) != 0 {
		kind := Normal
		if n.kinds&Wildcard != 0 {
			kind = Wildcard
		}
		if depth > best.Depth || (depth == best.Depth && kind == Wildcard && best.Kind != Wildcard) {
			*best = Match{Depth: depth, Kind: kind, Listed: true, Private: !n.icann}
		}
	}

	n.walk(labels, i-1, depth, best, exc)
}
