package bridge

import (
	"sort"
	"strconv"

	"github.com/lambda-foundation/bridge/ir"
)

// DifferenceReport explains where two bridges diverge. It is a diagnostic
// companion to Agree: the score says how far apart two bridges are, the
// report says where.
type DifferenceReport struct {
	// FactsMissing are fact keys present in the second bridge but absent
	// from the first.
	FactsMissing []string `json:"facts_missing"`

	// FactsExtra are fact keys present in the first bridge but absent
	// from the second.
	FactsExtra []string `json:"facts_extra"`

	// IRPaths are slash-style paths to the nodes where the canonical
	// terms first diverge, e.g. "/body/fn/arg".
	IRPaths []string `json:"ir_paths"`
}

// Empty reports whether the two bridges showed no differences.
func (r DifferenceReport) Empty() bool {
	return len(r.FactsMissing) == 0 && len(r.FactsExtra) == 0 && len(r.IRPaths) == 0
}

// FindDifference diagnoses the divergence between two canonical bridges.
func (e *Engine) FindDifference(a, b BridgeOut) DifferenceReport {
	report := DifferenceReport{
		FactsMissing: keyDifference(b.Facts.KeySet(), a.Facts.KeySet()),
		FactsExtra:   keyDifference(a.Facts.KeySet(), b.Facts.KeySet()),
	}
	report.IRPaths = diffTerms(a.IR, b.IR, "", nil)
	return report
}

// keyDifference returns the sorted keys of from that are absent in against.
func keyDifference(from, against map[string]struct{}) []string {
	out := make([]string, 0)
	for k := range from {
		if _, ok := against[k]; !ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// diffTerms walks two terms in lockstep, recording the path of each node
// where they first diverge. Matching interior nodes recurse; differing
// nodes stop, so a replaced subtree reports one path, not one per leaf.
func diffTerms(a, b *ir.Term, path string, acc []string) []string {
	if a == nil && b == nil {
		return acc
	}
	root := path
	if root == "" {
		root = "/"
	}
	if a == nil || b == nil || a.Kind != b.Kind {
		return append(acc, root)
	}

	switch a.Kind {
	case ir.KindVar:
		if a.Name != b.Name {
			acc = append(acc, root)
		}
	case ir.KindNum:
		if a.Num != b.Num {
			acc = append(acc, root)
		}
	case ir.KindBool:
		if a.Bool != b.Bool {
			acc = append(acc, root)
		}
	case ir.KindLam:
		if a.Name != b.Name {
			return append(acc, root)
		}
		acc = diffTerms(a.Body, b.Body, path+"/body", acc)
	case ir.KindApp:
		acc = diffTerms(a.Fn, b.Fn, path+"/fn", acc)
		acc = diffTerms(a.Arg, b.Arg, path+"/arg", acc)
	case ir.KindList:
		if len(a.Items) != len(b.Items) {
			return append(acc, root)
		}
		for i := range a.Items {
			acc = diffTerms(a.Items[i], b.Items[i], path+"/items/"+strconv.Itoa(i), acc)
		}
	}
	return acc
}
