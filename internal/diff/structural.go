package diff

import (
	"sort"

	"github.com/lumenlearn/codetape/internal/tape"
)

// StructuralDiff reports the symbol inventory changes between two parsed
// code summaries. When either side failed to parse, Unparseable is set and
// the per-category lists are empty; callers treat such a diff as diagnostic.
type StructuralDiff struct {
	AddedFunctions   []string `json:"added_functions,omitempty"`
	RemovedFunctions []string `json:"removed_functions,omitempty"`
	AddedVariables   []string `json:"added_variables,omitempty"`
	RemovedVariables []string `json:"removed_variables,omitempty"`
	AddedCalls       []string `json:"added_calls,omitempty"`
	RemovedCalls     []string `json:"removed_calls,omitempty"`
	Unparseable      bool     `json:"unparseable,omitempty"`
}

// Empty reports whether no symbol changed and both sides parsed.
func (d StructuralDiff) Empty() bool {
	return !d.Unparseable &&
		len(d.AddedFunctions) == 0 && len(d.RemovedFunctions) == 0 &&
		len(d.AddedVariables) == 0 && len(d.RemovedVariables) == 0 &&
		len(d.AddedCalls) == 0 && len(d.RemovedCalls) == 0
}

// DiffStructure compares two structural summaries per category. Names are
// reported sorted; duplicate symbol names count once.
func DiffStructure(before, after tape.StructuralSummary) StructuralDiff {
	if !before.Parsed || !after.Parsed {
		return StructuralDiff{Unparseable: true}
	}
	var out StructuralDiff
	out.AddedFunctions, out.RemovedFunctions = diffSymbols(before.Functions, after.Functions)
	out.AddedVariables, out.RemovedVariables = diffSymbols(before.Variables, after.Variables)
	out.AddedCalls, out.RemovedCalls = diffSymbols(before.Calls, after.Calls)
	return out
}

func diffSymbols(before, after []tape.SymbolInfo) (added, removed []string) {
	beforeSet := symbolSet(before)
	afterSet := symbolSet(after)
	for name := range afterSet {
		if !beforeSet[name] {
			added = append(added, name)
		}
	}
	for name := range beforeSet {
		if !afterSet[name] {
			removed = append(removed, name)
		}
	}
	sort.Strings(added)
	sort.Strings(removed)
	return added, removed
}

func symbolSet(symbols []tape.SymbolInfo) map[string]bool {
	set := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		set[s.Name] = true
	}
	return set
}
