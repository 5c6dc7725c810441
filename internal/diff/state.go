package diff

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lumenlearn/codetape/internal/tape"
)

// StateDiff is the combined view of what changed between two recorded
// moments: text, test and hint counters, elapsed time, and mastery movement.
type StateDiff struct {
	Lines      LineDiff       `json:"lines"`
	Structure  StructuralDiff `json:"structure"`
	TestsDelta int            `json:"tests_delta"`
	HintsDelta int            `json:"hints_delta"`
	// Elapsed is the wall-clock seconds between the two events.
	Elapsed       float64  `json:"elapsed"`
	NewlyMastered []string `json:"newly_mastered,omitempty"`
	// MasteryGains maps concept id to the level increase (only positive
	// movements are recorded).
	MasteryGains map[string]int `json:"mastery_gains,omitempty"`
}

// DiffStates compares two recorded events, conventionally an earlier and a
// later point of the same session.
func DiffStates(from, to tape.RecordedEvent) StateDiff {
	d := StateDiff{
		Lines:      DiffLines(from.Snapshot.Code, to.Snapshot.Code),
		Structure:  DiffStructure(from.Snapshot.Structure, to.Snapshot.Structure),
		TestsDelta: to.Snapshot.TestsPassed - from.Snapshot.TestsPassed,
		HintsDelta: to.Snapshot.HintsUsed - from.Snapshot.HintsUsed,
		Elapsed:    to.Timestamp - from.Timestamp,
	}

	before := make(map[string]bool, len(from.Snapshot.MasteredConcepts))
	for _, c := range from.Snapshot.MasteredConcepts {
		before[c] = true
	}
	for _, c := range to.Snapshot.MasteredConcepts {
		if !before[c] {
			d.NewlyMastered = append(d.NewlyMastered, c)
		}
	}
	sort.Strings(d.NewlyMastered)

	for concept, level := range to.Snapshot.Mastery {
		if gain := level - from.Snapshot.Mastery[concept]; gain > 0 {
			if d.MasteryGains == nil {
				d.MasteryGains = make(map[string]int)
			}
			d.MasteryGains[concept] = gain
		}
	}
	return d
}

// Render formats the diff for humans. Output is deterministic: map-backed
// sections are sorted, counters always print, empty list sections are
// omitted.
func (d StateDiff) Render() string {
	var b strings.Builder

	fmt.Fprintf(&b, "elapsed: %.1fs\n", d.Elapsed)
	fmt.Fprintf(&b, "tests: %+d\n", d.TestsDelta)
	fmt.Fprintf(&b, "hints: %+d\n", d.HintsDelta)

	if d.Structure.Unparseable {
		b.WriteString("structure: unparseable\n")
	}
	renderLines(&b, "+ ", d.Lines.Added)
	renderLines(&b, "- ", d.Lines.Removed)
	renderSymbols(&b, "functions", d.Structure.AddedFunctions, d.Structure.RemovedFunctions)
	renderSymbols(&b, "variables", d.Structure.AddedVariables, d.Structure.RemovedVariables)
	renderSymbols(&b, "calls", d.Structure.AddedCalls, d.Structure.RemovedCalls)

	if len(d.NewlyMastered) > 0 {
		fmt.Fprintf(&b, "mastered: %s\n", strings.Join(d.NewlyMastered, ", "))
	}
	if len(d.MasteryGains) > 0 {
		concepts := make([]string, 0, len(d.MasteryGains))
		for c := range d.MasteryGains {
			concepts = append(concepts, c)
		}
		sort.Strings(concepts)
		for _, c := range concepts {
			fmt.Fprintf(&b, "mastery %s: +%d\n", c, d.MasteryGains[c])
		}
	}
	return b.String()
}

func renderLines(b *strings.Builder, prefix string, lines []string) {
	for _, line := range lines {
		b.WriteString(prefix)
		b.WriteString(line)
		b.WriteByte('\n')
	}
}

func renderSymbols(b *strings.Builder, category string, added, removed []string) {
	if len(added) > 0 {
		fmt.Fprintf(b, "%s added: %s\n", category, strings.Join(added, ", "))
	}
	if len(removed) > 0 {
		fmt.Fprintf(b, "%s removed: %s\n", category, strings.Join(removed, ", "))
	}
}
