// Package annotate infers semantic categories (measurement method, organ)
// from variable names via explicit, ordered pattern rules.
package annotate

import (
	"strings"

	"panelmap/domain/core"
)

// Method categories.
const (
	MethodPC         = "PC"
	MethodRestim     = "Ex Vivo Restimulation"
	MethodHomogenate = "Homogenate"
	MethodFlow       = "Flow Cytometry"
	MethodScore      = "Clinical Score"
)

// Organ categories. OrganUndefined is the organ fallback: unlike method,
// organ has no default bucket.
const (
	OrganDrainingNode = "scdLN"
	OrganSpinalCord   = "SC"
	OrganSpleen       = "Spleen"
	OrganUndefined    = ""
)

// CategoryOther is the method fallback, and the fill value on both axes
// when Align meets a live column absent from the table.
const CategoryOther = "other"

// Rule maps a name substring to a category. Rules are evaluated in list
// order; the first match wins.
type Rule struct {
	Pattern       string
	Category      string
	CaseSensitive bool
}

func (r Rule) matches(name string) bool {
	if r.CaseSensitive {
		return strings.Contains(name, r.Pattern)
	}
	return strings.Contains(strings.ToLower(name), strings.ToLower(r.Pattern))
}

// DefaultMethodRules returns the method patterns in priority order. "PC" is
// case-sensitive so that e.g. "pct" names do not classify as components.
func DefaultMethodRules() []Rule {
	return []Rule{
		{Pattern: "PC", Category: MethodPC, CaseSensitive: true},
		{Pattern: "restim", Category: MethodRestim},
		{Pattern: "homo", Category: MethodHomogenate},
		{Pattern: "flow", Category: MethodFlow},
		{Pattern: "score", Category: MethodScore},
	}
}

// DefaultOrganRules returns the organ patterns in priority order. "scdLN"
// precedes "SC" because every scdLN name would otherwise resolve through
// the shorter pattern; "SC" is case-sensitive so "score" does not match.
func DefaultOrganRules() []Rule {
	return []Rule{
		{Pattern: "scdLN", Category: OrganDrainingNode, CaseSensitive: true},
		{Pattern: "SC", Category: OrganSpinalCord, CaseSensitive: true},
		{Pattern: "spleen", Category: OrganSpleen},
	}
}

// Annotation is the classification of one variable.
type Annotation struct {
	Variable core.VariableKey
	Method   string
	Organ    string
}

// GroupKey returns the row-split key: method and organ concatenated. An
// undefined organ contributes nothing.
func (a Annotation) GroupKey() string {
	if a.Organ == OrganUndefined {
		return a.Method
	}
	return a.Method + " " + a.Organ
}

// Classifier applies ordered method and organ rules to variable names.
type Classifier struct {
	methodRules []Rule
	organRules  []Rule
}

// NewClassifier returns a classifier with the default rule lists.
func NewClassifier() *Classifier {
	return &Classifier{
		methodRules: DefaultMethodRules(),
		organRules:  DefaultOrganRules(),
	}
}

// NewClassifierWithRules returns a classifier over custom rule lists.
func NewClassifierWithRules(methodRules, organRules []Rule) *Classifier {
	return &Classifier{methodRules: methodRules, organRules: organRules}
}

// Classify maps a variable name to its method and organ categories. Pure
// and deterministic: the same name always yields the same pair.
func (c *Classifier) Classify(name string) (method, organ string) {
	method = firstMatch(c.methodRules, name, CategoryOther)
	organ = firstMatch(c.organRules, name, OrganUndefined)
	return method, organ
}

func firstMatch(rules []Rule, name, fallback string) string {
	for _, r := range rules {
		if r.matches(name) {
			return r.Category
		}
	}
	return fallback
}

// Annotate builds the annotation table for a variable set, one record per
// key, in input order.
func (c *Classifier) Annotate(keys []core.VariableKey) []Annotation {
	table := make([]Annotation, len(keys))
	for i, key := range keys {
		method, organ := c.Classify(string(key))
		table[i] = Annotation{Variable: key, Method: method, Organ: organ}
	}
	return table
}

// Align merges an annotation table against the live column list. Live
// columns missing from the table are filled with method "other" and organ
// "other" rather than dropped; table entries for dead columns are
// discarded. The result holds exactly one annotation per live column, in
// live-column order.
func Align(table []Annotation, live []core.VariableKey) []Annotation {
	byKey := make(map[core.VariableKey]Annotation, len(table))
	for _, a := range table {
		byKey[a.Variable] = a
	}
	out := make([]Annotation, len(live))
	for i, key := range live {
		if a, ok := byKey[key]; ok {
			out[i] = a
		} else {
			out[i] = Annotation{Variable: key, Method: CategoryOther, Organ: CategoryOther}
		}
	}
	return out
}
