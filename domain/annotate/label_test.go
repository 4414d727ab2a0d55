package annotate

import "testing"

func TestDisplayLabel(t *testing.T) {
	cases := []struct {
		name  string
		label string
	}{
		{"scdLN_CD4_flow", "CD4"},
		{"SC_IL17_homo", "IL17"},
		{"spleen_B220_flow", "B220"},
		{"Spleen_GMCSF_restim", "GMCSF"},
		{"clinical_score", "clinical"},
		{"body_weight", "body weight"},
		{"PC1", "PC1"},
		{"PC2", "PC2"},
	}

	for _, tc := range cases {
		if got := DisplayLabel(tc.name); got != tc.label {
			t.Errorf("DisplayLabel(%q) = %q, expected %q", tc.name, got, tc.label)
		}
	}
}

func TestDisplayLabel_DoesNotAffectClassification(t *testing.T) {
	// Delabeling is cosmetic: the classifier still sees the original name.
	c := NewClassifier()
	name := "scdLN_CD4_flow"

	_ = DisplayLabel(name)
	method, organ := c.Classify(name)
	if method != MethodFlow || organ != OrganDrainingNode {
		t.Errorf("Classification changed after delabeling: (%q,%q)", method, organ)
	}
}
