package output

import "testing"

const sampleBuild = `Build started.
src/a.cs(10,5): warning CS0168: The variable 'e' is declared but never used
src/b.cs(3,1): warning CS0219: assigned but never used
src/b.cs(4,1): warning cs0168: again
src/c.cs(1,1): error CS1002: ; expected
Build FAILED.`

func TestBuild_ExtractsCodes(t *testing.T) {
	b := NewBuild()
	b.UpdateRaw(sampleBuild)
	w := b.Codes(Warnings)
	if len(w) != 2 || w[0] != "CS0168" || w[1] != "CS0219" {
		t.Fatalf("warnings=%v", w)
	}
	e := b.Codes(Errors)
	if len(e) != 1 || e[0] != "CS1002" {
		t.Fatalf("errors=%v", e)
	}
	if b.Raw() != sampleBuild {
		t.Fatalf("raw not captured")
	}
}

func TestBuild_CheckRule(t *testing.T) {
	b := NewBuild()
	if b.CheckRule(Warnings, true, nil) {
		t.Fatalf("no diagnostics must not match")
	}
	b.UpdateRaw(sampleBuild)
	if !b.CheckRule(Warnings, true, nil) || !b.CheckRule(Warnings, false, nil) {
		t.Fatalf("empty code list must match any diagnostic")
	}
	if !b.CheckRule(Warnings, true, []string{"cs0219"}) {
		t.Fatalf("whitelist with a captured code must match")
	}
	if b.CheckRule(Warnings, true, []string{"CS9999"}) {
		t.Fatalf("whitelist without captured codes must not match")
	}
	if b.CheckRule(Warnings, false, []string{"CS0168", "CS0219"}) {
		t.Fatalf("blacklist covering every captured code must not match")
	}
	if !b.CheckRule(Warnings, false, []string{"CS0168"}) {
		t.Fatalf("blacklist missing a captured code must match")
	}
	if !b.CheckRule(Errors, true, []string{"CS1002"}) {
		t.Fatalf("errors whitelist must match")
	}
}

func TestMatch(t *testing.T) {
	cases := []struct {
		pattern string
		typ     MatchType
		text    string
		want    bool
	}{
		{"FAILED", MatchDefault, sampleBuild, true},
		{"failed", "", sampleBuild, false},
		{`error CS\d+`, MatchRegex, sampleBuild, true},
		{`(`, MatchRegex, sampleBuild, false},
		{"Build started.*FAILED.", MatchWildcard, sampleBuild, true},
		{"Build?started*", "WILDCARD", sampleBuild, true},
		{"*succeeded*", MatchWildcard, sampleBuild, false},
	}
	for _, c := range cases {
		if got := Match(c.pattern, c.typ, c.text); got != c.want {
			t.Fatalf("Match(%q,%q)=%v want %v", c.pattern, c.typ, got, c.want)
		}
	}
}

func TestBuild_CodesAccumulateAcrossChunks(t *testing.T) {
	b := NewBuild()
	b.UpdateRaw("src/a.cs(10,5): warning CS0168: unused")
	b.UpdateRaw("compiling next project")
	if !b.CheckRule(Warnings, true, []string{"CS0168"}) {
		t.Fatalf("a code seen in an earlier chunk must still match")
	}
	if b.Raw() != "compiling next project" {
		t.Fatalf("raw should hold the latest chunk, got %q", b.Raw())
	}
	b.UpdateRaw("src/b.cs(1,1): error CS1002: ; expected")
	if w, e := b.Codes(Warnings), b.Codes(Errors); len(w) != 1 || len(e) != 1 {
		t.Fatalf("warnings=%v errors=%v", w, e)
	}

	b.Reset()
	if b.CheckRule(Warnings, true, nil) || b.CheckRule(Errors, true, nil) || b.Raw() != "" {
		t.Fatalf("reset must forget text and codes")
	}
}
