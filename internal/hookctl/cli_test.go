package hookctl

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCapture(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	t.Setenv("BUILDHOOK_CONFIG", "")
	var out, errOut bytes.Buffer
	code := run(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "buildhook.yaml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

const sampleConfig = `
properties:
  Configuration: Release
events:
  pre:
    - name: restore
      enabled: true
      mode: {command: "echo restore"}
    - name: after-lib
      enabled: false
      execution_order:
        - {project: Lib, order: after}
  warnings:
    - name: notify
      enabled: true
      whitelist: true
      codes: [CS0168]
`

func TestRun_NoArgsExit2(t *testing.T) {
	if code, _, _ := runCapture(t); code != 2 {
		t.Fatalf("code=%d", code)
	}
}

func TestRun_UnknownCommandExit1(t *testing.T) {
	if code, _, _ := runCapture(t, "wat"); code != 1 {
		t.Fatalf("code=%d", code)
	}
}

func TestEval_Containers(t *testing.T) {
	code, out, errOut := runCapture(t, "eval", "#[var v = 1]#[var v]", "plain")
	if code != 0 {
		t.Fatalf("code=%d err=%s", code, errOut)
	}
	if out != "1\nplain\n" {
		t.Fatalf("out=%q", out)
	}
}

func TestEval_PostProcessingUsesConfigProperties(t *testing.T) {
	p := writeConfig(t, sampleConfig)
	code, out, errOut := runCapture(t, "eval", "--config", p, "--post-processing", "mode=$(Configuration)")
	if code != 0 || strings.TrimSpace(out) != "mode=Release" {
		t.Fatalf("code=%d out=%q err=%s", code, out, errOut)
	}
	code, out, _ = runCapture(t, "eval", "--config", p, "mode=$(Configuration)")
	if code != 0 || strings.TrimSpace(out) != "mode=$(Configuration)" {
		t.Fatalf("without post-processing: code=%d out=%q", code, out)
	}
}

func TestEval_SyntaxErrorExit1(t *testing.T) {
	code, _, errOut := runCapture(t, "eval", "#[var]")
	if code != 1 || errOut == "" {
		t.Fatalf("code=%d err=%q", code, errOut)
	}
}

func TestValidate(t *testing.T) {
	p := writeConfig(t, sampleConfig)
	code, out, errOut := runCapture(t, "validate", p)
	if code != 0 || !strings.Contains(out, "ok (3 events)") {
		t.Fatalf("code=%d out=%q err=%s", code, out, errOut)
	}
	bad := writeConfig(t, "events:\n  pre:\n    - name: x\n      execution_order:\n        - {project: A, order: sideways}\n")
	if code, _, _ := runCapture(t, "validate", bad); code != 1 {
		t.Fatalf("invalid order should fail, code=%d", code)
	}
}

func TestEvents_ListsPerCategory(t *testing.T) {
	p := writeConfig(t, sampleConfig)
	code, out, errOut := runCapture(t, "events", p)
	if code != 0 {
		t.Fatalf("code=%d err=%s", code, errOut)
	}
	for _, want := range []string{"Pre:", "0. restore", "1. after-lib (disabled) Lib:After", "Warnings:", "whitelist=CS0168"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Post:") {
		t.Fatalf("empty categories must be omitted:\n%s", out)
	}
}

func TestVars_DefinesInOrder(t *testing.T) {
	code, out, errOut := runCapture(t, "vars", "a=1", "b=#[var a]2", "b:App=x")
	if code != 0 {
		t.Fatalf("code=%d err=%s", code, errOut)
	}
	if out != "a=1\nb=12\nb:App=x\n" {
		t.Fatalf("out=%q", out)
	}
	if code, _, _ := runCapture(t, "vars", "=1"); code != 1 {
		t.Fatalf("empty name should fail")
	}
}

func TestParseDefinition(t *testing.T) {
	name, project, value, err := parseDefinition(" n : P =a=b")
	if err != nil || name != "n" || project != "P" || value != "a=b" {
		t.Fatalf("got %q %q %q %v", name, project, value, err)
	}
	if _, _, _, err := parseDefinition("novalue"); err == nil {
		t.Fatalf("expected error")
	}
}
