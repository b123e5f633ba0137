package coordinator

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"buildhook/internal/events"
	"buildhook/internal/status"
)

func ctx() context.Context { return context.Background() }

func TestBindPre_DefersConstrainedAndRunsOnce(t *testing.T) {
	f := newFixture(t, events.Set{Pre: []events.Event{
		item("now"),
		item("later", req("B", events.After)),
	}})
	if got := f.c.BindPre(ctx()); got != Success {
		t.Fatalf("BindPre=%v", got)
	}
	if got := f.exec.Calls(); !reflect.DeepEqual(got, []string{"now"}) {
		t.Fatalf("calls=%v", got)
	}
	if st := f.c.status.Get(events.Pre, 1); st != status.Deferred {
		t.Fatalf("later should be deferred, got %v", st)
	}
	f.c.OnProject(ctx(), "B", events.Before, true)
	if f.exec.count("later") != 0 {
		t.Fatalf("B Before must not release an After requirement")
	}
	f.c.OnProject(ctx(), "B", events.After, true)
	if f.exec.count("later") != 1 {
		t.Fatalf("later should run on B After; calls=%v", f.exec.Calls())
	}
	if st := f.c.status.Get(events.Pre, 1); st != status.Success {
		t.Fatalf("status=%v", st)
	}
	f.c.OnProject(ctx(), "B", events.After, true)
	f.c.OnProject(ctx(), "C", events.After, true)
	if f.exec.count("later") != 1 {
		t.Fatalf("deferred action must fire at most once; calls=%v", f.exec.Calls())
	}
}

func TestDeferred_SkipsFailedBuildWhenOptedOut(t *testing.T) {
	evt := item("later", req("A", events.After))
	evt.IgnoreIfBuildFailed = true
	f := newFixture(t, events.Set{Pre: []events.Event{evt}})
	f.c.BindPre(ctx())
	f.c.OnProject(ctx(), "A", events.After, false)
	if len(f.exec.Calls()) != 0 {
		t.Fatalf("calls=%v", f.exec.Calls())
	}
	if st := f.c.status.Get(events.Pre, 0); st != status.Deferred {
		t.Fatalf("status=%v", st)
	}
}

func TestDeferred_HostDisallowKeepsDeferred(t *testing.T) {
	f := newFixture(t, events.Set{Pre: []events.Event{item("later", req("A", events.Before))}})
	f.c.BindPre(ctx())
	f.host.SetAllowActions(false)
	f.c.OnProject(ctx(), "A", events.Before, true)
	if len(f.exec.Calls()) != 0 {
		t.Fatalf("host disallowed; calls=%v", f.exec.Calls())
	}
	if st := f.c.status.Get(events.Pre, 0); st != status.Deferred {
		t.Fatalf("status=%v", st)
	}
	f.host.SetAllowActions(true)
	f.c.OnProject(ctx(), "A", events.Before, true)
	if f.exec.count("later") != 1 {
		t.Fatalf("calls=%v", f.exec.Calls())
	}
}

func TestDeferred_DisabledIsIgnoredNotFailed(t *testing.T) {
	f := newFixture(t, events.Set{Pre: []events.Event{item("later", req("A", events.Before))}})
	f.c.BindPre(ctx())
	if err := f.store.Update(events.Pre, 0, func(e *events.Event) { e.Enabled = false }); err != nil {
		t.Fatalf("update: %v", err)
	}
	f.c.OnProject(ctx(), "A", events.Before, true)
	if len(f.exec.Calls()) != 0 {
		t.Fatalf("calls=%v", f.exec.Calls())
	}
	if f.c.Aggregate(events.Pre) != Success {
		t.Fatalf("ignored item must not count as a failure")
	}
}

func TestBindPre_AggregateFailsIfAnyItemFails(t *testing.T) {
	f := newFixture(t, events.Set{Pre: []events.Event{item("ok"), item("bad"), item("boom")}})
	f.exec.fail["bad"] = true
	f.exec.panics["boom"] = true
	if got := f.c.BindPre(ctx()); got != Failed {
		t.Fatalf("BindPre=%v", got)
	}
	slots := f.c.status.Slots(events.Pre)
	want := []status.Status{status.Success, status.Fail, status.Fail}
	if !reflect.DeepEqual(slots, want) {
		t.Fatalf("slots=%v want %v", slots, want)
	}
	if f.pub.Count("action_failed") != 2 {
		t.Fatalf("events=%+v", f.pub.Events())
	}
}

func TestBindPost_FailedBuildAndGate(t *testing.T) {
	optOut := item("optout")
	optOut.IgnoreIfBuildFailed = true
	f := newFixture(t, events.Set{Post: []events.Event{
		item("always"),
		optOut,
		item("gated", req("A", events.After)),
	}})
	if got := f.c.BindPost(ctx(), false); got != Success {
		t.Fatalf("BindPost=%v", got)
	}
	if got := f.exec.Calls(); !reflect.DeepEqual(got, []string{"always"}) {
		t.Fatalf("calls=%v", got)
	}
	if st := f.c.status.Get(events.Post, 2); st != status.None {
		t.Fatalf("gated item must not record a status, got %v", st)
	}
	f.c.OnProject(ctx(), "A", events.After, true)
	f.c.BindPost(ctx(), true)
	if f.exec.count("gated") != 1 || f.exec.count("optout") != 1 {
		t.Fatalf("calls=%v", f.exec.Calls())
	}
}

func TestBindCancel_UsesReached(t *testing.T) {
	f := newFixture(t, events.Set{Cancel: []events.Event{item("c", req("A", events.Before))}})
	f.c.BindCancel(ctx())
	if len(f.exec.Calls()) != 0 {
		t.Fatalf("calls=%v", f.exec.Calls())
	}
	f.c.OnProject(ctx(), "A", events.Before, true)
	f.c.BindCancel(ctx())
	if f.exec.count("c") != 1 {
		t.Fatalf("calls=%v", f.exec.Calls())
	}
}

func TestBind_GlobalSwitchAndHostGuards(t *testing.T) {
	f := newFixture(t, events.Set{Pre: []events.Event{item("p")}, Post: []events.Event{item("q")}})
	f.store.SetEnabled(false)
	if f.c.BindPre(ctx()) != Success || len(f.exec.Calls()) != 0 {
		t.Fatalf("global switch off: calls=%v", f.exec.Calls())
	}
	f.store.SetEnabled(true)
	f.host.SetAllowActions(false)
	before := testutil.ToFloat64(ignoredTotal.WithLabelValues(string(events.Post)))
	if f.c.BindPost(ctx(), true) != Success || len(f.exec.Calls()) != 0 {
		t.Fatalf("host disallowed: calls=%v", f.exec.Calls())
	}
	if got := testutil.ToFloat64(ignoredTotal.WithLabelValues(string(events.Post))); got != before+1 {
		t.Fatalf("ignored counter=%v want %v", got, before+1)
	}
}

func TestBind_AllDisabledIsSuccess(t *testing.T) {
	off := item("off")
	off.Enabled = false
	f := newFixture(t, events.Set{Post: []events.Event{off}})
	if f.c.BindPost(ctx(), true) != Success || len(f.exec.Calls()) != 0 {
		t.Fatalf("calls=%v", f.exec.Calls())
	}
}

func TestReset(t *testing.T) {
	f := newFixture(t, events.Set{Pre: []events.Event{item("later", req("A", events.After))}})
	f.c.BindPre(ctx())
	f.c.OnProject(ctx(), "B", events.Before, true)
	first := f.c.Session()

	f.host.SetAllowActions(false)
	if f.c.Reset() {
		t.Fatalf("reset must refuse while host disallows actions")
	}
	if s := f.c.Snapshot(); len(s.Projects) != 1 || s.Session != first {
		t.Fatalf("state changed on refused reset: %+v", s)
	}

	f.host.SetAllowActions(true)
	if !f.c.Reset() {
		t.Fatalf("reset refused")
	}
	s := f.c.Snapshot()
	if len(s.Projects) != 0 || s.Current != (Incoming{}) {
		t.Fatalf("snapshot after reset: %+v", s)
	}
	if s.Session == first || s.Session == "" {
		t.Fatalf("session not renewed: %q", s.Session)
	}
	if f.c.status.Contains(events.Pre, status.Deferred) {
		t.Fatalf("statuses not flushed")
	}
	f.c.OnProject(ctx(), "A", events.After, true)
	if len(f.exec.Calls()) != 0 {
		t.Fatalf("flushed deferred item must not run: %v", f.exec.Calls())
	}
}

func TestBindBuildRaw_ContentRules(t *testing.T) {
	warn := item("warn")
	warn.Codes = []string{"CS0168"}
	warn.Whitelist = true
	otherWarn := item("other-warn")
	otherWarn.Codes = []string{"CS0219"}
	otherWarn.Whitelist = true
	out := item("out")
	out.Match = "Build succeeded"
	gatedOut := item("gated-out", req("A", events.After))
	gatedOut.Match = "succeeded"
	f := newFixture(t, events.Set{
		Transmitter: []events.Event{item("tx")},
		Warnings:    []events.Event{warn, otherWarn},
		Errors:      []events.Event{item("err")},
		Output:      []events.Event{out, gatedOut},
	})
	raw := "Program.cs(3,5): warning CS0168: The variable 'x' is declared but never used\nBuild succeeded.\n"
	if got := f.c.BindBuildRaw(ctx(), raw); got != Success {
		t.Fatalf("BindBuildRaw=%v", got)
	}
	want := []string{"tx", "warn", "out"}
	if got := f.exec.Calls(); !reflect.DeepEqual(got, want) {
		t.Fatalf("calls=%v want %v", got, want)
	}
}

func TestBindBuildRaw_FailureAggregatesAcrossCategories(t *testing.T) {
	f := newFixture(t, events.Set{Transmitter: []events.Event{item("tx")}})
	f.exec.fail["tx"] = true
	if got := f.c.BindBuildRaw(ctx(), "x"); got != Failed {
		t.Fatalf("BindBuildRaw=%v", got)
	}
}

func strp(s string) *string { return &s }

func TestBindCommand_Filters(t *testing.T) {
	const guid = "{5EFC7975-14BC-11CF-9B2B-00AA00573819}"
	build := item("on-build")
	build.Filters = []events.CommandFilter{{GUID: guid, ID: 882, Pre: true, Cancel: true}}
	withIn := item("with-in")
	withIn.Filters = []events.CommandFilter{{GUID: guid, ID: 882, CustomIn: strp("x"), Post: true}}
	f := newFixture(t, events.Set{CommandEvent: []events.Event{item("no-filters"), build, withIn}})

	out, cancel := f.c.BindCommand(ctx(), Command{GUID: strings.ToLower(guid), ID: 882, Pre: true})
	if out != Success || !cancel {
		t.Fatalf("pre: out=%v cancel=%v", out, cancel)
	}
	if got := f.exec.Calls(); !reflect.DeepEqual(got, []string{"on-build"}) {
		t.Fatalf("calls=%v", got)
	}

	_, cancel = f.c.BindCommand(ctx(), Command{GUID: guid, ID: 882, Pre: false})
	if cancel {
		t.Fatalf("post direction never cancels")
	}
	if f.exec.count("with-in") != 0 {
		t.Fatalf("custom_in differs (absent vs set); calls=%v", f.exec.Calls())
	}
	f.c.BindCommand(ctx(), Command{GUID: guid, ID: 882, CustomIn: strp("x"), Pre: false})
	if f.exec.count("with-in") != 1 || f.exec.count("no-filters") != 0 {
		t.Fatalf("calls=%v", f.exec.Calls())
	}
}

func TestBindCommand_AnyMatchingFilterCancels(t *testing.T) {
	guard := item("guard")
	guard.Filters = []events.CommandFilter{
		{GUID: "g", ID: 1, Pre: true},
		{GUID: "g", ID: 1, Pre: true, Cancel: true},
		{GUID: "g", ID: 2, Pre: true, Cancel: true},
	}
	f := newFixture(t, events.Set{CommandEvent: []events.Event{guard}})
	f.exec.fail["guard"] = true

	out, cancel := f.c.BindCommand(ctx(), Command{GUID: "g", ID: 1, Pre: true})
	if !cancel {
		t.Fatalf("second matching filter asks to cancel; cancel=false")
	}
	if out != Failed {
		t.Fatalf("failing action should still report Failed, got %v", out)
	}
	if n := f.exec.count("guard"); n != 1 {
		t.Fatalf("action must run once per command, ran %d times", n)
	}

	plain := item("plain")
	plain.Filters = []events.CommandFilter{{GUID: "g", ID: 1, Pre: true}, {GUID: "g", ID: 9, Pre: true, Cancel: true}}
	f = newFixture(t, events.Set{CommandEvent: []events.Event{plain}})
	if _, cancel := f.c.BindCommand(ctx(), Command{GUID: "g", ID: 1, Pre: true}); cancel {
		t.Fatalf("a non-matching filter must not cancel")
	}
}

func TestBindBuildRaw_WarningsAccumulateUntilReset(t *testing.T) {
	warn := item("warn")
	warn.Codes = []string{"CS0168"}
	warn.Whitelist = true
	f := newFixture(t, events.Set{Warnings: []events.Event{warn}})

	f.c.BindBuildRaw(ctx(), "Program.cs(3,5): warning CS0168: unused")
	f.c.BindBuildRaw(ctx(), "compiling next project")
	if n := f.exec.count("warn"); n != 2 {
		t.Fatalf("rule should match the code seen in the first chunk on every chunk, ran %d", n)
	}

	if !f.c.Reset() {
		t.Fatalf("reset refused")
	}
	f.c.BindBuildRaw(ctx(), "compiling next project")
	if n := f.exec.count("warn"); n != 2 {
		t.Fatalf("codes must be forgotten on reset, ran %d", n)
	}
}
