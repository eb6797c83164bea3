package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"
)

type fakeExec struct {
	loggedIn bool

	calls []string
	args  [][]string
}

func (f *fakeExec) record(cmd string, args []string) {
	f.calls = append(f.calls, cmd)
	f.args = append(f.args, args)
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Login(ctx context.Context) error {
	f.record("login", nil)
	f.loggedIn = true
	return nil
}
func (f *fakeExec) Logout(ctx context.Context) error {
	f.record("logout", nil)
	f.loggedIn = false
	return nil
}
func (f *fakeExec) SetDate(ctx context.Context, args []string) error {
	f.record("date", args)
	return nil
}
func (f *fakeExec) Add(ctx context.Context) error { f.record("add", nil); return nil }
func (f *fakeExec) Remove(ctx context.Context, args []string) error {
	f.record("rm", args)
	return nil
}
func (f *fakeExec) Edit(ctx context.Context, args []string) error {
	f.record("edit", args)
	return nil
}
func (f *fakeExec) ShowDay(ctx context.Context, args []string) error {
	f.record("day", args)
	return nil
}
func (f *fakeExec) Remaining(ctx context.Context, args []string) error {
	f.record("remaining", args)
	return nil
}
func (f *fakeExec) Progress(ctx context.Context, args []string) error {
	f.record("progress", args)
	return nil
}
func (f *fakeExec) Recalc(ctx context.Context, args []string) error {
	f.record("recalc", args)
	return nil
}
func (f *fakeExec) Sync(ctx context.Context) error { f.record("sync", nil); return nil }
func (f *fakeExec) History(ctx context.Context, args []string) error {
	f.record("history", args)
	return nil
}
func (f *fakeExec) Analytics(ctx context.Context, args []string) error {
	f.record("analytics", args)
	return nil
}
func (f *fakeExec) Recipes(ctx context.Context, args []string) error {
	f.record("recipes", args)
	return nil
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	origPrint := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = origPrint })

	input := strings.NewReader(strings.Join([]string{
		"help",
		"login",
		"date 2025-01-10",
		"add",
		"rm abc",
		"day",
		"remaining",
		"progress 2025-01-09",
		"sync",
		"recipes rm 42",
		"bogus",
		"exit",
	}, "\n"))

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "status" }, bufio.NewScanner(input))

	want := []string{"login", "date", "add", "rm", "day", "remaining", "progress", "sync", "recipes"}
	idx := 0
	for _, c := range exec.calls {
		if idx < len(want) && c == want[idx] {
			idx++
		}
	}
	if idx != len(want) {
		t.Fatalf("commands order mismatch: got %v, want subseq %v", exec.calls, want)
	}
}

func TestRunREPL_PassesArgs(t *testing.T) {
	origPrint := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = origPrint })

	input := strings.NewReader("recipes rm 42\nquit\n")
	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewScanner(input))

	if len(exec.args) != 1 || len(exec.args[0]) != 2 {
		t.Fatalf("unexpected args: %+v", exec.args)
	}
	if exec.args[0][0] != "rm" || exec.args[0][1] != "42" {
		t.Fatalf("unexpected args: %+v", exec.args[0])
	}
}

func TestRunREPL_ExitsOnEOF(t *testing.T) {
	origPrint := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = origPrint })

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewScanner(strings.NewReader("")))

	if len(exec.calls) != 0 {
		t.Fatalf("expected no calls, got %v", exec.calls)
	}
}
