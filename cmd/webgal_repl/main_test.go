package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xiaoxustudio/webgal-language-tools/internal/debug"
	"github.com/xiaoxustudio/webgal-language-tools/internal/script"
)

func createTestSession(t *testing.T) (*session, *bytes.Buffer, string) {
	t.Helper()
	var out bytes.Buffer
	s := &session{
		eval: debug.NewEvaluator(debug.NewState(), script.NewStore()),
		out:  &out,
	}

	dir := t.TempDir()
	scene := filepath.Join(dir, "start.txt")
	if err := os.WriteFile(scene, []byte("; hit points\nsetVar:hp=10 -global;\nlabel:loop;\n"), 0644); err != nil {
		t.Fatal(err)
	}
	state := filepath.Join(dir, "state.json")
	if err := os.WriteFile(state, []byte(`{"event":"message","data":{"sceneMsg":{"scene":"start.txt","sentence":2},"stageSyncMsg":{"GameVar":{"hp":7}}}}`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := s.loadScript(scene); err != nil {
		t.Fatalf("loadScript failed: %v", err)
	}
	if err := s.loadState(state); err != nil {
		t.Fatalf("loadState failed: %v", err)
	}
	out.Reset()
	return s, &out, dir
}

func TestSessionListings(t *testing.T) {
	s, out, _ := createTestSession(t)

	s.command(":labels")
	if got := out.String(); got != "loop\tline 3\n" {
		t.Errorf("Unexpected labels output %q", got)
	}

	out.Reset()
	s.command(":vars")
	if got := out.String(); got != "hp = 10 -global\tline 2\tglobal\t; hit points\n" {
		t.Errorf("Unexpected vars output %q", got)
	}

	out.Reset()
	s.command(":scopes")
	if !strings.Contains(out.String(), "hp: integer = 7") {
		t.Errorf("Expected runtime hp in scopes, got %q", out.String())
	}
}

func TestSessionCommands(t *testing.T) {
	s, out, dir := createTestSession(t)

	if s.eval.Evaluate("hp") != "7" {
		t.Errorf("Expected runtime value 7")
	}
	s.eval.Evaluate("@set hp 9")
	s.command(":outbox")
	if !strings.Contains(out.String(), `"message":"setVar:hp=9;"`) {
		t.Errorf("Expected queued setVar, got %q", out.String())
	}

	out.Reset()
	if exit := s.command(":load " + filepath.Join(dir, "missing.txt")); exit {
		t.Error("Expected :load to keep the REPL running")
	}
	if !strings.Contains(out.String(), "cannot read") {
		t.Errorf("Expected read error, got %q", out.String())
	}

	out.Reset()
	s.command(":bogus")
	if !strings.Contains(out.String(), "unknown command") {
		t.Errorf("Expected unknown command, got %q", out.String())
	}

	if !s.command(":quit") {
		t.Error("Expected :quit to exit")
	}
}

func TestSessionComplete(t *testing.T) {
	s, _, _ := createTestSession(t)

	got := s.complete("h")
	if len(got) != 1 || got[0] != "hp" {
		t.Errorf("Expected [hp], got %v", got)
	}
	if got := s.complete(":l"); len(got) != 2 || got[0] != ":labels" || got[1] != ":load" {
		t.Errorf("Expected [:labels :load], got %v", got)
	}
}
