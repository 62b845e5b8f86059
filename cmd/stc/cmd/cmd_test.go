package cmd

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
)

const sampleProgram = `
PROGRAM Main
VAR
	counter : INT := 1;
END_VAR
	counter := counter + 1;
END_PROGRAM
`

func writeSource(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.st")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

// runCLI drives rootCmd in-process the way the deleted teacher tests
// drove a built binary: same argv-style entry point, just without the
// subprocess (this module's build is never invoked from a test).
func runCLI(t *testing.T, args ...string) (stdout string, runErr error) {
	t.Helper()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	rootCmd.SetArgs(args)
	runErr = rootCmd.Execute()

	w.Close()
	out, _ := io.ReadAll(r)
	return string(out), runErr
}

func TestValidateCommandReportsNoErrorsOnCleanSource(t *testing.T) {
	path := writeSource(t, sampleProgram)
	out, err := runCLI(t, "validate", path)
	if err != nil {
		t.Fatalf("validate returned error: %v\noutput:\n%s", err, out)
	}
	if want := "no errors"; !bytes.Contains([]byte(out), []byte(want)) {
		t.Errorf("output = %q, want it to contain %q", out, want)
	}
}

func TestValidateCommandFailsOnParseError(t *testing.T) {
	path := writeSource(t, `PROGRAM Main VAR x INT; END_VAR END_PROGRAM`)
	_, err := runCLI(t, "validate", path)
	if err == nil {
		t.Fatal("expected validate to report an error for a malformed variable declaration")
	}
}

func TestParseCommandPrintsOutline(t *testing.T) {
	path := writeSource(t, sampleProgram)
	out, err := runCLI(t, "parse", path)
	if err != nil {
		t.Fatalf("parse returned error: %v\noutput:\n%s", err, out)
	}
	if want := "Main"; !bytes.Contains([]byte(out), []byte(want)) {
		t.Errorf("output = %q, want it to mention %q", out, want)
	}
}

func TestBuildCommandEmitsIndexJSON(t *testing.T) {
	path := writeSource(t, sampleProgram)
	out, err := runCLI(t, "build", "--emit=index", "--format=json", path)
	if err != nil {
		t.Fatalf("build returned error: %v\noutput:\n%s", err, out)
	}
	for _, want := range []string{`"types"`, `"pous"`, "Main"} {
		if !bytes.Contains([]byte(out), []byte(want)) {
			t.Errorf("output missing %q, got %q", want, out)
		}
	}
}

func TestBuildCommandRejectsUnknownEmit(t *testing.T) {
	path := writeSource(t, sampleProgram)
	_, err := runCLI(t, "build", "--emit=bogus", path)
	if err == nil {
		t.Fatal("expected an error for an unknown --emit value")
	}
}

func TestVersionCommandPrintsVersion(t *testing.T) {
	out, err := runCLI(t, "version")
	if err != nil {
		t.Fatalf("version returned error: %v", err)
	}
	if !bytes.Contains([]byte(out), []byte(Version)) {
		t.Errorf("output = %q, want it to contain version %q", out, Version)
	}
}
