package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// FakeTool is an executable script that appends each invocation's argv as
// one line to a log and writes "bitcode" to the path following -o.
type FakeTool struct {
	Path string
	Log  string
}

// NewFakeTool writes a fake tool into dir. Any invocation whose argv
// contains a token listed in failOn exits 1 without writing its output.
func NewFakeTool(t *testing.T, dir, name string, failOn ...string) *FakeTool {
	t.Helper()
	SkipOnWindows(t)

	log := filepath.Join(dir, name+".log")
	var cases strings.Builder
	for _, tok := range failOn {
		fmt.Fprintf(&cases, "  *\" %s \"*) exit 1 ;;\n", tok)
	}

	body := fmt.Sprintf(`echo "$*" >> %q
case " $* " in
%s  *) ;;
esac
out=""
prev=""
for a in "$@"; do
  if [ "$prev" = "-o" ]; then out="$a"; fi
  prev="$a"
done
if [ -n "$out" ]; then echo bitcode > "$out"; fi
`, log, cases.String())

	return &FakeTool{
		Path: WriteScript(t, dir, name, body),
		Log:  log,
	}
}

// Invocations returns the recorded argv lines in call order.
func (f *FakeTool) Invocations(t *testing.T) []string {
	t.Helper()

	data, err := os.ReadFile(f.Log)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatalf("Failed to read tool log %s: %v", f.Log, err)
	}
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

// Reset forgets recorded invocations.
func (f *FakeTool) Reset(t *testing.T) {
	t.Helper()

	if err := os.Remove(f.Log); err != nil && !os.IsNotExist(err) {
		t.Fatalf("Failed to reset tool log %s: %v", f.Log, err)
	}
}
