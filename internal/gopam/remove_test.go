package gopam

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/gopam/gopam/log"
)

func writeMiscFixture(t *testing.T, s *State, pkg PkgName) string {
	t.Helper()
	miscPath := filepath.Join(t.TempDir(), "etc", string(pkg)+".conf")
	if err := os.MkdirAll(filepath.Dir(miscPath), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(miscPath, []byte("config"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := writeInstallDescriptor(s.installDescrPath(pkg), &InstallDescriptor{
		Misc: []FilePair{{Src: string(pkg) + ".conf", Dst: miscPath}},
	}); err != nil {
		t.Fatal(err)
	}
	return miscPath
}

func TestRemoveOneDeclinedMiscPromptKeepsFile(t *testing.T) {
	s := newTestState(t, newNVSet(NV{Name: "foo", Version: "1.0"}))
	logger := log.New(io.Discard)
	miscPath := writeMiscFixture(t, s, "foo")

	var asked string
	decline := Confirm(func(prompt string) bool {
		asked = prompt
		return false
	})
	if err := s.removeOne(NV{Name: "foo", Version: "1.0"}, logger, decline); err != nil {
		t.Fatal(err)
	}
	if asked == "" {
		t.Fatal("expected removeOne to prompt before deleting the misc file")
	}
	if ok, _ := isRegular(miscPath); !ok {
		t.Fatal("misc file should survive a declined prompt")
	}
}

func TestRemoveOneAcceptedMiscPromptDeletesFile(t *testing.T) {
	s := newTestState(t, newNVSet(NV{Name: "bar", Version: "1.0"}))
	logger := log.New(io.Discard)
	miscPath := writeMiscFixture(t, s, "bar")

	accept := Confirm(func(string) bool { return true })
	if err := s.removeOne(NV{Name: "bar", Version: "1.0"}, logger, accept); err != nil {
		t.Fatal(err)
	}
	if ok, _ := isRegular(miscPath); ok {
		t.Fatal("misc file should be removed once the prompt is accepted")
	}
}
