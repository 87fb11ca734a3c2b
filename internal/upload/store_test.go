package upload

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"stock-service/pkg/config"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	store := NewStore(&config.UploadConfig{
		Dir:          dir,
		PublicPrefix: "/uploads",
		MaxSizeBytes: 1024,
	})
	return store, dir
}

func TestSaveAndDelete(t *testing.T) {
	store, dir := newTestStore(t)

	publicPath, err := store.Save("photo.PNG", 10, strings.NewReader("0123456789"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasPrefix(publicPath, "/uploads/") || !strings.HasSuffix(publicPath, ".png") {
		t.Fatalf("unexpected public path %q", publicPath)
	}

	stored := filepath.Join(dir, strings.TrimPrefix(publicPath, "/uploads/"))
	if _, err := os.Stat(stored); err != nil {
		t.Fatalf("stored file missing: %v", err)
	}

	if err := store.Delete(publicPath); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(stored); !os.IsNotExist(err) {
		t.Fatalf("file still present after delete")
	}
}

func TestSaveRejectsOversizedFile(t *testing.T) {
	store, _ := newTestStore(t)

	if _, err := store.Save("big.jpg", 2048, strings.NewReader("x")); !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("got %v, want ErrFileTooLarge", err)
	}
}

func TestSaveRejectsUnknownExtension(t *testing.T) {
	store, _ := newTestStore(t)

	for _, name := range []string{"script.sh", "archive.zip", "noextension", "double.png.exe"} {
		if _, err := store.Save(name, 10, strings.NewReader("x")); !errors.Is(err, ErrUnsupportedType) {
			t.Fatalf("Save(%q): got %v, want ErrUnsupportedType", name, err)
		}
	}
}

func TestDeleteRejectsTraversal(t *testing.T) {
	store, _ := newTestStore(t)

	for _, p := range []string{
		"/uploads/../secret.txt",
		"/uploads/../../etc/passwd",
		"/elsewhere/file.png",
		"/uploads",
	} {
		if err := store.Delete(p); !errors.Is(err, ErrInvalidPath) {
			t.Fatalf("Delete(%q): got %v, want ErrInvalidPath", p, err)
		}
	}
}

func TestDeleteMissingFile(t *testing.T) {
	store, _ := newTestStore(t)

	if err := store.Delete("/uploads/nope.png"); !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("got %v, want ErrFileNotFound", err)
	}
}
