package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jharlan/notedeck/internal/database"
	"github.com/jharlan/notedeck/internal/model"
	"github.com/jharlan/notedeck/internal/store"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "plain.txt")
	enc := filepath.Join(dir, "plain.enc")
	dec := filepath.Join(dir, "plain.dec")

	if err := os.WriteFile(src, []byte("secret notes"), 0600); err != nil {
		t.Fatalf("write source: %v", err)
	}

	salt, err := GenerateSalt()
	if err != nil {
		t.Fatalf("generate salt: %v", err)
	}
	if err := EncryptFile(src, enc, "hunter2", salt); err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if err := DecryptFile(enc, dec, "hunter2"); err != nil {
		t.Fatalf("decrypt: %v", err)
	}

	got, _ := os.ReadFile(dec)
	if string(got) != "secret notes" {
		t.Errorf("round trip = %q", got)
	}
}

func TestDecryptWrongPassphrase(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "plain.txt")
	enc := filepath.Join(dir, "plain.enc")

	os.WriteFile(src, []byte("data"), 0600)
	salt, _ := GenerateSalt()
	if err := EncryptFile(src, enc, "right", salt); err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	if err := DecryptFile(enc, filepath.Join(dir, "out"), "wrong"); err == nil {
		t.Error("expected authentication failure with wrong passphrase")
	}
}

func TestExportImportSnapshot(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "live.db")

	db, err := database.Open(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	ns := store.NewNoteStore(db)
	note, err := ns.Upsert(&model.Note{Title: "survives export"})
	if err != nil {
		t.Fatalf("seed note: %v", err)
	}

	encPath := filepath.Join(dir, "snapshot.ndk")
	if err := Export(db, encPath, "passphrase"); err != nil {
		t.Fatalf("export: %v", err)
	}
	db.Close()

	restoredPath := filepath.Join(dir, "restored.db")
	if err := Import(encPath, restoredPath, "passphrase"); err != nil {
		t.Fatalf("import: %v", err)
	}

	restored, err := database.Open(restoredPath)
	if err != nil {
		t.Fatalf("open restored db: %v", err)
	}
	defer restored.Close()

	got, err := store.NewNoteStore(restored).GetByID(note.ID)
	if err != nil {
		t.Fatalf("get restored note: %v", err)
	}
	if got == nil || got.Title != "survives export" {
		t.Errorf("restored note = %+v", got)
	}
}
