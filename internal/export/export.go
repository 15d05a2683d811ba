// Package export writes an encrypted snapshot of the database to a local
// file, and restores from one. Snapshots never leave the device; encryption
// guards the exported file itself (e.g. when copied to removable media).
package export

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
)

// Export checkpoints the live database into a temporary snapshot and encrypts
// it to dstPath with a key derived from the passphrase.
func Export(db *sql.DB, dstPath, passphrase string) error {
	tmpDir, err := os.MkdirTemp("", "notedeck-export-*")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	snapshot := filepath.Join(tmpDir, "snapshot.db")
	// VACUUM INTO produces a consistent single-file copy even with WAL on.
	if _, err := db.Exec(`VACUUM INTO ?`, snapshot); err != nil {
		return fmt.Errorf("snapshot database: %w", err)
	}

	salt, err := GenerateSalt()
	if err != nil {
		return err
	}
	if err := EncryptFile(snapshot, dstPath, passphrase, salt); err != nil {
		return fmt.Errorf("encrypt snapshot: %w", err)
	}
	return nil
}

// Import decrypts an exported snapshot to dstPath. The caller reopens the
// database from the restored file.
func Import(srcPath, dstPath, passphrase string) error {
	if err := DecryptFile(srcPath, dstPath, passphrase); err != nil {
		return fmt.Errorf("decrypt snapshot: %w", err)
	}
	return nil
}
