// Package doccache stores binary documents for offline viewing under a hard
// total-size ceiling. Admission evicts the oldest entries first (FIFO by
// insertion time, deliberately not LRU) until the new entry fits.
package doccache

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jharlan/notedeck/internal/model"
)

type Cache struct {
	db       *sql.DB
	capacity int64
	logger   *slog.Logger
	now      func() time.Time
}

func New(db *sql.DB, capacity int64, logger *slog.Logger) *Cache {
	return &Cache{
		db:       db,
		capacity: capacity,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// DocumentID derives a stable id from the file's name and size, so reopening
// the same file resolves to the same cache slot.
func DocumentID(fileName string, byteSize int64) string {
	return fmt.Sprintf("%s_%d", fileName, byteSize)
}

// FormatSize renders a byte count for display, e.g. "40 MiB".
func FormatSize(n int64) string {
	return humanize.IBytes(uint64(n))
}

func (c *Cache) IsCached(id string) (bool, error) {
	var one int
	err := c.db.QueryRow(`SELECT 1 FROM documents WHERE id = ?`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check cached document: %w", err)
	}
	return true, nil
}

// Get returns the document payload, or nil if the id is not cached. Reads do
// not refresh the entry's age.
func (c *Cache) Get(id string) ([]byte, error) {
	var payload []byte
	err := c.db.QueryRow(`SELECT payload FROM documents WHERE id = ?`, id).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cached document: %w", err)
	}
	return payload, nil
}

// List returns metadata for all cached documents, oldest first, without
// payloads.
func (c *Cache) List() ([]model.CachedDocument, error) {
	rows, err := c.db.Query(`SELECT id, file_name, size, cached_at FROM documents ORDER BY cached_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list cached documents: %w", err)
	}
	defer rows.Close()

	var docs []model.CachedDocument
	for rows.Next() {
		var d model.CachedDocument
		if err := rows.Scan(&d.ID, &d.FileName, &d.Size, &d.CachedAt); err != nil {
			return nil, fmt.Errorf("scan cached document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// TotalSize returns the byte sum of all live entries.
func (c *Cache) TotalSize() (int64, error) {
	var total int64
	if err := c.db.QueryRow(`SELECT COALESCE(SUM(size), 0) FROM documents`).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum cached documents: %w", err)
	}
	return total, nil
}

func (c *Cache) Remove(id string) error {
	if _, err := c.db.Exec(`DELETE FROM documents WHERE id = ?`, id); err != nil {
		return fmt.Errorf("remove cached document: %w", err)
	}
	return nil
}

// Put admits a document, evicting oldest entries until it fits. The whole
// admission pass runs in one transaction, so no reader observes a partial
// eviction. An entry larger than the entire capacity is still admitted after
// everything else is evicted; the cache logs the overage rather than reject.
func (c *Cache) Put(d *model.CachedDocument) error {
	if d.FileName == "" {
		return fmt.Errorf("put cached document: file name required")
	}
	d.Size = int64(len(d.Payload))
	if d.ID == "" {
		d.ID = DocumentID(d.FileName, d.Size)
	}
	d.CachedAt = c.now()

	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("put cached document: %w", err)
	}
	defer tx.Rollback()

	// Re-putting the same document replaces its slot, so its old size does
	// not count against the headroom.
	var total int64
	if err := tx.QueryRow(`SELECT COALESCE(SUM(size), 0) FROM documents WHERE id != ?`, d.ID).Scan(&total); err != nil {
		return fmt.Errorf("put cached document: %w", err)
	}

	evicted := 0
	for total+d.Size > c.capacity {
		var oldID string
		var oldSize int64
		err := tx.QueryRow(
			`SELECT id, size FROM documents WHERE id != ? ORDER BY cached_at ASC, id ASC LIMIT 1`,
			d.ID,
		).Scan(&oldID, &oldSize)
		if err == sql.ErrNoRows {
			break
		}
		if err != nil {
			return fmt.Errorf("select eviction candidate: %w", err)
		}
		if _, err := tx.Exec(`DELETE FROM documents WHERE id = ?`, oldID); err != nil {
			return fmt.Errorf("evict cached document: %w", err)
		}
		total -= oldSize
		evicted++
	}

	if total+d.Size > c.capacity {
		c.logger.Warn("cached document exceeds capacity, admitting anyway",
			"id", d.ID, "size", FormatSize(d.Size), "capacity", FormatSize(c.capacity))
	}

	_, err = tx.Exec(
		`INSERT INTO documents (id, file_name, size, payload, cached_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   file_name = excluded.file_name, size = excluded.size,
		   payload = excluded.payload, cached_at = excluded.cached_at`,
		d.ID, d.FileName, d.Size, d.Payload, d.CachedAt,
	)
	if err != nil {
		return fmt.Errorf("insert cached document: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("put cached document: %w", err)
	}

	if evicted > 0 {
		c.logger.Info("cache eviction", "evicted", evicted, "admitted", d.ID)
	}
	return nil
}
