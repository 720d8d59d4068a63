// Package journal keeps a local append-only record of migration runs.
// It exists for operators answering "when did we last sync this item"
// without querying the store; losing it loses nothing but history.
package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var runsBucket = []byte("runs")

// Record is one journal entry.
type Record struct {
	Time     time.Time `json:"time"`
	File     string    `json:"file"`
	Vault    string    `json:"vault"`
	Item     string    `json:"item"`
	Secrets  int       `json:"secrets"`
	Plain    int       `json:"plain"`
	DryRun   bool      `json:"dry_run"`
	Template string    `json:"template_path"`
}

// Journal provides bbolt-backed storage of run records.
type Journal struct {
	db *bolt.DB
}

// Open opens or creates the journal database, creating parent
// directories as needed.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating journal directory: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}
	return &Journal{db: db}, nil
}

// Close closes the database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Append stores one record keyed by its timestamp.
func (j *Journal) Append(rec Record) error {
	if rec.Time.IsZero() {
		rec.Time = time.Now()
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return j.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(runsBucket)
		if err != nil {
			return err
		}
		// Fixed-width nanosecond keys sort chronologically under
		// bbolt's byte order.
		return b.Put([]byte(fmt.Sprintf("%020d", rec.Time.UnixNano())), data)
	})
}

// List returns all records in chronological order.
func (j *Journal) List() ([]Record, error) {
	var records []Record
	err := j.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(runsBucket)
		if b == nil {
			return nil
		}
		return b.ForEach(func(_, v []byte) error {
			var rec Record
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("corrupt journal record: %w", err)
			}
			records = append(records, rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}
