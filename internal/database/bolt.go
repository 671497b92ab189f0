// Package database provides data persistence using bbolt: the user
// configuration blob and the session-scoped aggregated-rows cache.
package database

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"mediadeck/internal/config"
	"mediadeck/internal/models"
)

const (
	dbFileMode = 0600
	dbDirMode  = 0755

	defaultDBFile = "mediadeck.db"
)

var (
	settingsBucket = []byte("settings")
	rowsBucket     = []byte("rows")

	settingsKey = []byte("settings")
)

// persistedRows is the stored shape of one cached listing.
type persistedRows struct {
	Rows      []models.AggregatedRow `json:"rows"`
	Signature string                 `json:"signature"`
}

// Bolt implements config.Store and the result cache's Persister over a
// single bbolt file.
type Bolt struct {
	db *bolt.DB
}

// NewBolt opens (creating if necessary) the database at dbPath. An empty
// path uses the default file in the current directory.
func NewBolt(dbPath string) (*Bolt, error) {
	if dbPath == "" {
		dbPath = filepath.Join(".", defaultDBFile)
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), dbDirMode); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := bolt.Open(dbPath, dbFileMode, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{settingsBucket, rowsBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create buckets: %w", err)
	}

	return &Bolt{db: db}, nil
}

// Close closes the database.
func (b *Bolt) Close() error {
	return b.db.Close()
}

// Load reads the persisted settings. A missing blob yields empty settings.
func (b *Bolt) Load() (*config.Settings, error) {
	settings := &config.Settings{}
	err := b.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(settingsBucket).Get(settingsKey)
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, settings)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return settings, nil
}

// Save writes the settings blob atomically.
func (b *Bolt) Save(settings *config.Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	err = b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(settingsBucket).Put(settingsKey, data)
	})
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// SaveRows persists one cached listing with its signature.
func (b *Bolt) SaveRows(kind string, rows []models.AggregatedRow, signature string) error {
	data, err := json.Marshal(persistedRows{Rows: rows, Signature: signature})
	if err != nil {
		return fmt.Errorf("failed to encode rows: %w", err)
	}

	err = b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(rowsBucket).Put([]byte(kind), data)
	})
	if err != nil {
		return fmt.Errorf("failed to save rows: %w", err)
	}
	return nil
}

// LoadRows reads one cached listing and the signature it was produced under.
func (b *Bolt) LoadRows(kind string) ([]models.AggregatedRow, string, error) {
	var stored persistedRows
	err := b.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(rowsBucket).Get([]byte(kind))
		if data == nil {
			return fmt.Errorf("no cached rows for %q", kind)
		}
		return json.Unmarshal(data, &stored)
	})
	if err != nil {
		return nil, "", err
	}
	return stored.Rows, stored.Signature, nil
}

// DeleteRows drops one cached listing.
func (b *Bolt) DeleteRows(kind string) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(rowsBucket).Delete([]byte(kind))
	})
}
