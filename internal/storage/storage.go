// Package storage provides the durable location store backing the pipeline.
// It uses BoltDB as the underlying engine, with one bucket per view:
// labeled historical locations for training and unlabeled candidates for
// scoring.
//
// Row order is part of the contract. Records are keyed by their zero-padded
// ingest position, so cursor scans return them in exactly the order the
// source file listed them.
package storage

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"site-scout/internal/features"
)

const (
	trainBucket      = "locations_train"      // labeled historical locations
	candidatesBucket = "locations_candidates" // unlabeled candidate locations

	dbFileName = "site-scout.db"
)

// Store provides persistent storage for location records using BoltDB.
type Store struct {
	db *bbolt.DB
}

// New opens (creating if needed) the location database under dataPath.
func New(dataPath string) (*Store, error) {
	dbPath := filepath.Join(dataPath, dbFileName)

	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection gracefully.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// ReplaceTrainingSites atomically replaces the training view with the given
// records. The delete and the reload happen in one transaction, so readers
// never observe a partially loaded view.
func (s *Store) ReplaceTrainingSites(sites []features.LabeledSite) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := recreateBucket(tx, trainBucket)
		if err != nil {
			return err
		}
		for i, site := range sites {
			if err := putIndexed(b, i, site); err != nil {
				return fmt.Errorf("store training site %d: %w", i, err)
			}
		}
		return nil
	})
}

// ReplaceCandidateSites atomically replaces the candidate view.
func (s *Store) ReplaceCandidateSites(sites []features.Site) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := recreateBucket(tx, candidatesBucket)
		if err != nil {
			return err
		}
		for i, site := range sites {
			if err := putIndexed(b, i, site); err != nil {
				return fmt.Errorf("store candidate site %d: %w", i, err)
			}
		}
		return nil
	})
}

// TrainingSites returns every labeled record in ingest order.
func (s *Store) TrainingSites() ([]features.LabeledSite, error) {
	var sites []features.LabeledSite
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(trainBucket))
		if b == nil {
			return fmt.Errorf("view %s has not been ingested", trainBucket)
		}
		return b.ForEach(func(k, v []byte) error {
			var site features.LabeledSite
			if err := json.Unmarshal(v, &site); err != nil {
				return fmt.Errorf("unmarshal training site %s: %w", k, err)
			}
			sites = append(sites, site)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return sites, nil
}

// CandidateSites returns every unlabeled record in ingest order.
func (s *Store) CandidateSites() ([]features.Site, error) {
	var sites []features.Site
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(candidatesBucket))
		if b == nil {
			return fmt.Errorf("view %s has not been ingested", candidatesBucket)
		}
		return b.ForEach(func(k, v []byte) error {
			var site features.Site
			if err := json.Unmarshal(v, &site); err != nil {
				return fmt.Errorf("unmarshal candidate site %s: %w", k, err)
			}
			sites = append(sites, site)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return sites, nil
}

func recreateBucket(tx *bbolt.Tx, name string) (*bbolt.Bucket, error) {
	if tx.Bucket([]byte(name)) != nil {
		if err := tx.DeleteBucket([]byte(name)); err != nil {
			return nil, fmt.Errorf("drop bucket %s: %w", name, err)
		}
	}
	b, err := tx.CreateBucket([]byte(name))
	if err != nil {
		return nil, fmt.Errorf("create bucket %s: %w", name, err)
	}
	return b, nil
}

func putIndexed(b *bbolt.Bucket, i int, record interface{}) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	// Zero-padded keys keep BoltDB's byte order equal to ingest order.
	key := fmt.Sprintf("%010d", i)
	return b.Put([]byte(key), data)
}
