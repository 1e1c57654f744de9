package store

import (
	"encoding/json"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Store is a named-container byte store. Each collection is read and written
// as a single unit; there is no locking and no transaction, concurrent
// writers race and the last write wins.
type Store interface {
	// Ensure creates the backing container with an empty collection if it
	// does not exist yet. Idempotent.
	Ensure(name string) error
	// Read returns the raw container content.
	Read(name string) ([]byte, error)
	// Write overwrites the container, fully replacing prior content.
	Write(name string, data []byte) error
}

// LoadAll reads the whole collection in storage order. Any read or parse
// failure, including content that is not a JSON array, yields an empty
// slice. Callers must not assume empty means no data exists; the failure is
// logged here because it is never surfaced to them.
func LoadAll[T any](s Store, name string) []T {
	if err := s.Ensure(name); err != nil {
		log.WithFields(log.Fields{
			"collection": name,
			"error":      err,
		}).Warn("unable to initialise collection")
		return nil
	}
	b, err := s.Read(name)
	if err != nil {
		log.WithFields(log.Fields{
			"collection": name,
			"error":      err,
		}).Warn("unable to read collection")
		return nil
	}
	var records []T
	if err := json.Unmarshal(b, &records); err != nil {
		log.WithFields(log.Fields{
			"collection": name,
			"error":      err,
		}).Warn("collection content is not a list, treating as empty")
		return nil
	}
	return records
}

// SaveAll overwrites the whole collection with records. The write is not
// atomic; a crash mid-write can truncate the container.
func SaveAll[T any](s Store, name string, records []T) error {
	if records == nil {
		records = []T{}
	}
	b, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode collection")
	}
	return s.Write(name, b)
}
