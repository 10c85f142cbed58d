package jobstore

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"factoryflow/quote-service/internal/model"
)

var tablesBucket = []byte("tables")

// Local is the on-device fallback store: one JSON array of records per
// table name, kept in a bbolt file.
type Local struct {
	db    *bolt.DB
	newID func() (string, error)
	now   func() time.Time
}

// NewLocal prepares the tables bucket in db.
func NewLocal(db *bolt.DB) (*Local, error) {
	err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(tablesBucket)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create tables bucket: %w", err)
	}
	return &Local{db: db, newID: newLocalID, now: time.Now}, nil
}

// newLocalID returns a UUIDv7, whose leading bits are the creation time in
// milliseconds.
func newLocalID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Append adds job to table, assigning an id and created_at when missing.
func (l *Local) Append(table string, job model.Job) (model.Job, error) {
	if job.ID == "" {
		id, err := l.newID()
		if err != nil {
			return model.Job{}, fmt.Errorf("generate local id: %w", err)
		}
		job.ID = id
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = l.now().UTC()
	}

	err := l.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(tablesBucket)
		jobs, err := decodeJobs(b.Get([]byte(table)))
		if err != nil {
			return err
		}
		jobs = append(jobs, job)
		raw, err := json.Marshal(jobs)
		if err != nil {
			return fmt.Errorf("encode %s: %w", table, err)
		}
		return b.Put([]byte(table), raw)
	})
	if err != nil {
		return model.Job{}, err
	}
	return job, nil
}

// List returns the records of table in insertion order.
func (l *Local) List(table string) ([]model.Job, error) {
	var jobs []model.Job
	err := l.db.View(func(tx *bolt.Tx) error {
		var err error
		jobs, err = decodeJobs(tx.Bucket(tablesBucket).Get([]byte(table)))
		return err
	})
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

func decodeJobs(raw []byte) ([]model.Job, error) {
	jobs := make([]model.Job, 0)
	if len(raw) == 0 {
		return jobs, nil
	}
	if err := json.Unmarshal(raw, &jobs); err != nil {
		return nil, fmt.Errorf("decode local records: %w", err)
	}
	return jobs, nil
}
