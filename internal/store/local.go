// Package store provides the durable per-clinician queue store used when the
// engine runs without a remote queue service: one row per clinician holding
// the full ordered snapshot, plus a change broadcast observable by other
// open views in the same process.
package store

import (
	"encoding/json"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"clinic-queue-server/internal/models"
)

// queueSnapshot is the persisted form: the whole ordered list serialized as
// one JSON array. The last writer's snapshot wins; there is no row-level
// merging.
type queueSnapshot struct {
	DoctorID  string `gorm:"primaryKey;size:36"`
	Items     []byte `gorm:"type:blob"`
	UpdatedAt time.Time
}

func (queueSnapshot) TableName() string { return "queue_snapshots" }

// Store is the local durable queue backend's persistence layer.
type Store struct {
	db  *gorm.DB
	bus *Bus
}

// Open opens (or creates) the sqlite store at path.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&queueSnapshot{}); err != nil {
		return nil, err
	}
	return &Store{db: db, bus: NewBus()}, nil
}

// Read returns the stored snapshot for doctorID. An absent or unreadable
// snapshot degrades to an empty queue; Read never fails.
func (s *Store) Read(doctorID string) []models.QueueItem {
	var snap queueSnapshot
	if err := s.db.First(&snap, "doctor_id = ?", doctorID).Error; err != nil {
		return []models.QueueItem{}
	}
	var items []models.QueueItem
	if err := json.Unmarshal(snap.Items, &items); err != nil {
		return []models.QueueItem{}
	}
	return items
}

// Write replaces the snapshot for doctorID and broadcasts the new value.
func (s *Store) Write(doctorID string, items []models.QueueItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	snap := queueSnapshot{DoctorID: doctorID, Items: data, UpdatedAt: time.Now()}
	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "doctor_id"}},
		UpdateAll: true,
	}).Create(&snap).Error; err != nil {
		return err
	}
	s.bus.Publish(doctorID, items)
	return nil
}

// Subscribe registers fn for every write under doctorID; the returned cancel
// is idempotent.
func (s *Store) Subscribe(doctorID string, fn func([]models.QueueItem)) func() {
	return s.bus.Subscribe(doctorID, fn)
}
