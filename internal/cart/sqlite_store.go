package cart

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	pkgerrors "github.com/chowpack/chowpack-engine/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// cartRecord is the single-row-per-owner persistence shape. The pack tree is
// stored as JSON rather than normalized tables; the engine always reads and
// writes the whole aggregate.
type cartRecord struct {
	OwnerID   string `gorm:"primaryKey;size:64"`
	Payload   string `gorm:"type:text"`
	UpdatedAt time.Time
}

func (cartRecord) TableName() string { return "cart_states" }

// SQLiteStore is the embedded-database alternative to Redis, for deployments
// without a cache tier.
type SQLiteStore struct {
	db *gorm.DB
}

func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	if dsn == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "sqlite dsn is required")
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "opening sqlite store")
	}
	if err := db.AutoMigrate(&cartRecord{}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "migrating cart store")
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load(ctx context.Context, ownerID string) (*State, error) {
	var record cartRecord
	err := s.db.WithContext(ctx).First(&record, "owner_id = ?", ownerID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStateNotFound
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart state")
	}
	var state State
	if err := json.Unmarshal([]byte(record.Payload), &state); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decoding cart state")
	}
	return &state, nil
}

func (s *SQLiteStore) Save(ctx context.Context, ownerID string, state *State) error {
	if state == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart state is required")
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding cart state")
	}
	record := cartRecord{OwnerID: ownerID, Payload: string(raw), UpdatedAt: time.Now().UTC()}
	err = s.db.WithContext(ctx).Save(&record).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving cart state")
	}
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context, ownerID string) error {
	err := s.db.WithContext(ctx).Delete(&cartRecord{}, "owner_id = ?", ownerID).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clearing cart state")
	}
	return nil
}
