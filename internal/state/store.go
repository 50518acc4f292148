package state

import (
	"log"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/lundberg/patchview/internal/console"
)

// Store is a string key-value store. Values are overwritten whole.
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(keys ...string) error
	Close() error
}

// WithSqlite opens (or creates) a sqlite database file.
func WithSqlite(file string) gorm.Dialector {
	return sqlite.Open(file + "?_pragma=journal_mode(WAL)")
}

// WithSqliteInMemory opens a private in-memory database, gone when the store is closed.
func WithSqliteInMemory() gorm.Dialector {
	return sqlite.Open(":memory:")
}

type sqlSetting struct {
	Name  string `gorm:"primaryKey"`
	Value string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (sqlSetting) TableName() string {
	return "settings"
}

type gormStore struct {
	db *gorm.DB
}

// NewGormStore opens a Store on d. gorm warnings go to c.
func NewGormStore(d gorm.Dialector, c console.Console) (Store, error) {
	var w logger.Writer = c
	if c == nil {
		w = log.New(log.Writer(), "\r\n", log.LstdFlags)
	}
	l := logger.New(w, logger.Config{
		SlowThreshold:             time.Second,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})

	db, err := gorm.Open(d, &gorm.Config{Logger: l})
	if err != nil {
		return nil, errors.Wrap(err, "opening state database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "opening state database")
	}
	// One connection: an in-memory database exists per connection, and writes are tiny.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&sqlSetting{}); err != nil {
		return nil, errors.Wrap(err, "migrating state database")
	}

	return &gormStore{db: db}, nil
}

func (s *gormStore) Get(key string) (string, bool, error) {
	var row sqlSetting
	err := s.db.Where("name = ?", key).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "reading %q", key)
	}
	return row.Value, true, nil
}

func (s *gormStore) Set(key, value string) error {
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&sqlSetting{Name: key, Value: value}).Error
	return errors.Wrapf(err, "writing %q", key)
}

func (s *gormStore) Delete(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	err := s.db.Where("name IN ?", keys).Delete(&sqlSetting{}).Error
	return errors.Wrap(err, "deleting state")
}

func (s *gormStore) Close() error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}
