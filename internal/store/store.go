// Package store is the client's persistent local state: the token pair,
// the last-known location, and cached payment snapshots for offline
// listing. Access is last-write-wins; the CLI is single-process.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kirayehq/kiraye-cli/internal/domain"
)

// ErrNotFound is returned when a requested record is absent.
var ErrNotFound = errors.New("store: not found")

type credentialRecord struct {
	ID            uint `gorm:"primaryKey"`
	AccessCipher  []byte
	RefreshCipher []byte
	UpdatedAt     time.Time
}

type locationRecord struct {
	ID        uint `gorm:"primaryKey"`
	Latitude  float64
	Longitude float64
	SavedAt   time.Time
}

type paymentSnapshot struct {
	PaymentID string `gorm:"primaryKey;size:64"`
	Payload   []byte
	FetchedAt time.Time `gorm:"index"`
}

// Store wraps the local sqlite database.
type Store struct {
	db     *gorm.DB
	sealer *sealer
}

// Open creates or opens the database under dir, migrating as needed.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	sealer, err := newSealer(dir)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(sqlite.Open(filepath.Join(dir, "kiraye.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open local db: %w", err)
	}
	if err := db.AutoMigrate(&credentialRecord{}, &locationRecord{}, &paymentSnapshot{}); err != nil {
		return nil, fmt.Errorf("migrate local db: %w", err)
	}
	return &Store{db: db, sealer: sealer}, nil
}

// SaveTokens seals and persists the token pair, replacing any previous one.
func (s *Store) SaveTokens(access, refresh string) error {
	accessCipher, err := s.sealer.seal([]byte(access))
	if err != nil {
		return err
	}
	refreshCipher, err := s.sealer.seal([]byte(refresh))
	if err != nil {
		return err
	}
	rec := credentialRecord{ID: 1, AccessCipher: accessCipher, RefreshCipher: refreshCipher, UpdatedAt: time.Now().UTC()}
	return s.db.Save(&rec).Error
}

// LoadTokens returns the stored token pair, or empty strings when absent.
func (s *Store) LoadTokens() (string, string, error) {
	var rec credentialRecord
	if err := s.db.First(&rec, 1).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", nil
		}
		return "", "", err
	}
	access, err := s.sealer.open(rec.AccessCipher)
	if err != nil {
		return "", "", fmt.Errorf("unseal access token: %w", err)
	}
	refresh, err := s.sealer.open(rec.RefreshCipher)
	if err != nil {
		return "", "", fmt.Errorf("unseal refresh token: %w", err)
	}
	return string(access), string(refresh), nil
}

// ClearTokens removes the stored token pair.
func (s *Store) ClearTokens() error {
	return s.db.Delete(&credentialRecord{}, 1).Error
}

// SaveLocation caches the last-known geolocation.
func (s *Store) SaveLocation(loc domain.Location) error {
	rec := locationRecord{ID: 1, Latitude: loc.Latitude, Longitude: loc.Longitude, SavedAt: time.Now().UTC()}
	return s.db.Save(&rec).Error
}

// LoadLocation returns the cached geolocation, ErrNotFound when absent.
func (s *Store) LoadLocation() (*domain.Location, error) {
	var rec locationRecord
	if err := s.db.First(&rec, 1).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &domain.Location{Latitude: rec.Latitude, Longitude: rec.Longitude, SavedAt: rec.SavedAt}, nil
}

// CachePayments stores payment snapshots for offline listing.
func (s *Store) CachePayments(payments []domain.Payment) error {
	now := time.Now().UTC()
	for _, p := range payments {
		payload, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("encode payment %s: %w", p.ID, err)
		}
		rec := paymentSnapshot{PaymentID: p.ID, Payload: payload, FetchedAt: now}
		if err := s.db.Save(&rec).Error; err != nil {
			return err
		}
	}
	return nil
}

// CachedPayments returns the stored snapshots, most recently fetched first.
func (s *Store) CachedPayments() ([]domain.Payment, error) {
	var recs []paymentSnapshot
	if err := s.db.Order("fetched_at desc").Find(&recs).Error; err != nil {
		return nil, err
	}
	payments := make([]domain.Payment, 0, len(recs))
	for _, rec := range recs {
		var p domain.Payment
		if err := json.Unmarshal(rec.Payload, &p); err != nil {
			return nil, fmt.Errorf("decode payment %s: %w", rec.PaymentID, err)
		}
		payments = append(payments, p)
	}
	return payments, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
