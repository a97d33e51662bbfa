// Package store persists audit records in MySQL through gorm.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/bearslyricattack/CompliAd/pkg/logger"
	"github.com/bearslyricattack/CompliAd/pkg/models"
)

// ErrNotFound is returned when no record matches the requested id.
var ErrNotFound = errors.New("audit record not found")

// AuditRow is the persisted shape of one audit. The report is stored
// as a JSON document.
type AuditRow struct {
	ID            string    `gorm:"primaryKey;size:36"       json:"id"`
	UserID        string    `gorm:"size:255;index"           json:"userId"`
	ContentType   string    `gorm:"size:32"                  json:"contentType"`
	OriginalInput string    `gorm:"type:text"                json:"originalInput"`
	ExtractedText string    `gorm:"type:mediumtext"          json:"extractedText"`
	Transcript    string    `gorm:"type:mediumtext"          json:"transcript"`
	AuditResult   string    `gorm:"type:mediumtext"          json:"auditResult"`
	CreatedAt     time.Time `gorm:"index"                    json:"createdAt"`
}

// TableName keeps the table name stable across gorm versions.
func (AuditRow) TableName() string { return "audit_records" }

// MySQL is the gorm-backed audit store. One instance per process, safe
// for concurrent use.
type MySQL struct {
	db  *gorm.DB
	log logger.Logger
}

// Open connects to MySQL and migrates the audit table.
func Open(dsn string) (*MySQL, error) {
	if dsn == "" {
		return nil, errors.New("database dsn is empty")
	}
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connect mysql: %w", err)
	}
	if err := db.AutoMigrate(&AuditRow{}); err != nil {
		return nil, fmt.Errorf("migrate audit table: %w", err)
	}
	return &MySQL{
		db:  db,
		log: logger.GetLogger().WithField("component", "store"),
	}, nil
}

// Save appends one audit record.
func (s *MySQL) Save(ctx context.Context, record *models.AuditRecord) error {
	if record == nil {
		return errors.New("nil audit record")
	}
	row, err := toRow(record)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("save audit record: %w", err)
	}
	s.log.Debug("Audit record saved", logger.Fields{
		"audit_id": record.ID,
		"user_id":  record.UserID,
	})
	return nil
}

// Get returns one audit record by id.
func (s *MySQL) Get(ctx context.Context, id string) (*models.AuditRecord, error) {
	var row AuditRow
	err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load audit record: %w", err)
	}
	return fromRow(&row)
}

// List returns a user's audit history, newest first.
func (s *MySQL) List(ctx context.Context, userID string, limit, skip int) ([]*models.AuditRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if skip < 0 {
		skip = 0
	}
	var rows []AuditRow
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(skip).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list audit records: %w", err)
	}

	records := make([]*models.AuditRecord, 0, len(rows))
	for i := range rows {
		record, err := fromRow(&rows[i])
		if err != nil {
			s.log.Warn("Skipping unreadable audit row", logger.Fields{
				"audit_id": rows[i].ID,
				"error":    err.Error(),
			})
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

// Close releases the underlying connection pool.
func (s *MySQL) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func toRow(record *models.AuditRecord) (*AuditRow, error) {
	resultJSON, err := json.Marshal(record.Report)
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	return &AuditRow{
		ID:            record.ID,
		UserID:        record.UserID,
		ContentType:   record.ContentType,
		OriginalInput: record.OriginalInput,
		ExtractedText: record.ExtractedText,
		Transcript:    record.Transcript,
		AuditResult:   string(resultJSON),
		CreatedAt:     record.CreatedAt,
	}, nil
}

func fromRow(row *AuditRow) (*models.AuditRecord, error) {
	var rep models.Report
	if err := json.Unmarshal([]byte(row.AuditResult), &rep); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &models.AuditRecord{
		ID:            row.ID,
		UserID:        row.UserID,
		ContentType:   row.ContentType,
		OriginalInput: row.OriginalInput,
		ExtractedText: row.ExtractedText,
		Transcript:    row.Transcript,
		Report:        &rep,
		CreatedAt:     row.CreatedAt,
	}, nil
}
