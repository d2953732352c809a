package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// documentRow is the relational shape of a document: the collection
// name, a uuid identifier and the fields as a JSON blob.
type documentRow struct {
	ID         string `gorm:"primaryKey;size:36"`
	Collection string `gorm:"index;not null"`
	Data       string `gorm:"not null"`
	CreatedAt  time.Time
}

func (documentRow) TableName() string { return "documents" }

type gormStore struct {
	db *gorm.DB
}

func newGormStore(databaseURL string) (*gormStore, error) {
	var dialector gorm.Dialector

	if strings.HasPrefix(databaseURL, "postgres://") {
		dialector = postgres.Open(strings.TrimPrefix(databaseURL, "postgres://"))
		log.Println("Connecting to PostgreSQL database...")
	} else {
		dsn := strings.TrimPrefix(databaseURL, "sqlite://")
		dialector = sqlite.Open(dsn)
		log.Println("Connecting to SQLite database at", dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // Be quiet by default
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&documentRow{}); err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	log.Println("Database connection established.")
	return &gormStore{db: db}, nil
}

func (s *gormStore) Add(ctx context.Context, collection string, doc any) (string, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	row := documentRow{
		ID:         uuid.NewString(),
		Collection: collection,
		Data:       string(data),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return "", err
	}
	return row.ID, nil
}

func (s *gormStore) Get(ctx context.Context, collection, id string) (Document, error) {
	var row documentRow
	err := s.db.WithContext(ctx).
		Where("collection = ? AND id = ?", collection, id).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.document()
}

func (s *gormStore) QueryByField(ctx context.Context, collection, field string, value any) ([]Document, error) {
	// The documents live as opaque JSON, so equality queries are an
	// unindexed scan of the collection. Fine at this scale.
	docs, err := s.ListAll(ctx, collection)
	if err != nil {
		return nil, err
	}
	var matched []Document
	for _, doc := range docs {
		if doc[field] == value {
			matched = append(matched, doc)
		}
	}
	return matched, nil
}

func (s *gormStore) ListAll(ctx context.Context, collection string) ([]Document, error) {
	var rows []documentRow
	err := s.db.WithContext(ctx).
		Where("collection = ?", collection).
		Order("created_at").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	docs := make([]Document, 0, len(rows))
	for _, row := range rows {
		doc, err := row.document()
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s *gormStore) Close(context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (r documentRow) document() (Document, error) {
	var doc Document
	if err := json.Unmarshal([]byte(r.Data), &doc); err != nil {
		return nil, err
	}
	doc["id"] = r.ID
	return doc, nil
}
