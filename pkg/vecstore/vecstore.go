// Package vecstore 基于 SQLite 的图片记录与向量存储。
// 每条图片记录与其向量一一对应：两者在同一事务中写入、随记录一起删除，
// 读取时使用内连接，缺少向量的记录不会出现在结果中。
package vecstore

import (
	"context"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Image 图片记录，filename 为去重键，重复入库时覆盖旧记录
type Image struct {
	ID           int64  `gorm:"primaryKey" json:"id"`
	Filename     string `gorm:"uniqueIndex;not null" json:"filename"`
	FilePath     string `gorm:"not null" json:"file_path"`
	Silhouette   string `json:"silhouette"`
	Length       string `json:"length"`
	SleeveType   string `json:"sleeve_type"`
	Color        string `json:"color"`
	MetadataJSON string `gorm:"column:metadata_json;not null" json:"-"`
}

// TableName 指定表名
func (Image) TableName() string { return "images" }

// Embedding 向量行，按 image_id 与图片记录一一对应，只做整体替换
type Embedding struct {
	ImageID int64  `gorm:"primaryKey;column:image_id"`
	Vector  []byte `gorm:"not null"`
}

// TableName 指定表名
func (Embedding) TableName() string { return "embeddings" }

// Record 图片记录与解码后的向量
type Record struct {
	Image
	Vector []float32
}

// AttributeFilter 属性过滤条件：类目名到要求值的映射，多个条件之间为 AND 关系
type AttributeFilter map[string]string

// 允许作为过滤条件的列，固定顺序保证生成的 SQL 可复现
var filterColumns = []string{"silhouette", "length", "sleeve_type", "color"}

// Store 向量存储句柄
type Store struct {
	db *gorm.DB
}

// Open 打开数据库连接。
// 连接数限制为 1，保证 Upsert 在同一句柄上串行执行。
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access underlying connection: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	return &Store{db: db}, nil
}

// Init 建立表结构。必须在任何读写操作之前显式调用，失败视为致命错误。
func (s *Store) Init(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&Image{}, &Embedding{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Upsert 在同一事务中写入图片记录与向量。
// 记录按 filename 覆盖并复用已有 id，向量按 id 整体替换，
// 并发读取方不可能观察到只有记录没有向量的中间状态。
func (s *Store) Upsert(ctx context.Context, rec Image, vector []float32) (int64, error) {
	var id int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := tx.Raw(`
			INSERT INTO images (filename, file_path, silhouette, length, sleeve_type, color, metadata_json)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(filename) DO UPDATE SET
				file_path = excluded.file_path,
				silhouette = excluded.silhouette,
				length = excluded.length,
				sleeve_type = excluded.sleeve_type,
				color = excluded.color,
				metadata_json = excluded.metadata_json
			RETURNING id`,
			rec.Filename, rec.FilePath, rec.Silhouette, rec.Length,
			rec.SleeveType, rec.Color, rec.MetadataJSON,
		).Row()
		if err := row.Scan(&id); err != nil {
			return fmt.Errorf("failed to upsert image: %w", err)
		}

		if err := tx.Exec(`
			INSERT INTO embeddings (image_id, vector) VALUES (?, ?)
			ON CONFLICT(image_id) DO UPDATE SET vector = excluded.vector`,
			id, encodeVector(vector),
		).Error; err != nil {
			return fmt.Errorf("failed to upsert embedding: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// FetchAll 返回全部记录及其向量，按 id 升序。
// 升序是确定性的，排名阶段的稳定排序依赖该顺序做平分裁决。
func (s *Store) FetchAll(ctx context.Context) ([]Record, error) {
	return s.fetchJoined(ctx, "", nil)
}

// FetchByAttributes 按属性过滤返回记录及其向量，所有条件必须同时精确匹配。
// 无匹配返回空切片，不是错误；词表之外的键被忽略。
func (s *Store) FetchByAttributes(ctx context.Context, filters AttributeFilter) ([]Record, error) {
	var clause string
	var args []any
	for _, column := range filterColumns {
		value, ok := filters[column]
		if !ok || value == "" {
			continue
		}
		if clause != "" {
			clause += " AND "
		}
		clause += fmt.Sprintf("images.%s = ?", column)
		args = append(args, value)
	}
	return s.fetchJoined(ctx, clause, args)
}

// ListAll 返回全部记录元数据，不含向量，顺序与 FetchAll 一致
func (s *Store) ListAll(ctx context.Context) ([]Image, error) {
	var images []Image
	if err := s.db.WithContext(ctx).Order("id").Find(&images).Error; err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	return images, nil
}

// joinedRow 连接查询的扫描目标
type joinedRow struct {
	Image
	Vector []byte `gorm:"column:vector"`
}

func (s *Store) fetchJoined(ctx context.Context, whereClause string, args []any) ([]Record, error) {
	query := `
		SELECT images.*, embeddings.vector FROM images
		JOIN embeddings ON images.id = embeddings.image_id`
	if whereClause != "" {
		query += " WHERE " + whereClause
	}
	query += " ORDER BY images.id"

	var rows []joinedRow
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch images: %w", err)
	}

	records := make([]Record, 0, len(rows))
	for _, r := range rows {
		records = append(records, Record{Image: r.Image, Vector: decodeVector(r.Vector)})
	}
	return records, nil
}

// Close 关闭数据库连接
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
