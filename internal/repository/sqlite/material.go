package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Ly-yang/wechat-editor/internal/apperror"
	"github.com/Ly-yang/wechat-editor/internal/model"
)

// CreateMaterial records an asset. Tags are stored as a JSON array.
func (db *DB) CreateMaterial(ctx context.Context, m *model.Material) error {
	if m.Tags == nil {
		m.Tags = []string{}
	}
	tags, err := json.Marshal(m.Tags)
	if err != nil {
		return fmt.Errorf("sqlite: encoding material tags: %w", err)
	}
	m.CreatedAt = db.now()

	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO materials (user_id, type, name, file_path, url, tags, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.UserID,
		string(m.Type),
		m.Name,
		nullString(m.FilePath),
		nullString(m.ExternalURL),
		string(tags),
		m.CreatedAt,
	)
	if err != nil {
		if constraintCode(err) != 0 {
			return apperror.ValidationFailed("type", fmt.Sprintf("cannot store material of type %q", m.Type))
		}
		return fmt.Errorf("sqlite: creating material: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading material id: %w", err)
	}
	m.ID = id
	m.URL = m.ResolveURL()
	return nil
}

// ListMaterials returns the owner's materials of one kind, newest first.
func (db *DB) ListMaterials(ctx context.Context, owner int64, kind model.MaterialKind) ([]model.Material, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, type, name, file_path, url, tags, created_at
		 FROM materials
		 WHERE user_id = ? AND type = ?
		 ORDER BY created_at DESC, id DESC`,
		owner, string(kind),
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing materials: %w", err)
	}
	defer rows.Close()

	materials := []model.Material{}
	for rows.Next() {
		var (
			m        model.Material
			kindStr  string
			filePath sql.NullString
			url      sql.NullString
			tags     string
		)
		if err := rows.Scan(&m.ID, &m.UserID, &kindStr, &m.Name, &filePath, &url, &tags, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning material row: %w", err)
		}
		m.Type = model.MaterialKind(kindStr)
		m.FilePath = filePath.String
		m.ExternalURL = url.String
		m.URL = m.ResolveURL()
		if err := json.Unmarshal([]byte(tags), &m.Tags); err != nil || m.Tags == nil {
			m.Tags = []string{}
		}
		materials = append(materials, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating materials: %w", err)
	}
	return materials, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
