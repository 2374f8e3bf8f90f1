// Package sqlite stores content nodes in a SQLite table.
//
// The table holds one row per node with its parent id; galleries are stored
// as a JSON array. The driver is modernc.org/sqlite, so no cgo is needed.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/matzehuels/systemmap/pkg/content"
	errs "github.com/matzehuels/systemmap/pkg/errors"
	"github.com/matzehuels/systemmap/pkg/source"
)

const driverName = "sqlite"

var schema = []string{
	`CREATE TABLE IF NOT EXISTS nodes (
		id TEXT PRIMARY KEY,
		parent_id TEXT NOT NULL DEFAULT '',
		type TEXT NOT NULL,
		title TEXT NOT NULL,
		label TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		content TEXT NOT NULL DEFAULT '',
		iframe_url TEXT NOT NULL DEFAULT '',
		iframe_orientation TEXT NOT NULL DEFAULT '',
		experiment_url TEXT NOT NULL DEFAULT '',
		gallery_json TEXT NOT NULL DEFAULT '[]'
	);`,
	`CREATE INDEX IF NOT EXISTS idx_nodes_parent ON nodes(parent_id);`,
}

// Store is a SQLite-backed node collection.
type Store struct {
	path string
	db   *sql.DB
}

// Open opens (creating if needed) the database at path and migrates it.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeSourceUnavailable, err, "open %s", path)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range append(pragmas, schema...) {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, errs.Wrap(errs.ErrCodeSourceUnavailable, err, "prepare %s", path)
		}
	}
	return &Store{path: path, db: db}, nil
}

func (s *Store) Name() string { return "sqlite:" + s.path }

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Load reads every row and links the tree.
func (s *Store) Load(ctx context.Context) (*content.Node, error) {
	records, err := s.Records(ctx)
	if err != nil {
		return nil, err
	}
	return source.BuildTree(records)
}

// Records returns every row ordered by id.
func (s *Store) Records(ctx context.Context) ([]source.Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, parent_id, type, title, label, status, description,
		content, iframe_url, iframe_orientation, experiment_url, gallery_json FROM nodes ORDER BY id`)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeSourceUnavailable, err, "query nodes")
	}
	defer rows.Close()

	var out []source.Record
	for rows.Next() {
		var (
			r                 source.Record
			iframeURL, orient string
			galleryJSON       string
		)
		if err := rows.Scan(&r.ID, &r.ParentID, &r.Type, &r.Title, &r.Label, &r.Status, &r.Description,
			&r.Content, &iframeURL, &orient, &r.ExperimentURL, &galleryJSON); err != nil {
			return nil, errs.Wrap(errs.ErrCodeSourceUnavailable, err, "scan node")
		}
		if iframeURL != "" {
			r.Iframe = &content.IframeConfig{URL: iframeURL, Orientation: content.Orientation(orient)}
		}
		if err := json.Unmarshal([]byte(galleryJSON), &r.Gallery); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidContent, err, "gallery of %s", r.ID)
		}
		if len(r.Gallery) == 0 {
			r.Gallery = nil
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrCodeSourceUnavailable, err, "read nodes")
	}
	return out, nil
}

// Replace swaps the table contents for records in one transaction.
func (s *Store) Replace(ctx context.Context, records []source.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM nodes`); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO nodes(id, parent_id, type, title, label, status,
		description, content, iframe_url, iframe_orientation, experiment_url, gallery_json)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		var iframeURL, orient string
		if r.Iframe != nil {
			iframeURL, orient = r.Iframe.URL, string(r.Iframe.Orientation)
		}
		gallery := r.Gallery
		if gallery == nil {
			gallery = []string{}
		}
		galleryJSON, _ := json.Marshal(gallery)
		if _, err := stmt.ExecContext(ctx, r.ID, r.ParentID, r.Type, r.Title, r.Label, r.Status,
			r.Description, r.Content, iframeURL, orient, r.ExperimentURL, string(galleryJSON)); err != nil {
			return fmt.Errorf("insert %s: %w", r.ID, err)
		}
	}
	return tx.Commit()
}
