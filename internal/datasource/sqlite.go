package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/pantheon/pkg/debug"
	"github.com/vanderheijden86/pantheon/pkg/metrics"
	"github.com/vanderheijden86/pantheon/pkg/model"
)

const schema = `
CREATE TABLE entities (
	id      TEXT PRIMARY KEY,
	slug    TEXT NOT NULL UNIQUE,
	name    TEXT NOT NULL,
	culture TEXT NOT NULL
);
CREATE TABLE relations (
	source_id    TEXT NOT NULL,
	target_id    TEXT NOT NULL,
	type         TEXT NOT NULL,
	variant      TEXT,
	source_texts TEXT
);
CREATE INDEX idx_relations_source ON relations(source_id);
CREATE INDEX idx_relations_target ON relations(target_id);
`

// SQLiteReader provides read access to a genealogy SQLite database
type SQLiteReader struct {
	db   *sql.DB
	path string
}

// NewSQLiteReader opens a SQLite database for reading
func NewSQLiteReader(source DataSource) (*SQLiteReader, error) {
	if source.Type != SourceTypeSQLite {
		return nil, fmt.Errorf("source is not SQLite: %s", source.Type)
	}

	dsn := fmt.Sprintf("file:%s?mode=ro&_pragma=busy_timeout(5000)", source.Path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}

	return &SQLiteReader{
		db:   db,
		path: source.Path,
	}, nil
}

// Close closes the database connection
func (r *SQLiteReader) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// LoadDataset reads every entity and relation in insertion order.
func (r *SQLiteReader) LoadDataset() (model.Dataset, error) {
	defer metrics.Timer(metrics.SQLiteRead)()

	ds := model.Dataset{Entities: []model.Entity{}, Relations: []model.Relation{}}

	rows, err := r.db.Query(`SELECT id, slug, name, culture FROM entities ORDER BY rowid`)
	if err != nil {
		return model.Dataset{}, fmt.Errorf("querying entities in %s: %w", r.path, err)
	}
	for rows.Next() {
		var e model.Entity
		if err := rows.Scan(&e.ID, &e.Slug, &e.Name, &e.Culture); err != nil {
			rows.Close()
			return model.Dataset{}, fmt.Errorf("scanning entity: %w", err)
		}
		ds.Entities = append(ds.Entities, e)
	}
	if err := rows.Close(); err != nil {
		return model.Dataset{}, err
	}

	rows, err = r.db.Query(`SELECT source_id, target_id, type, variant, source_texts FROM relations ORDER BY rowid`)
	if err != nil {
		return model.Dataset{}, fmt.Errorf("querying relations in %s: %w", r.path, err)
	}
	defer rows.Close()

	for rows.Next() {
		var rel model.Relation
		var relType string
		var variant, sourcesJSON sql.NullString
		if err := rows.Scan(&rel.SourceID, &rel.TargetID, &relType, &variant, &sourcesJSON); err != nil {
			return model.Dataset{}, fmt.Errorf("scanning relation: %w", err)
		}
		rel.Type = model.RelationType(relType)
		if variant.Valid {
			rel.Variant = variant.String
		}
		rel.SourceTexts = []model.RelationSource{}
		if sourcesJSON.Valid && sourcesJSON.String != "" {
			// A damaged citation column only loses the citations.
			_ = json.Unmarshal([]byte(sourcesJSON.String), &rel.SourceTexts)
		}
		if rel.SourceTexts == nil {
			rel.SourceTexts = []model.RelationSource{}
		}
		ds.Relations = append(ds.Relations, rel)
	}
	if err := rows.Err(); err != nil {
		return model.Dataset{}, fmt.Errorf("reading relations: %w", err)
	}
	return ds, nil
}

// WriteSQLite replaces path with a fresh database holding ds.
func WriteSQLite(ctx context.Context, ds model.Dataset, path string) error {
	start := time.Now()
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing old database: %w", err)
	}

	db, err := sql.Open("sqlite", "file:"+path)
	if err != nil {
		return fmt.Errorf("cannot open database: %w", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	entStmt, err := tx.PrepareContext(ctx, `INSERT INTO entities (id, slug, name, culture) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing entity insert: %w", err)
	}
	defer entStmt.Close()
	for _, e := range ds.Entities {
		if _, err := entStmt.ExecContext(ctx, e.ID, e.Slug, e.Name, e.Culture); err != nil {
			return fmt.Errorf("inserting entity %s: %w", e.ID, err)
		}
	}

	relStmt, err := tx.PrepareContext(ctx, `INSERT INTO relations (source_id, target_id, type, variant, source_texts) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing relation insert: %w", err)
	}
	defer relStmt.Close()
	for _, rel := range ds.Relations {
		sources, err := json.Marshal(rel.SourceTexts)
		if err != nil {
			return fmt.Errorf("encoding sources: %w", err)
		}
		var variant any
		if rel.Variant != "" {
			variant = rel.Variant
		}
		if _, err := relStmt.ExecContext(ctx, rel.SourceID, rel.TargetID, string(rel.Type), variant, string(sources)); err != nil {
			return fmt.Errorf("inserting relation %s->%s: %w", rel.SourceID, rel.TargetID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	debug.LogTiming("write sqlite "+path, time.Since(start))
	return nil
}
