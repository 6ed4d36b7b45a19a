package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/starford/docdesk/internal/apperr"
	"github.com/starford/docdesk/internal/models"
)

// tagSep joins tag names inside group_concat; it cannot appear in a name
// typed into the tag form.
const tagSep = "\x1f"

const documentColumns = `
	d.id, d.filename, d.original_filename, d.file_path, d.file_type, d.file_size,
	d.title, d.description, d.content_text, d.classification, d.checksum,
	d.owner_id, d.expiry_date, d.created_at,
	COALESCE((SELECT group_concat(t.name, char(31))
	          FROM document_tags dt JOIN tags t ON t.id = dt.tag_id
	          WHERE dt.document_id = d.id), '')`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(s rowScanner) (models.Document, error) {
	var (
		d      models.Document
		expiry sql.NullTime
		tags   string
	)
	err := s.Scan(&d.ID, &d.Filename, &d.OriginalFilename, &d.FilePath, &d.FileType, &d.FileSize,
		&d.Title, &d.Description, &d.ContentText, &d.Classification, &d.Checksum,
		&d.OwnerID, &expiry, &d.CreatedAt, &tags)
	if err != nil {
		return d, err
	}
	d.ExpiryDate = nullTime(expiry)
	d.Tags = splitTags(tags)
	return d, nil
}

func splitTags(s string) []string {
	if s == "" {
		return []string{}
	}
	out := strings.Split(s, tagSep)
	sort.Strings(out)
	return out
}

// InsertDocument stores a document row and its tags, returning the new id.
func (db *DB) InsertDocument(ctx context.Context, d models.Document) (int64, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	created := d.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	res, err := tx.ExecContext(ctx, `
		INSERT INTO documents (filename, original_filename, file_path, file_type, file_size,
			title, description, content_text, classification, checksum, owner_id, expiry_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, d.Filename, d.OriginalFilename, d.FilePath, d.FileType, d.FileSize,
		d.Title, d.Description, d.ContentText, d.Classification, d.Checksum, d.OwnerID,
		timeArg(d.ExpiryDate), created.UTC())
	if err != nil {
		return 0, fmt.Errorf("store: insert document: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("store: document id: %w", err)
	}
	if err := setTags(ctx, tx, id, d.Tags); err != nil {
		return 0, err
	}
	// No-op unless built with the sqlite_fts5 tag.
	if err := ftsIndex(ctx, tx, id, d.Title, d.ContentText, d.Tags); err != nil {
		return 0, err
	}
	return id, tx.Commit()
}

func setTags(ctx context.Context, tx *sql.Tx, docID int64, tags []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM document_tags WHERE document_id = ?`, docID); err != nil {
		return fmt.Errorf("store: clear tags: %w", err)
	}
	for _, name := range tags {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO tags (name) VALUES (?)`, name); err != nil {
			return fmt.Errorf("store: insert tag: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO document_tags (document_id, tag_id)
			SELECT ?, id FROM tags WHERE name = ?
		`, docID, name); err != nil {
			return fmt.Errorf("store: link tag: %w", err)
		}
	}
	return nil
}

// Document returns a single document by id.
func (db *DB) Document(ctx context.Context, id int64) (*models.Document, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents d WHERE d.id = ?`, id)
	d, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: document %d: %w", id, err)
	}
	return &d, nil
}

// DocumentByChecksum finds ownerID's oldest stored copy of the same bytes.
// Other users' copies are ignored.
func (db *DB) DocumentByChecksum(ctx context.Context, ownerID int64, checksum string) (*models.Document, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+documentColumns+`
		FROM documents d
		WHERE d.owner_id = ? AND d.checksum = ?
		ORDER BY d.id
		LIMIT 1`, ownerID, checksum)
	d, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: document by checksum: %w", err)
	}
	return &d, nil
}

// Documents lists documents owned by or shared with userID, newest first.
func (db *DB) Documents(ctx context.Context, userID int64) ([]models.Document, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT `+documentColumns+`
		FROM documents d
		WHERE d.owner_id = ?
		   OR d.id IN (SELECT document_id FROM document_shares WHERE user_id = ?)
		ORDER BY d.created_at DESC, d.id DESC
	`, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("store: list documents: %w", err)
	}
	defer rows.Close()

	var out []models.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// DocumentsWithExpiry returns documents that carry an expiry date.
func (db *DB) DocumentsWithExpiry(ctx context.Context) ([]models.Document, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT `+documentColumns+`
		FROM documents d
		WHERE d.expiry_date IS NOT NULL
		ORDER BY d.expiry_date, d.id
	`)
	if err != nil {
		return nil, fmt.Errorf("store: expiring documents: %w", err)
	}
	defer rows.Close()

	var out []models.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// DeleteDocument removes a document row; tags and shares cascade.
func (db *DB) DeleteDocument(ctx context.Context, id int64) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete document: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	if err := ftsDelete(ctx, tx, id); err != nil {
		return err
	}
	return tx.Commit()
}

// CanView reports whether userID owns or has been shared the document.
func (db *DB) CanView(ctx context.Context, docID, userID int64) (bool, error) {
	var n int
	err := db.conn.QueryRowContext(ctx, `
		SELECT count(*) FROM documents d
		WHERE d.id = ?
		  AND (d.owner_id = ? OR EXISTS (
		       SELECT 1 FROM document_shares s WHERE s.document_id = d.id AND s.user_id = ?))
	`, docID, userID, userID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("store: can view: %w", err)
	}
	return n > 0, nil
}

// ShareDocument grants each user read access.
func (db *DB) ShareDocument(ctx context.Context, docID int64, userIDs []int64) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, uid := range userIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO document_shares (document_id, user_id) VALUES (?, ?)`, docID, uid); err != nil {
			return fmt.Errorf("store: share document: %w", err)
		}
	}
	return tx.Commit()
}

// Tags returns every tag, alphabetically.
func (db *DB) Tags(ctx context.Context) ([]models.Tag, error) {
	return db.queryTags(ctx, `SELECT id, name, color FROM tags ORDER BY name`)
}

// SearchTags matches tag names containing q, at most 10.
func (db *DB) SearchTags(ctx context.Context, q string) ([]models.Tag, error) {
	return db.queryTags(ctx, `SELECT id, name, color FROM tags WHERE name LIKE ? ESCAPE '\' ORDER BY name LIMIT 10`, like(q))
}

func (db *DB) queryTags(ctx context.Context, query string, args ...any) ([]models.Tag, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: tags: %w", err)
	}
	defer rows.Close()

	out := []models.Tag{}
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Color); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// TypeCount is a per-type document count.
type TypeCount struct {
	Type  string
	Count int
}

// CountByType groups the owner's documents by file type, largest first.
func (db *DB) CountByType(ctx context.Context, ownerID int64) ([]TypeCount, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT file_type, count(*) AS n FROM documents
		WHERE owner_id = ?
		GROUP BY file_type
		ORDER BY n DESC, file_type
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("store: count by type: %w", err)
	}
	defer rows.Close()

	var out []TypeCount
	for rows.Next() {
		var c TypeCount
		if err := rows.Scan(&c.Type, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// MonthCount is a per-month upload count; Month is "YYYY-MM".
type MonthCount struct {
	Month string
	Count int
}

// CountByMonth groups the owner's uploads by creation month.
func (db *DB) CountByMonth(ctx context.Context, ownerID int64) ([]MonthCount, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT substr(created_at, 1, 7) AS month, count(*) FROM documents
		WHERE owner_id = ?
		GROUP BY month
		ORDER BY month
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("store: count by month: %w", err)
	}
	defer rows.Close()

	var out []MonthCount
	for rows.Next() {
		var c MonthCount
		if err := rows.Scan(&c.Month, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func like(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(q) + "%"
}
