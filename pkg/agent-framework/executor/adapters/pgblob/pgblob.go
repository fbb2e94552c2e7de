// Package pgblob implements executor.StorageService on top of Postgres via
// jmoiron/sqlx and lib/pq, for offloading binary message Parts out of
// AgentRunState. Download URLs are signed with golang-jwt/jwt/v5 rather than
// a hand-rolled HMAC scheme, reusing the teacher's existing JWT stack
// instead of adding a new signing primitive.
//
// Grounded on internal/services/agent.AgentRepo: a struct wrapping a
// *sqlx.DB, parameterized queries via db.ExecContext/GetContext, and
// fmt.Errorf-wrapped errors at every boundary.
package pgblob

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/curaious/uno/pkg/agent-framework/executor"
)

// Store implements executor.StorageService. Blob bytes live in
// agent_run_blobs; GetDownloadURL never touches the database — it mints a
// signed JWT that a download handler elsewhere in the service verifies
// before streaming the row back out.
type Store struct {
	DB        *sqlx.DB
	SigningKey []byte
	BaseURL    string
}

// NewStore builds a Store. signingKey must match the key the download
// handler uses to parse tokens minted by GetDownloadURL.
func NewStore(db *sqlx.DB, signingKey []byte, baseURL string) *Store {
	return &Store{DB: db, SigningKey: signingKey, BaseURL: baseURL}
}

// downloadClaims is the JWT payload for a signed blob-download URL.
type downloadClaims struct {
	FileID   string `json:"file_id"`
	Folder   string `json:"folder"`
	Filename string `json:"filename"`
	jwt.RegisteredClaims
}

// UploadStream persists one binary Part to agent_run_blobs, keyed by
// payload.ID within folder.
func (s *Store) UploadStream(ctx context.Context, folder string, payload executor.BlobPayload) error {
	query := `
		INSERT INTO agent_run_blobs (id, folder, filename, media_type, bytes, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (id, folder) DO UPDATE SET bytes = EXCLUDED.bytes, media_type = EXCLUDED.media_type
	`
	if _, err := s.DB.ExecContext(ctx, query, payload.ID, folder, payload.Filename, payload.MediaType, payload.Bytes); err != nil {
		return fmt.Errorf("pgblob: upload %s/%s: %w", folder, payload.ID, err)
	}
	return nil
}

// GetDownloadURL mints a signed URL valid for expiresIn. The returned URL
// carries the token as a query parameter; it does not itself verify that
// fileID exists — existence is checked when the download handler looks the
// row up.
func (s *Store) GetDownloadURL(ctx context.Context, fileID, folder, filename string, expiresIn time.Duration) (string, error) {
	claims := downloadClaims{
		FileID:   fileID,
		Folder:   folder,
		Filename: filename,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.SigningKey)
	if err != nil {
		return "", fmt.Errorf("pgblob: sign download token for %s/%s: %w", folder, fileID, err)
	}
	return fmt.Sprintf("%s/blobs/download?token=%s", s.BaseURL, signed), nil
}

// Fetch loads one blob's bytes back out, for use by the download handler
// after it has verified the caller's signed token.
func (s *Store) Fetch(ctx context.Context, fileID, folder string) (executor.BlobPayload, error) {
	var row struct {
		ID        string `db:"id"`
		Filename  string `db:"filename"`
		MediaType string `db:"media_type"`
		Bytes     []byte `db:"bytes"`
	}
	query := `SELECT id, filename, media_type, bytes FROM agent_run_blobs WHERE id = $1 AND folder = $2`
	if err := s.DB.GetContext(ctx, &row, query, fileID, folder); err != nil {
		if err == sql.ErrNoRows {
			return executor.BlobPayload{}, fmt.Errorf("pgblob: blob %s/%s not found", folder, fileID)
		}
		return executor.BlobPayload{}, fmt.Errorf("pgblob: fetch %s/%s: %w", folder, fileID, err)
	}
	return executor.BlobPayload{ID: row.ID, Filename: row.Filename, MediaType: row.MediaType, Bytes: row.Bytes}, nil
}

// ParseDownloadToken verifies a signed download token and returns the blob
// identity it authorizes.
func (s *Store) ParseDownloadToken(token string) (fileID, folder, filename string, err error) {
	claims := &downloadClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.SigningKey, nil
	})
	if err != nil || !parsed.Valid {
		return "", "", "", fmt.Errorf("pgblob: invalid download token: %w", err)
	}
	return claims.FileID, claims.Folder, claims.Filename, nil
}
