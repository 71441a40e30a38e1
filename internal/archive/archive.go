package archive

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/NegoBotEngine/NegoBot/internal/session"
	"github.com/oklog/ulid/v2"
	"github.com/pkg/errors"
)

// Repository keeps transcripts of deleted negotiations in MySQL. The live
// session store stays a TTL cache; this is a write-only record for later
// review. Archiving is best effort and never blocks a delete.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const createTableQuery = `CREATE TABLE IF NOT EXISTS negotiation_archive (
	id CHAR(26) PRIMARY KEY,
	session_id VARCHAR(64) NOT NULL,
	product_id VARCHAR(128) NOT NULL,
	strategy VARCHAR(32) NOT NULL,
	message_count INT NOT NULL,
	transcript MEDIUMTEXT NOT NULL,
	session_created_at DATETIME NOT NULL,
	session_updated_at DATETIME NOT NULL,
	archived_at DATETIME NOT NULL,
	INDEX idx_session_id (session_id)
)`

// EnsureSchema creates the archive table if it doesn't exist yet.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, createTableQuery)
	return errors.Wrap(err, "creating archive schema")
}

// Save writes the session's transcript to the archive.
func (r *Repository) Save(ctx context.Context, sess session.Session) error {
	query := `INSERT INTO negotiation_archive (id, session_id, product_id, strategy, message_count, transcript, session_created_at, session_updated_at, archived_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		ulid.Make().String(),
		sess.SessionID,
		sess.Parameters.ProductID,
		sess.Parameters.NegotiationStrategy,
		len(sess.Messages),
		FlattenTranscript(sess.Messages),
		sess.CreatedAt,
		sess.UpdatedAt,
		time.Now(),
	)
	return errors.Wrap(err, "archiving session "+sess.SessionID)
}

// FlattenTranscript renders a message history as "role: content" lines.
// Messages without the standard keys are rendered with their raw fields.
func FlattenTranscript(messages []session.Message) string {
	var b strings.Builder

	for _, msg := range messages {
		role, roleOK := msg["role"].(string)
		content, contentOK := msg["content"].(string)

		if roleOK && contentOK {
			b.WriteString(role)
			b.WriteString(": ")
			b.WriteString(content)
		} else {
			fmt.Fprintf(&b, "%v", map[string]any(msg))
		}
		b.WriteString("\n")
	}

	return b.String()
}
