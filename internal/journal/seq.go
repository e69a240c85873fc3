package journal

import (
	"context"
	"database/sql"
	"fmt"
)

// nextSeq allocates the next seq from the shared counter. It must run inside
// the transaction that writes the row carrying the seq.
func nextSeq(ctx context.Context, tx *sql.Tx) (int64, error) {
	var seq int64
	err := tx.QueryRowContext(ctx, `
		UPDATE journal_seq SET value = value + 1 WHERE id = 1 RETURNING value
	`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("allocate seq: %w", err)
	}
	return seq, nil
}

// insertWithSeq runs query with a freshly allocated seq as its second
// argument, committing both or neither.
func (j *Journal) insertWithSeq(ctx context.Context, query string, first any, rest ...any) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	seq, err := nextSeq(ctx, tx)
	if err != nil {
		return err
	}

	args := append([]any{first, seq}, rest...)
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return err
	}
	return tx.Commit()
}

// currentSeq returns the last allocated seq.
func (j *Journal) currentSeq(ctx context.Context) (int64, error) {
	var seq int64
	err := j.db.QueryRowContext(ctx, `SELECT value FROM journal_seq WHERE id = 1`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("read seq: %w", err)
	}
	return seq, nil
}
