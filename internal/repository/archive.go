package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/magblast/magblast-server-go/internal/game"
	"github.com/magblast/magblast-server-go/internal/game/cards"
	"go.uber.org/zap"
)

// ErrArchiveNotFound is returned for unknown game ids.
var ErrArchiveNotFound = errors.New("archived game not found")

// ArchiveSummary is a finished game without its log
type ArchiveSummary struct {
	GameID string
	Winner string
	Turns  int
}

// ArchiveRepository stores finished games
type ArchiveRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewArchiveRepository creates a new archive repository
func NewArchiveRepository(db *DB, logger *zap.Logger) *ArchiveRepository {
	return &ArchiveRepository{db: db, logger: logger}
}

// ArchiveGame stores a finished game and its seating. Archiving the same game
// twice is a no-op.
func (r *ArchiveRepository) ArchiveGame(ctx context.Context, record game.ArchiveRecord) error {
	payload, digest, err := encodeLog(record.Log)
	if err != nil {
		return err
	}

	tx, err := r.db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		INSERT INTO game_archives (
			game_id, winner, turns, flavor, log, log_digest, log_entries, started_at, finished_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (game_id) DO NOTHING
	`,
		record.GameID,
		record.Winner,
		record.Turns,
		string(record.Flavor),
		payload,
		digest,
		len(record.Log),
		record.StartedAt,
		record.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert game %s: %w", record.GameID, err)
	}
	if tag.RowsAffected() == 0 {
		return nil
	}

	for seat, playerID := range record.Players {
		if _, err := tx.Exec(ctx,
			`INSERT INTO game_archive_players (game_id, seat, player_id) VALUES ($1, $2, $3)`,
			record.GameID, seat, playerID,
		); err != nil {
			return fmt.Errorf("failed to insert player %s: %w", playerID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit archive: %w", err)
	}

	r.logger.Info("game archived",
		zap.String("game_id", record.GameID),
		zap.String("winner", record.Winner),
		zap.Int("log_entries", len(record.Log)),
		zap.Int("compressed_bytes", len(payload)),
	)
	return nil
}

// GetGame loads an archived game with its full log
func (r *ArchiveRepository) GetGame(ctx context.Context, gameID string) (*game.ArchiveRecord, error) {
	var (
		record  game.ArchiveRecord
		flavor  string
		payload []byte
		digest  string
	)
	err := r.db.pool.QueryRow(ctx, `
		SELECT game_id, winner, turns, flavor, log, log_digest, started_at, finished_at
		FROM game_archives WHERE game_id = $1
	`, gameID).Scan(
		&record.GameID,
		&record.Winner,
		&record.Turns,
		&flavor,
		&payload,
		&digest,
		&record.StartedAt,
		&record.FinishedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrArchiveNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load game %s: %w", gameID, err)
	}
	record.Flavor = cards.Flavor(flavor)

	record.Log, err = decodeLog(payload, digest)
	if err != nil {
		return nil, fmt.Errorf("game %s: %w", gameID, err)
	}

	rows, err := r.db.pool.Query(ctx,
		`SELECT player_id FROM game_archive_players WHERE game_id = $1 ORDER BY seat`, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to load players of %s: %w", gameID, err)
	}
	record.Players, err = pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to read players of %s: %w", gameID, err)
	}
	return &record, nil
}

// GamesForPlayer lists the archived games a player took part in, newest first
func (r *ArchiveRepository) GamesForPlayer(ctx context.Context, playerID string, limit int) ([]ArchiveSummary, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT a.game_id, a.winner, a.turns
		FROM game_archives a
		JOIN game_archive_players p ON p.game_id = a.game_id
		WHERE p.player_id = $1
		ORDER BY a.finished_at DESC
		LIMIT $2
	`, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list games of %s: %w", playerID, err)
	}
	summaries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (ArchiveSummary, error) {
		var s ArchiveSummary
		err := row.Scan(&s.GameID, &s.Winner, &s.Turns)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read games of %s: %w", playerID, err)
	}
	return summaries, nil
}
