package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type checkpointPG struct{ pool *pgxpool.Pool }

func NewCheckpointPG(pool *pgxpool.Pool) CheckpointStore {
	return &checkpointPG{pool: pool}
}

func (s *checkpointPG) Load(ctx context.Context, threadID string) ([]Turn, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, `SELECT turns FROM chat_checkpoint WHERE thread_id = $1`, threadID).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load checkpoint %s: %w", threadID, err)
	}
	var turns []Turn
	if err := json.Unmarshal(data, &turns); err != nil {
		return nil, fmt.Errorf("decode checkpoint %s: %w", threadID, err)
	}
	return turns, nil
}

func (s *checkpointPG) Save(ctx context.Context, threadID string, turns []Turn) error {
	data, err := json.Marshal(turns)
	if err != nil {
		return fmt.Errorf("encode checkpoint %s: %w", threadID, err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO chat_checkpoint (thread_id, turns) VALUES ($1, $2)
		ON CONFLICT (thread_id) DO UPDATE SET turns = EXCLUDED.turns, updated_at = NOW()`,
		threadID, data)
	if err != nil {
		return fmt.Errorf("save checkpoint %s: %w", threadID, err)
	}
	return nil
}
