package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	"essenza/internal/core/id"
	"essenza/internal/domain/lifecycle"
)

// CompressionAlgo specifies the compression algorithm used for a payload.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// transitionRow is the stored form of a lifecycle.TransitionRecord. The
// full record is kept as JSON so the trail survives schema evolution;
// payloads past the threshold are zstd-compressed.
type transitionRow struct {
	ID                id.ID           `db:"id"`
	DocumentID        id.ID           `db:"document_id"`
	FromStatus        string          `db:"from_status"`
	ToStatus          string          `db:"to_status"`
	Actor             string          `db:"actor"`
	Payload           json.RawMessage `db:"payload"`
	PayloadCompressed []byte          `db:"payload_compressed"`
	CompressionAlgo   CompressionAlgo `db:"compression_algo"`
	CreatedAt         time.Time       `db:"created_at"`
}

var _ lifecycle.Auditor = (*TransitionAudit)(nil)

// TransitionAudit persists the document transition trail.
type TransitionAudit struct {
	txm               *TxManager
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int
}

func NewTransitionAudit(txm *TxManager) (*TransitionAudit, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &TransitionAudit{
		txm:               txm,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: 10 * 1024,
	}, nil
}

// RecordTransition writes one trail entry. Callers treat failures as
// non-fatal; the transition itself has already committed.
func (a *TransitionAudit) RecordTransition(ctx context.Context, rec lifecycle.TransitionRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal transition: %w", err)
	}

	row := transitionRow{
		ID:              id.New(),
		DocumentID:      rec.DocumentID,
		FromStatus:      string(rec.From),
		ToStatus:        string(rec.To),
		Actor:           rec.Actor,
		Payload:         payload,
		CompressionAlgo: CompressionNone,
		CreatedAt:       rec.At,
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if len(payload) > a.compressThreshold {
		row.PayloadCompressed = a.encoder.EncodeAll(payload, nil)
		row.Payload = nil
		row.CompressionAlgo = CompressionZstd
	}

	sql := `
		INSERT INTO doc_transitions (
			id, document_id, from_status, to_status, actor,
			payload, payload_compressed, compression_algo, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = a.txm.GetQuerier(ctx).Exec(ctx, sql,
		row.ID, row.DocumentID, row.FromStatus, row.ToStatus, row.Actor,
		row.Payload, row.PayloadCompressed, row.CompressionAlgo, row.CreatedAt,
	)
	return err
}

// History returns the transition trail for a document, newest first.
func (a *TransitionAudit) History(ctx context.Context, documentID id.ID, limit int) ([]lifecycle.TransitionRecord, error) {
	sql := `
		SELECT payload, payload_compressed, compression_algo
		FROM doc_transitions
		WHERE document_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := a.txm.GetQuerier(ctx).Query(ctx, sql, documentID, limit)
	if err != nil {
		return nil, fmt.Errorf("query transitions: %w", err)
	}
	defer rows.Close()

	var records []lifecycle.TransitionRecord
	for rows.Next() {
		var payload json.RawMessage
		var compressed []byte
		var algo CompressionAlgo
		if err := rows.Scan(&payload, &compressed, &algo); err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		if algo == CompressionZstd && len(compressed) > 0 {
			payload, err = a.decoder.DecodeAll(compressed, nil)
			if err != nil {
				return nil, fmt.Errorf("decompress transition: %w", err)
			}
		}
		var rec lifecycle.TransitionRecord
		if err := json.Unmarshal(payload, &rec); err != nil {
			return nil, fmt.Errorf("unmarshal transition: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
