package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"panelsim/domain/core"
	"panelsim/domain/results"
	"panelsim/ports"
)

// ResponseRepositoryImpl implements ports.ResponseRepository for PostgreSQL
type ResponseRepositoryImpl struct {
	db *sqlx.DB
}

// NewResponseRepository creates a new PostgreSQL response repository
func NewResponseRepository(db *sqlx.DB) ports.ResponseRepository {
	return &ResponseRepositoryImpl{db: db}
}

// SaveBatch inserts all responses of a completed simulation run in one
// transaction. Responses are never updated afterward; re-running a study
// replaces the batch wholesale.
func (r *ResponseRepositoryImpl) SaveBatch(ctx context.Context, studyID core.StudyID, responses []results.Response) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM responses WHERE study_id = $1`, studyID.String()); err != nil {
		return fmt.Errorf("clear prior responses: %w", err)
	}

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO responses (id, study_id, persona_id, question_id,
			rating, text_response, explanation, confidence, distribution)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, resp := range responses {
		var distJSON []byte
		if len(resp.Distribution) > 0 {
			distJSON, err = json.Marshal(resp.Distribution)
			if err != nil {
				return fmt.Errorf("marshal distribution: %w", err)
			}
		}

		var rating sql.NullInt64
		if resp.Rating != nil {
			rating = sql.NullInt64{Int64: int64(*resp.Rating), Valid: true}
		}

		if _, err := stmt.ExecContext(ctx,
			resp.ID.String(), studyID.String(), resp.PersonaID.String(),
			resp.QuestionID.String(), rating, resp.TextResponse,
			resp.Explanation, resp.Confidence, distJSON); err != nil {
			return fmt.Errorf("insert response %s: %w", resp.ID, err)
		}
	}
	return tx.Commit()
}

// ListByStudy reads back every response for a study in insertion order.
// Aggregate statistics are always recomputed from these rows; there is no
// separate stored-statistics source of truth.
func (r *ResponseRepositoryImpl) ListByStudy(ctx context.Context, studyID core.StudyID) ([]results.Response, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, persona_id, question_id, rating, text_response,
			explanation, confidence, distribution
		FROM responses
		WHERE study_id = $1
		ORDER BY id`, studyID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []results.Response
	for rows.Next() {
		var (
			resp     results.Response
			idStr    string
			pidStr   string
			qidStr   string
			rating   sql.NullInt64
			distJSON []byte
		)
		if err := rows.Scan(&idStr, &pidStr, &qidStr, &rating,
			&resp.TextResponse, &resp.Explanation, &resp.Confidence, &distJSON); err != nil {
			return nil, err
		}
		resp.ID = core.ResponseID(idStr)
		resp.StudyID = studyID
		resp.PersonaID = core.PersonaID(pidStr)
		resp.QuestionID = core.QuestionID(qidStr)
		if rating.Valid {
			v := int(rating.Int64)
			resp.Rating = &v
		}
		if len(distJSON) > 0 {
			if err := json.Unmarshal(distJSON, &resp.Distribution); err != nil {
				return nil, fmt.Errorf("unmarshal distribution: %w", err)
			}
		}
		out = append(out, resp)
	}
	return out, rows.Err()
}
