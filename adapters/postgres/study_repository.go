package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"panelsim/domain/core"
	"panelsim/domain/persona"
	"panelsim/domain/survey"
	"panelsim/ports"
)

// StudyRepositoryImpl implements ports.StudyRepository for PostgreSQL
type StudyRepositoryImpl struct {
	db *sqlx.DB
}

// NewStudyRepository creates a new PostgreSQL study repository
func NewStudyRepository(db *sqlx.DB) ports.StudyRepository {
	return &StudyRepositoryImpl{db: db}
}

// SaveStudy inserts or updates a study definition. Questions are stored as
// a JSONB column; they are immutable once the study has a completion date.
func (r *StudyRepositoryImpl) SaveStudy(ctx context.Context, study ports.StudyRecord) error {
	questionsJSON, err := json.Marshal(study.Questions)
	if err != nil {
		return fmt.Errorf("marshal questions: %w", err)
	}

	var completedAt interface{}
	if study.CompletedAt != nil {
		completedAt = study.CompletedAt.Time()
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO studies (id, name, preset, questions, completed_at, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			preset = EXCLUDED.preset,
			completed_at = EXCLUDED.completed_at`,
		study.ID.String(), study.Name, study.Preset, questionsJSON, completedAt)
	return err
}

// GetStudy retrieves a study by ID
func (r *StudyRepositoryImpl) GetStudy(ctx context.Context, id core.StudyID) (*ports.StudyRecord, error) {
	var (
		record        ports.StudyRecord
		idStr, name   string
		preset        sql.NullString
		questionsJSON []byte
		completedAt   sql.NullTime
	)

	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, preset, questions, completed_at
		FROM studies
		WHERE id = $1`, id.String()).Scan(&idStr, &name, &preset, &questionsJSON, &completedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.NewNotFoundError("study", id.String())
	}
	if err != nil {
		return nil, err
	}

	record.ID = core.StudyID(idStr)
	record.Name = name
	record.Preset = preset.String
	if completedAt.Valid {
		ts := core.NewTimestamp(completedAt.Time)
		record.CompletedAt = &ts
	}

	var questions []survey.Question
	if len(questionsJSON) > 0 {
		if err := json.Unmarshal(questionsJSON, &questions); err != nil {
			return nil, fmt.Errorf("unmarshal questions: %w", err)
		}
	}
	record.Questions = questions
	return &record, nil
}

// MarkCompleted stamps the study's completion time
func (r *StudyRepositoryImpl) MarkCompleted(ctx context.Context, id core.StudyID, at core.Timestamp) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE studies SET completed_at = $2 WHERE id = $1`,
		id.String(), at.Time())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.NewNotFoundError("study", id.String())
	}
	return nil
}

// SavePanel replaces the study's panel in one transaction: prior personas
// (and their responses, via cascade) are cleared so re-running a study
// never accumulates stale respondents. Contextual attributes live in a
// JSONB column.
func (r *StudyRepositoryImpl) SavePanel(ctx context.Context, studyID core.StudyID, panel []persona.Persona) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM personas WHERE study_id = $1`, studyID.String()); err != nil {
		return fmt.Errorf("clear prior panel: %w", err)
	}

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO personas (id, study_id, label, age, gender, location,
			income_level, education, industry_experience, context_attrs)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range panel {
		contextJSON, err := json.Marshal(map[string][]string{
			"brand_affinities":   p.BrandAffinities,
			"product_experience": p.ProductExperience,
		})
		if err != nil {
			return fmt.Errorf("marshal persona context: %w", err)
		}
		if _, err := stmt.ExecContext(ctx,
			p.ID.String(), studyID.String(), p.Label, p.Age, p.Gender,
			p.Location, p.IncomeLevel, p.Education, p.IndustryExperience,
			contextJSON); err != nil {
			return fmt.Errorf("insert persona %s: %w", p.ID, err)
		}
	}
	return tx.Commit()
}

// DeleteStudy removes a study; personas and responses cascade via foreign keys
func (r *StudyRepositoryImpl) DeleteStudy(ctx context.Context, id core.StudyID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM studies WHERE id = $1`, id.String())
	return err
}
