package ports

import (
	"context"

	"panelsim/domain/core"
	"panelsim/domain/persona"
	"panelsim/domain/results"
	"panelsim/domain/survey"
)

// StudyRecord is the persisted shape of a study. Organization scoping and
// access control happen outside this core; repositories receive an already
// authorized study ID.
type StudyRecord struct {
	ID          core.StudyID
	Name        string
	Preset      string
	Questions   []survey.Question
	CompletedAt *core.Timestamp
}

// StudyRepository stores study definitions and their persona panels
type StudyRepository interface {
	SaveStudy(ctx context.Context, study StudyRecord) error
	GetStudy(ctx context.Context, id core.StudyID) (*StudyRecord, error)
	MarkCompleted(ctx context.Context, id core.StudyID, at core.Timestamp) error

	// SavePanel batch-inserts the generated personas for a study
	SavePanel(ctx context.Context, studyID core.StudyID, panel []persona.Persona) error

	// DeleteStudy removes the study and cascades to its panel and responses
	DeleteStudy(ctx context.Context, id core.StudyID) error
}

// ResponseRepository stores raw simulation responses. Writes happen once
// per completed simulation batch, never interleaved with in-flight calls.
type ResponseRepository interface {
	SaveBatch(ctx context.Context, studyID core.StudyID, responses []results.Response) error
	ListByStudy(ctx context.Context, studyID core.StudyID) ([]results.Response, error)
}
