package app

import (
	"context"
	"fmt"

	"panelsim/domain/core"
	"panelsim/domain/persona"
	"panelsim/domain/results"
	"panelsim/domain/survey"
	"panelsim/internal/aggregate"
	"panelsim/internal/cache"
	"panelsim/internal/compare"
	"panelsim/internal/errors"
	"panelsim/internal/simulation"
	"panelsim/ports"
)

// Comparison study-count bounds enforced at this layer
const (
	CompareStudiesMin = 2
	CompareStudiesMax = 10
)

// StudyService orchestrates the full study lifecycle: panel generation,
// simulation, persistence of the response batch, on-demand aggregation,
// and cross-study comparison.
type StudyService struct {
	engine     *simulation.Engine
	aggregator *aggregate.Aggregator
	comparator *compare.Comparator
	studies    ports.StudyRepository
	responses  ports.ResponseRepository
	statsCache *cache.TTLCache
	seed       int64
}

// StudyServiceDeps bundles the service's collaborators
type StudyServiceDeps struct {
	Engine     *simulation.Engine
	Aggregator *aggregate.Aggregator
	Comparator *compare.Comparator
	Studies    ports.StudyRepository
	Responses  ports.ResponseRepository
	StatsCache *cache.TTLCache
	PanelSeed  int64
}

// SimulateRequest defines the inputs for one study run
type SimulateRequest struct {
	StudyID   core.StudyID
	StudyName string
	Questions []survey.Question
	Panel     persona.PanelConfig
}

// NewStudyService creates a study service
func NewStudyService(deps StudyServiceDeps) *StudyService {
	return &StudyService{
		engine:     deps.Engine,
		aggregator: deps.Aggregator,
		comparator: deps.Comparator,
		studies:    deps.Studies,
		responses:  deps.Responses,
		statsCache: deps.StatsCache,
		seed:       deps.PanelSeed,
	}
}

// RunSimulation validates the request, generates the panel, simulates every
// (persona, question) pair, persists the study with its panel and response
// batch, and returns the HTTP-facing result shape. Validation failures
// surface before any simulation work starts.
func (s *StudyService) RunSimulation(ctx context.Context, req SimulateRequest) (*results.SimulationResult, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	seed := s.seed
	if seed == 0 {
		seed = int64(len(req.StudyID.String())) + core.Now().Time().UnixNano()
	}
	generator := persona.NewGenerator(seed)
	panel, err := generator.GeneratePanel(req.Panel)
	if err != nil {
		if core.IsValidationError(err) {
			return nil, errors.ValidationError(err.Error())
		}
		return nil, errors.Wrap(err, "panel generation failed")
	}

	panelResult, err := s.engine.SimulatePanel(ctx, req.StudyID, panel, req.Questions)
	if err != nil {
		return nil, err
	}
	panelResult.Metadata.PanelPreset = presetOrDefault(req.Panel.Preset)

	if err := s.persistRun(ctx, req, panel, panelResult); err != nil {
		return nil, errors.Wrap(err, "failed to persist simulation run")
	}
	s.invalidateStudy(req.StudyID)

	flat := flattenResponses(panelResult)
	return &results.SimulationResult{
		TotalRespondents: panelResult.TotalRespondents,
		Questions:        s.aggregator.Aggregate(flat, req.Questions),
		RawResults:       panelResult.Results,
		Metadata:         panelResult.Metadata,
	}, nil
}

// GetStudyStats recomputes aggregate statistics from the persisted response
// rows. Results are cached under a study-scoped key; the cache is
// invalidated whenever the study's responses change.
func (s *StudyService) GetStudyStats(ctx context.Context, studyID core.StudyID) ([]results.QuestionStats, error) {
	cacheKey := statsCacheKey(studyID)
	if s.statsCache != nil {
		if cached, ok := s.statsCache.Get(cacheKey); ok {
			return cached.([]results.QuestionStats), nil
		}
	}

	study, err := s.studies.GetStudy(ctx, studyID)
	if err != nil {
		return nil, err
	}
	responses, err := s.responses.ListByStudy(ctx, studyID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load responses")
	}

	stats := s.aggregator.Aggregate(responses, study.Questions)
	if s.statsCache != nil {
		s.statsCache.Set(cacheKey, stats)
	}
	return stats, nil
}

// CompareStudies loads the named studies and computes cross-study trends.
// Only completed studies qualify; the 2..10 bound is enforced here, before
// the comparison engine runs.
func (s *StudyService) CompareStudies(ctx context.Context, studyIDs []core.StudyID) (*results.Comparison, error) {
	if len(studyIDs) < CompareStudiesMin || len(studyIDs) > CompareStudiesMax {
		return nil, errors.ValidationError(
			fmt.Sprintf("comparison requires between %d and %d studies", CompareStudiesMin, CompareStudiesMax))
	}

	snapshots := make([]results.StudySnapshot, 0, len(studyIDs))
	for _, id := range studyIDs {
		study, err := s.studies.GetStudy(ctx, id)
		if err != nil {
			return nil, err
		}
		if study.CompletedAt == nil {
			return nil, errors.ValidationError(
				fmt.Sprintf("study %s is not completed", id))
		}
		responses, err := s.responses.ListByStudy(ctx, id)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load responses")
		}
		snapshots = append(snapshots, results.StudySnapshot{
			ID:          study.ID,
			Name:        study.Name,
			CompletedAt: study.CompletedAt,
			Questions:   study.Questions,
			Responses:   responses,
		})
	}
	return s.comparator.CompareStudies(snapshots)
}

// DeleteStudy removes a study with its panel and responses, and evicts any
// cached aggregates.
func (s *StudyService) DeleteStudy(ctx context.Context, studyID core.StudyID) error {
	if err := s.studies.DeleteStudy(ctx, studyID); err != nil {
		return err
	}
	s.invalidateStudy(studyID)
	return nil
}

func (s *StudyService) validate(req SimulateRequest) error {
	if req.StudyID.String() == "" {
		return errors.ValidationError("study id is required")
	}
	if len(req.Questions) == 0 {
		return errors.ValidationError("at least one question is required")
	}
	for _, q := range req.Questions {
		if err := q.Validate(); err != nil {
			return errors.ValidationError("invalid question: " + err.Error())
		}
	}
	if err := persona.ValidateCount(req.Panel.Count); err != nil {
		return errors.ValidationError(err.Error())
	}
	if req.Panel.Preset != "" && !persona.KnownPreset(req.Panel.Preset) {
		return errors.ValidationError("unknown panel preset: " + req.Panel.Preset)
	}
	return nil
}

// persistRun stores the study, panel, and full response batch, then marks
// the study completed. Batched writes happen once per run, never
// interleaved with in-flight oracle calls.
func (s *StudyService) persistRun(ctx context.Context, req SimulateRequest, panel []persona.Persona, panelResult *results.PanelResult) error {
	record := ports.StudyRecord{
		ID:        req.StudyID,
		Name:      req.StudyName,
		Preset:    presetOrDefault(req.Panel.Preset),
		Questions: req.Questions,
	}
	if err := s.studies.SaveStudy(ctx, record); err != nil {
		return err
	}
	if err := s.studies.SavePanel(ctx, req.StudyID, panel); err != nil {
		return err
	}
	if err := s.responses.SaveBatch(ctx, req.StudyID, flattenResponses(panelResult)); err != nil {
		return err
	}
	return s.studies.MarkCompleted(ctx, req.StudyID, panelResult.Metadata.CompletedAt)
}

func (s *StudyService) invalidateStudy(studyID core.StudyID) {
	if s.statsCache != nil {
		s.statsCache.InvalidatePrefix("study:" + studyID.String())
	}
}

func statsCacheKey(studyID core.StudyID) string {
	return "study:" + studyID.String() + ":stats"
}

func presetOrDefault(preset string) string {
	if preset == "" {
		return persona.DefaultPreset
	}
	return preset
}

func flattenResponses(panelResult *results.PanelResult) []results.Response {
	var flat []results.Response
	for _, pr := range panelResult.Results {
		flat = append(flat, pr.Responses...)
	}
	return flat
}
