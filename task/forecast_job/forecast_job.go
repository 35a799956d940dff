package forecast_job

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	F "funnelcast/forecast"
	M "funnelcast/model"
	"funnelcast/store"
	U "funnelcast/util"
)

const taskID = "Task#FunnelForecast"

var jobLog = log.WithField("prefix", taskID)

// JobConfig is the full configuration of one batch run. Everything the
// computation depends on is in here or in the store; two runs with the same
// config and the same stored inputs produce identical outputs.
type JobConfig struct {
	Period     M.Period
	WindowDays int
	Variant    M.PopulationVariant

	// TeamSizeAdjust is an optional hook on active-owner rates; nil (the
	// default) leaves rates exactly as computed.
	TeamSizeAdjust func(segment M.Segment, fromStage string, rate float64) float64
}

// JobStatus summarizes one run for logging and notification.
type JobStatus struct {
	RunID            string
	RecordCount      int
	SkippedRecords   int
	DuplicateTargets int
	SegmentCount     int
	PointRows        int
	DailyRows        int
	Duration         time.Duration
}

// Run executes the full forecast pipeline: load and validate the snapshot,
// fan out the independent scans, cascade per segment, assemble, project, and
// replace the output tables.
func Run(s store.Store, cfg JobConfig) (*JobStatus, error) {
	started := time.Now()

	if err := cfg.Period.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid period configuration")
	}
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = F.DefaultTrailingWindowDays
	}
	if cfg.Variant == "" {
		cfg.Variant = M.VariantFull
	}

	status := &JobStatus{RunID: U.GetUUID()}
	logCtx := jobLog.WithFields(log.Fields{
		"run_id":  status.RunID,
		"as_of":   U.FormatDateZ(cfg.Period.AsOf),
		"variant": cfg.Variant,
	})
	logCtx.Info("Funnel forecast started.")

	records, err := loadRecords(s, status)
	if err != nil {
		return nil, err
	}

	rawTargets, err := s.GetForecastTargets()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load forecast targets")
	}
	targetTotals, duplicates := F.SumTargetsByStage(rawTargets)
	status.DuplicateTargets = duplicates
	if duplicates > 0 {
		logCtx.WithField("duplicates", duplicates).
			Warn("Duplicate forecast target rows summed; check target table quality.")
	}

	var activeOwners map[string]bool
	if cfg.Variant == M.VariantActiveOwner {
		if activeOwners, err = s.GetActiveOwners(); err != nil {
			return nil, errors.Wrap(err, "failed to load active owner roster")
		}
	}

	// Rates, pipeline and the actual curves scan the snapshot independently.
	var wg sync.WaitGroup
	var rates []M.StageRate
	var open []M.OpenPipelineCount
	var curves map[M.SegmentStage]*F.ActualCurve
	var stddevs map[M.SegmentStage]float64

	wg.Add(3)
	go func() {
		defer wg.Done()
		rates = F.EstimateRates(records, F.RateOptions{
			AsOf:           cfg.Period.AsOf,
			WindowDays:     cfg.WindowDays,
			Variant:        cfg.Variant,
			ActiveOwners:   activeOwners,
			TeamSizeAdjust: cfg.TeamSizeAdjust,
		})
	}()
	go func() {
		defer wg.Done()
		open = F.AggregatePipeline(records, F.PipelineOptions{
			PeriodStart:  cfg.Period.Start,
			AsOf:         cfg.Period.AsOf,
			Variant:      cfg.Variant,
			ActiveOwners: activeOwners,
		})
	}()
	go func() {
		defer wg.Done()
		curves = F.BuildActualCurves(records, cfg.Period.Start, cfg.Period.AsOf)
		stddevs = F.EstimateVolatility(curves, cfg.WindowDays)
	}()
	wg.Wait()

	actuals := F.ActualsToDate(curves)
	remaining := F.RemainingTargets(targetTotals, actuals)

	cascades := runCascades(rates, open, remaining, actuals, targetTotals)
	status.SegmentCount = len(cascades)

	points := F.Assemble(F.AssembleInput{
		Targets:  targetTotals,
		Actuals:  actuals,
		Cascades: cascades,
		Stddevs:  stddevs,
	})
	daily := F.ProjectDaily(F.ProjectorInput{
		Points:  points,
		Curves:  curves,
		Targets: rawTargets,
	}, cfg.Period)

	if err := s.ReplacePointForecasts(points); err != nil {
		return nil, errors.Wrap(err, "failed to write point forecasts")
	}
	if err := s.ReplaceDailyProjections(daily); err != nil {
		return nil, errors.Wrap(err, "failed to write daily projections")
	}

	status.PointRows = len(points)
	status.DailyRows = len(daily)
	status.Duration = time.Since(started)
	logCtx.WithFields(log.Fields{
		"records":           status.RecordCount,
		"skipped":           status.SkippedRecords,
		"segments":          status.SegmentCount,
		"point_rows":        status.PointRows,
		"daily_rows":        status.DailyRows,
		"duration_seconds":  status.Duration.Seconds(),
		"duplicate_targets": status.DuplicateTargets,
	}).Info("Funnel forecast finished.")

	return status, nil
}

// loadRecords fetches the snapshot and drops records that cannot be
// attributed to any entity. Skips are logged per record and counted; the
// batch always continues.
func loadRecords(s store.Store, status *JobStatus) ([]M.FunnelRecord, error) {
	records, err := s.GetFunnelRecords()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load funnel records")
	}

	valid := make([]M.FunnelRecord, 0, len(records))
	for i := range records {
		if err := records[i].Validate(); err != nil {
			status.SkippedRecords++
			jobLog.WithFields(log.Fields{
				"lead_id":        records[i].LeadID,
				"opportunity_id": records[i].OpportunityID,
				"reason":         err.Error(),
			}).Warn("Skipped funnel record.")
			continue
		}
		valid = append(valid, records[i])
	}
	status.RecordCount = len(valid)
	return valid, nil
}

// runCascades runs the recursive projection for every segment any input
// mentions. Rates and pipeline must be fully computed first: each stage's
// future value compounds through all upstream stages.
func runCascades(rates []M.StageRate, open []M.OpenPipelineCount,
	remaining, actuals, targets map[M.SegmentStage]float64) map[M.Segment]F.CascadeResult {

	ratesBySegment := F.RatesBySegment(rates)
	openBySegment := F.OpenBySegment(open)

	universe := make(map[M.Segment]bool)
	for seg := range ratesBySegment {
		universe[seg] = true
	}
	for seg := range openBySegment {
		universe[seg] = true
	}
	for key := range actuals {
		universe[key.Segment] = true
	}
	for key := range targets {
		universe[key.Segment] = true
	}

	cascades := make(map[M.Segment]F.CascadeResult, len(universe))
	for seg := range universe {
		segmentActuals := make(map[string]float64, len(M.FunnelStages))
		for _, stage := range M.FunnelStages {
			segmentActuals[stage] = actuals[M.SegmentStage{Segment: seg, Stage: stage}]
		}

		cascades[seg] = F.RunCascade(F.CascadeInput{
			Segment:         seg,
			Open:            openBySegment[seg],
			RemainingTarget: remaining[M.SegmentStage{Segment: seg, Stage: M.StageContacted}],
			Rates:           ratesBySegment[seg],
			Actuals:         segmentActuals,
		})
	}
	return cascades
}
