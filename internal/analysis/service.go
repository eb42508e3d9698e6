package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/suPer8Hu/corecord/internal/common"
	"github.com/suPer8Hu/corecord/internal/metrics"
	"github.com/suPer8Hu/corecord/internal/models"
	"github.com/suPer8Hu/corecord/internal/user"
	"gorm.io/gorm"
)

// Publisher hands a queued job to the worker.
type Publisher interface {
	PublishJob(ctx context.Context, jobID string) error
}

type Service struct {
	db  *gorm.DB
	gen Generator
	pub Publisher
}

// NewService wires the analysis service. pub may be nil when regeneration jobs
// are not served by this process.
func NewService(db *gorm.DB, gen Generator, pub Publisher) *Service {
	return &Service{db: db, gen: gen, pub: pub}
}

type AbilityItem struct {
	Keyword models.Keyword `json:"keyword"`
	Content string         `json:"content"`
}

type Detail struct {
	AnalysisID    uint64        `json:"analysis_id"`
	RecordID      uint64        `json:"record_id"`
	RecordTitle   string        `json:"record_title"`
	RecordContent string        `json:"record_content"`
	Content       string        `json:"content"`
	Comment       string        `json:"comment"`
	Abilities     []AbilityItem `json:"abilities"`
	CreatedAt     time.Time     `json:"created_at"`
}

type KeywordStat struct {
	Keyword    models.Keyword `json:"keyword"`
	Count      int64          `json:"count"`
	Percentage float64        `json:"percentage"`
}

func (s *Service) generate(ctx context.Context, content string) (*Result, error) {
	start := time.Now()
	res, err := s.gen.Generate(ctx, content)
	metrics.ObserveAnalysis(start, err)
	if err != nil {
		var tagged *common.Error
		if errors.As(err, &tagged) {
			return nil, err
		}
		log.Warn().Err(err).Msg("analysis generation failed")
		return nil, ErrAnalysisFailed
	}
	return res, nil
}

func toModel(rec *models.Record, res *Result) *models.Analysis {
	a := &models.Analysis{RecordID: rec.ID, Content: res.Content, Comment: res.Comment}
	for _, ab := range res.Abilities {
		a.Abilities = append(a.Abilities, models.Ability{UserID: rec.UserID, Keyword: ab.Keyword, Content: ab.Content})
	}
	return a
}

// CreateAnalysis generates and stores the analysis of rec using tx, so that a
// failure rolls back the caller's record insert as well.
func (s *Service) CreateAnalysis(ctx context.Context, tx *gorm.DB, rec *models.Record) (*models.Analysis, error) {
	res, err := s.generate(ctx, rec.Content)
	if err != nil {
		return nil, err
	}
	a := toModel(rec, res)
	if err := NewRepo(tx).Create(ctx, a); err != nil {
		return nil, fmt.Errorf("save analysis of record %d: %w", rec.ID, err)
	}
	return a, nil
}

// ownedAnalysis loads an analysis and the record it belongs to, checking ownership.
func ownedAnalysis(ctx context.Context, repo *Repo, userID, analysisID uint64) (*models.Analysis, *models.Record, error) {
	a, err := repo.FindByID(ctx, analysisID)
	if err != nil {
		return nil, nil, err
	}
	rec, err := repo.FindRecord(ctx, a.RecordID)
	if err != nil {
		return nil, nil, err
	}
	if err := common.AssertOwner(rec, userID, ErrAnalysisUnauthorized); err != nil {
		return nil, nil, err
	}
	return a, rec, nil
}

func (s *Service) GetAnalysis(ctx context.Context, userID, analysisID uint64) (*Detail, error) {
	if _, err := user.NewRepo(s.db).FindByID(ctx, userID); err != nil {
		return nil, err
	}
	a, rec, err := ownedAnalysis(ctx, NewRepo(s.db), userID, analysisID)
	if err != nil {
		return nil, err
	}
	d := &Detail{
		AnalysisID:    a.ID,
		RecordID:      rec.ID,
		RecordTitle:   rec.Title,
		RecordContent: rec.Content,
		Content:       a.Content,
		Comment:       a.Comment,
		Abilities:     make([]AbilityItem, 0, len(a.Abilities)),
		CreatedAt:     a.CreatedAt,
	}
	for _, ab := range a.Abilities {
		d.Abilities = append(d.Abilities, AbilityItem{Keyword: ab.Keyword, Content: ab.Content})
	}
	return d, nil
}

// DeleteAnalysis removes the analysis together with the record it describes.
func (s *Service) DeleteAnalysis(ctx context.Context, userID, analysisID uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := user.NewRepo(tx).FindByID(ctx, userID); err != nil {
			return err
		}
		repo := NewRepo(tx)
		_, rec, err := ownedAnalysis(ctx, repo, userID, analysisID)
		if err != nil {
			return err
		}
		if err := repo.DeleteByRecordID(ctx, rec.ID); err != nil {
			return err
		}
		return tx.Delete(&models.Record{}, rec.ID).Error
	})
}

// ListKeywords reports how often each keyword appears across the user's analyses.
func (s *Service) ListKeywords(ctx context.Context, userID uint64) ([]KeywordStat, error) {
	if _, err := user.NewRepo(s.db).FindByID(ctx, userID); err != nil {
		return nil, err
	}
	counts, err := NewRepo(s.db).CountKeywords(ctx, userID)
	if err != nil {
		return nil, err
	}
	var total int64
	for _, c := range counts {
		total += c.Count
	}
	out := make([]KeywordStat, 0, len(counts))
	for _, c := range counts {
		pct := math.Round(float64(c.Count)*1000/float64(total)) / 10
		out = append(out, KeywordStat{Keyword: c.Keyword, Count: c.Count, Percentage: pct})
	}
	return out, nil
}

// RequestRegeneration queues a job that replaces the record's analysis.
func (s *Service) RequestRegeneration(ctx context.Context, userID, recordID uint64) (*models.AnalysisJob, error) {
	if s.pub == nil {
		return nil, ErrRegenerationUnavailable
	}
	if _, err := user.NewRepo(s.db).FindByID(ctx, userID); err != nil {
		return nil, err
	}
	repo := NewRepo(s.db)
	rec, err := repo.FindRecord(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if err := common.AssertOwner(rec, userID, ErrAnalysisUnauthorized); err != nil {
		return nil, err
	}

	id, err := common.NewULID()
	if err != nil {
		return nil, err
	}
	job := &models.AnalysisJob{ID: id, UserID: userID, RecordID: rec.ID, Status: models.JobQueued}
	if err := repo.CreateJob(ctx, job); err != nil {
		return nil, err
	}

	if err := s.pub.PublishJob(ctx, job.ID); err != nil {
		msg := "enqueue failed: " + err.Error()
		_ = repo.UpdateJob(ctx, job.ID, map[string]any{"status": models.JobFailed, "error": msg})
		return nil, fmt.Errorf("publish job %s: %w", job.ID, err)
	}
	return job, nil
}

func (s *Service) GetJob(ctx context.Context, userID uint64, jobID string) (*models.AnalysisJob, error) {
	job, err := NewRepo(s.db).FindJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	// other users' jobs are reported as missing
	if err := common.AssertOwner(job, userID, ErrJobNotFound); err != nil {
		return nil, err
	}
	return job, nil
}

// RunJob regenerates the analysis named by a job. Succeeded jobs are skipped so
// redelivered messages are harmless; failed ones may be retried.
func (s *Service) RunJob(ctx context.Context, jobID string) error {
	repo := NewRepo(s.db)
	job, err := repo.FindJob(ctx, jobID)
	if err != nil {
		return err
	}
	if job.Status == models.JobSucceeded {
		return nil
	}
	if err := repo.UpdateJob(ctx, jobID, map[string]any{"status": models.JobRunning}); err != nil {
		return err
	}

	analysisID, err := s.regenerate(ctx, job)

	// the final status must land even if ctx was cancelled mid-run
	sctx, cancel := settleContext(ctx)
	defer cancel()
	if err != nil {
		if cerr := ctx.Err(); cerr != nil {
			// interrupted rather than failed; the job goes back to the queue untouched
			if uerr := repo.UpdateJob(sctx, jobID, map[string]any{"status": models.JobQueued}); uerr != nil {
				log.Error().Err(uerr).Str("job", jobID).Msg("requeue job status")
			}
			return fmt.Errorf("run job %s: %w", jobID, cerr)
		}
		metrics.AnalysisJobsTotal.WithLabelValues(string(models.JobFailed)).Inc()
		if uerr := repo.UpdateJob(sctx, jobID, map[string]any{"status": models.JobFailed, "error": err.Error()}); uerr != nil {
			log.Error().Err(uerr).Str("job", jobID).Msg("mark job failed")
		}
		return err
	}
	metrics.AnalysisJobsTotal.WithLabelValues(string(models.JobSucceeded)).Inc()
	return repo.UpdateJob(sctx, jobID, map[string]any{"status": models.JobSucceeded, "analysis_id": analysisID})
}

const settleTimeout = 5 * time.Second

func settleContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), settleTimeout)
}

func (s *Service) regenerate(ctx context.Context, job *models.AnalysisJob) (uint64, error) {
	rec, err := NewRepo(s.db).FindRecord(ctx, job.RecordID)
	if err != nil {
		return 0, err
	}
	if err := common.AssertOwner(rec, job.UserID, ErrAnalysisUnauthorized); err != nil {
		return 0, err
	}

	// the provider call stays outside the transaction
	res, err := s.generate(ctx, rec.Content)
	if err != nil {
		return 0, err
	}

	var id uint64
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := NewRepo(tx)
		if err := repo.DeleteByRecordID(ctx, rec.ID); err != nil {
			return err
		}
		a := toModel(rec, res)
		if err := repo.Create(ctx, a); err != nil {
			return err
		}
		id = a.ID
		return nil
	})
	return id, err
}
