package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"grader-content-api/internal/content"
	"grader-content-api/internal/domain"
)

// RecordValidator checks a record before it is written.
type RecordValidator interface {
	Validate(rec content.Record) error
}

// SeedStats counts the documents written by a seeding run.
type SeedStats struct {
	Subjects int
	Chapters int
	Quizzes  int
}

// Seeder replays content records into the store. Records are written in
// order with no rollback: a failure leaves the documents written so far.
type Seeder struct {
	store     DocumentWriter
	validator RecordValidator
	logger    *slog.Logger
}

// NewSeeder returns a seeder. validator may be nil to skip validation.
func NewSeeder(store DocumentWriter, validator RecordValidator, logger *slog.Logger) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{store: store, validator: validator, logger: logger}
}

func (s *Seeder) Seed(ctx context.Context, records []content.Record) (SeedStats, error) {
	var stats SeedStats
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if s.validator != nil {
			if err := s.validator.Validate(rec); err != nil {
				return stats, fmt.Errorf("validate %s record at %s: %w", rec.Kind, rec.Location, err)
			}
		}
		if err := s.apply(ctx, rec, &stats); err != nil {
			return stats, err
		}
	}
	s.logger.Info("seeding finished",
		"subjects", stats.Subjects,
		"chapters", stats.Chapters,
		"quizzes", stats.Quizzes,
	)
	return stats, nil
}

func (s *Seeder) apply(ctx context.Context, rec content.Record, stats *SeedStats) error {
	loc := rec.Location
	switch rec.Kind {
	case content.KindSubject:
		if rec.Subject == nil {
			return fmt.Errorf("subject record at %s has no payload", loc)
		}
		path := domain.SubjectsPath(loc.Grade).Doc(rec.Subject.ID)
		if err := s.put(ctx, path, rec.Subject); err != nil {
			return err
		}
		stats.Subjects++
	case content.KindChapter:
		if rec.Chapter == nil {
			return fmt.Errorf("chapter record at %s has no payload", loc)
		}
		path := domain.ChaptersPath(loc.Grade, loc.SubjectID).Doc(rec.Chapter.ID)
		if err := s.put(ctx, path, rec.Chapter); err != nil {
			return err
		}
		stats.Chapters++
	case content.KindQuizzes:
		collection := domain.QuizzesPath(loc.Grade, loc.SubjectID, loc.ChapterID)
		for i := range rec.Quizzes {
			if err := s.put(ctx, collection.Doc(rec.Quizzes[i].ID), &rec.Quizzes[i]); err != nil {
				return err
			}
			stats.Quizzes++
		}
	default:
		return fmt.Errorf("unknown record kind %s at %s", rec.Kind, loc)
	}
	return nil
}

func (s *Seeder) put(ctx context.Context, path domain.Path, payload any) error {
	if err := path.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := s.store.Set(ctx, path, data); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	s.logger.Debug("document written", "path", path.String())
	return nil
}
