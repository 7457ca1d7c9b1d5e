// Package service implements the validated user operations of paycycle on
// top of the repository and the pay-cycle engine.
package service

import (
	"fmt"
	"io"
	"log"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/paycycle/internal/calendar"
	"github.com/theirongolddev/paycycle/internal/model"
	"github.com/theirongolddev/paycycle/internal/repository"
)

// Service holds the dependencies shared by every operation.
type Service struct {
	repo   *repository.Repository
	schema model.CategorySchema
	clock  calendar.Clock
	loc    *time.Location
	log    *log.Logger
}

// Options configures a Service. Zero fields take defaults.
type Options struct {
	Schema   model.CategorySchema
	Clock    calendar.Clock
	Location *time.Location
	Logger   *log.Logger
}

// New returns a service over repo.
func New(repo *repository.Repository, opts Options) *Service {
	s := &Service{
		repo:   repo,
		schema: opts.Schema,
		clock:  opts.Clock,
		loc:    opts.Location,
		log:    opts.Logger,
	}
	if len(s.schema.Categories) == 0 {
		s.schema = model.DefaultSchema()
	}
	if s.clock == nil {
		s.clock = calendar.SystemClock{}
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.log == nil {
		s.log = log.New(io.Discard, "", 0)
	}
	return s
}

// Schema returns the category schema in use.
func (s *Service) Schema() model.CategorySchema { return s.schema }

// Repository returns the underlying repository.
func (s *Service) Repository() *repository.Repository { return s.repo }

// Today returns the current calendar date.
func (s *Service) Today() calendar.Date {
	return calendar.Today(s.clock, s.loc)
}

// Init prepares stored state for use: legacy data is migrated, orphaned
// profile data removed, a default profile created when none exists and the
// first profile selected when none is active.
func (s *Service) Init() error {
	if _, err := s.repo.MigrateLegacy(); err != nil {
		return fmt.Errorf("legacy migration: %w", err)
	}
	if _, err := s.repo.CollectOrphans(); err != nil {
		return fmt.Errorf("orphan cleanup: %w", err)
	}

	profiles, err := s.repo.Profiles()
	if err != nil {
		return err
	}
	if len(profiles) == 0 {
		profiles = []model.CycleProfile{model.DefaultProfile()}
		if err := s.repo.SaveProfiles(profiles); err != nil {
			return err
		}
		s.log.Printf("created default profile %q", model.DefaultProfileName)
	}

	active, err := s.repo.ActiveProfileID()
	if err != nil {
		return err
	}
	if active == "" || !slices.ContainsFunc(profiles, func(p model.CycleProfile) bool { return p.ID == active }) {
		return s.repo.SetActiveProfileID(profiles[0].ID)
	}
	return nil
}

// Profiles returns every profile.
func (s *Service) Profiles() ([]model.CycleProfile, error) {
	return s.repo.Profiles()
}

// ResolveProfile finds a profile by id, or by case-insensitive name. An
// empty ref resolves to the active profile.
func (s *Service) ResolveProfile(ref string) (model.CycleProfile, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return s.ActiveProfile()
	}
	profiles, err := s.repo.Profiles()
	if err != nil {
		return model.CycleProfile{}, err
	}
	for _, p := range profiles {
		if p.ID == ref {
			return p, nil
		}
	}
	for _, p := range profiles {
		if strings.EqualFold(p.Name, ref) {
			return p, nil
		}
	}
	return model.CycleProfile{}, fmt.Errorf("%w: %q", ErrProfileNotFound, ref)
}

// ActiveProfile returns the selected profile.
func (s *Service) ActiveProfile() (model.CycleProfile, error) {
	id, err := s.repo.ActiveProfileID()
	if err != nil {
		return model.CycleProfile{}, err
	}
	if id == "" {
		return model.CycleProfile{}, ErrNoActiveProfile
	}
	p, ok, err := s.repo.Profile(id)
	if err != nil {
		return model.CycleProfile{}, err
	}
	if !ok {
		return model.CycleProfile{}, fmt.Errorf("%w: active profile %q", ErrProfileNotFound, id)
	}
	return p, nil
}

// AddProfile creates an unconfigured profile. An empty color picks the next
// one from the palette.
func (s *Service) AddProfile(name, color string) (model.CycleProfile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.CycleProfile{}, fmt.Errorf("%w: profile name is required", ErrInvalidConfig)
	}
	profiles, err := s.repo.Profiles()
	if err != nil {
		return model.CycleProfile{}, err
	}
	for _, p := range profiles {
		if strings.EqualFold(p.Name, name) {
			return model.CycleProfile{}, fmt.Errorf("%w: a profile named %q already exists", ErrInvalidConfig, name)
		}
	}
	if color == "" {
		color = model.ProfileColors[len(profiles)%len(model.ProfileColors)]
	}
	p := model.CycleProfile{ID: model.NewID(), Name: name, Color: color}
	if err := s.repo.SaveProfiles(append(profiles, p)); err != nil {
		return model.CycleProfile{}, err
	}
	return p, nil
}

// UseProfile selects the active profile.
func (s *Service) UseProfile(ref string) (model.CycleProfile, error) {
	p, err := s.ResolveProfile(ref)
	if err != nil {
		return model.CycleProfile{}, err
	}
	return p, s.repo.SetActiveProfileID(p.ID)
}

// DeleteProfile removes a profile together with its daily and planned
// expenses. When the active profile is deleted the first remaining one is
// selected.
func (s *Service) DeleteProfile(ref string) (model.CycleProfile, error) {
	target, err := s.ResolveProfile(ref)
	if err != nil {
		return model.CycleProfile{}, err
	}
	profiles, err := s.repo.Profiles()
	if err != nil {
		return model.CycleProfile{}, err
	}
	profiles = slices.DeleteFunc(profiles, func(p model.CycleProfile) bool { return p.ID == target.ID })
	if err := s.repo.SaveProfiles(profiles); err != nil {
		return model.CycleProfile{}, err
	}
	if _, err := s.repo.CollectOrphans(); err != nil {
		return model.CycleProfile{}, err
	}

	active, err := s.repo.ActiveProfileID()
	if err != nil {
		return model.CycleProfile{}, err
	}
	if active == target.ID {
		next := ""
		if len(profiles) > 0 {
			next = profiles[0].ID
		}
		if err := s.repo.SetActiveProfileID(next); err != nil {
			return model.CycleProfile{}, err
		}
	}
	return target, nil
}

// ConfigInput is the user-supplied pay cycle of a profile.
type ConfigInput struct {
	Frequency string
	StartDate string
	Income    string
}

// ParseConfig validates a pay-cycle config.
func ParseConfig(in ConfigInput) (model.CycleConfig, error) {
	freq, err := model.ParseCycleFrequency(in.Frequency)
	if err != nil {
		return model.CycleConfig{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	start, err := calendar.Parse(in.StartDate)
	if err != nil {
		return model.CycleConfig{}, fmt.Errorf("%w: start date: %v", ErrInvalidConfig, err)
	}
	income, err := decimal.NewFromString(strings.TrimSpace(in.Income))
	if err != nil {
		return model.CycleConfig{}, fmt.Errorf("%w: income %q is not a number", ErrInvalidConfig, in.Income)
	}
	if income.IsNegative() {
		return model.CycleConfig{}, fmt.Errorf("%w: income must not be negative", ErrInvalidConfig)
	}
	return model.CycleConfig{Frequency: freq, StartDate: start, Income: income}, nil
}

// ConfigureProfile sets the pay cycle of a profile.
func (s *Service) ConfigureProfile(ref string, cfg model.CycleConfig) (model.CycleProfile, error) {
	target, err := s.ResolveProfile(ref)
	if err != nil {
		return model.CycleProfile{}, err
	}
	if _, err := model.ParseCycleFrequency(string(cfg.Frequency)); err != nil || cfg.StartDate.IsZero() || cfg.Income.IsNegative() {
		return model.CycleProfile{}, fmt.Errorf("%w: frequency, start date and a non-negative income are required", ErrInvalidConfig)
	}
	profiles, err := s.repo.Profiles()
	if err != nil {
		return model.CycleProfile{}, err
	}
	for i := range profiles {
		if profiles[i].ID == target.ID {
			c := cfg
			profiles[i].Config = &c
			target = profiles[i]
		}
	}
	return target, s.repo.SaveProfiles(profiles)
}

// RenameProfile changes a profile's display name and color. Empty values are
// left unchanged.
func (s *Service) RenameProfile(ref, name, color string) (model.CycleProfile, error) {
	target, err := s.ResolveProfile(ref)
	if err != nil {
		return model.CycleProfile{}, err
	}
	profiles, err := s.repo.Profiles()
	if err != nil {
		return model.CycleProfile{}, err
	}
	for i := range profiles {
		if profiles[i].ID != target.ID {
			continue
		}
		if n := strings.TrimSpace(name); n != "" {
			profiles[i].Name = n
		}
		if color != "" {
			profiles[i].Color = color
		}
		target = profiles[i]
	}
	return target, s.repo.SaveProfiles(profiles)
}
