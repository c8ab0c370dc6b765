package client

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"streamverse-backend/pkg/database"
	"streamverse-backend/pkg/models"
)

// AttemptError records why one backend in the chain did not produce a result.
type AttemptError struct {
	Backend string
	Err     error
}

func (e AttemptError) Error() string {
	return e.Backend + ": " + e.Err.Error()
}

func (e AttemptError) Unwrap() error { return e.Err }

// FallbackError 所有后端均失败
type FallbackError struct {
	Op       string
	Attempts []AttemptError
}

func (e *FallbackError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, a.Error())
	}
	return fmt.Sprintf("%s failed on every backend: %s", e.Op, strings.Join(parts, "; "))
}

// Unwrap exposes every attempt's error to errors.Is / errors.As.
func (e *FallbackError) Unwrap() []error {
	errs := make([]error, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		errs = append(errs, a.Err)
	}
	return errs
}

// Orchestrator runs each operation against an ordered list of stores and
// returns the first positive result. A not-found answer is a negative result,
// not a fault: the next store is still tried, and the negative is reported
// only when no store succeeds.
type Orchestrator struct {
	stores []database.SiteStore
}

// NewOrchestrator 按优先级创建降级链（远程在前，本地在后）
func NewOrchestrator(stores ...database.SiteStore) *Orchestrator {
	return &Orchestrator{stores: stores}
}

func (o *Orchestrator) Name() string {
	names := make([]string, 0, len(o.stores))
	for _, s := range o.stores {
		names = append(names, s.Name())
	}
	return strings.Join(names, "->")
}

// outcome of one attempt
type outcome int

const (
	positive outcome = iota
	negative
	fault
)

// run evaluates attempts in order until one is positive.
func (o *Orchestrator) run(op string, attempt func(database.SiteStore) (outcome, error)) (positiveFound, anyNegative bool, err error) {
	ferr := &FallbackError{Op: op}
	for i, store := range o.stores {
		result, aerr := attempt(store)
		switch result {
		case positive:
			if i > 0 {
				fmt.Printf("🔁 %s served by %s store after %d failed attempt(s)\n", op, store.Name(), i)
			}
			return true, false, nil
		case negative:
			anyNegative = true
			fmt.Printf("🔍 %s: not found on %s store\n", op, store.Name())
		case fault:
			ferr.Attempts = append(ferr.Attempts, AttemptError{Backend: store.Name(), Err: aerr})
			fmt.Printf("⚠️  %s failed on %s store: %v\n", op, store.Name(), aerr)
		}
	}
	if anyNegative {
		return false, true, nil
	}
	if len(ferr.Attempts) == 0 {
		return false, false, fmt.Errorf("%s: no stores configured: %w", op, database.ErrStoreUnavailable)
	}
	return false, false, ferr
}

func (o *Orchestrator) Initialize(ctx context.Context) error {
	var errs []error
	for _, s := range o.stores {
		if err := s.Initialize(ctx); err != nil {
			fmt.Printf("⚠️  Initialize %s store: %v\n", s.Name(), err)
			errs = append(errs, err)
		}
	}
	if len(errs) == len(o.stores) {
		return errors.Join(errs...)
	}
	return nil
}

func (o *Orchestrator) ListSites(ctx context.Context) ([]models.Site, error) {
	var sites []models.Site
	_, _, err := o.run("list sites", func(s database.SiteStore) (outcome, error) {
		got, err := s.ListSites(ctx)
		if err != nil {
			return fault, err
		}
		sites = got
		return positive, nil
	})
	if err != nil {
		return nil, err
	}
	return sites, nil
}

func (o *Orchestrator) AddSite(ctx context.Context, in models.SiteInput) (*models.Site, error) {
	var site *models.Site
	_, _, err := o.run("add site", func(s database.SiteStore) (outcome, error) {
		got, err := s.AddSite(ctx, in)
		if err != nil {
			return fault, err
		}
		site = got
		return positive, nil
	})
	if err != nil {
		return nil, err
	}
	return site, nil
}

func (o *Orchestrator) UpdateSite(ctx context.Context, id string, in models.SiteInput) (*models.Site, error) {
	var site *models.Site
	found, missing, err := o.run("update site "+id, func(s database.SiteStore) (outcome, error) {
		got, err := s.UpdateSite(ctx, id, in)
		if errors.Is(err, database.ErrSiteNotFound) {
			return negative, nil
		}
		if err != nil {
			return fault, err
		}
		site = got
		return positive, nil
	})
	if err != nil {
		return nil, err
	}
	if !found && missing {
		return nil, fmt.Errorf("update site %s: %w", id, database.ErrSiteNotFound)
	}
	return site, nil
}

func (o *Orchestrator) DeleteSite(ctx context.Context, id string) (bool, error) {
	found, _, err := o.run("delete site "+id, func(s database.SiteStore) (outcome, error) {
		deleted, err := s.DeleteSite(ctx, id)
		if err != nil {
			return fault, err
		}
		if !deleted {
			return negative, nil
		}
		return positive, nil
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

// FindSite looks id up store by store. A store that answers without it is a
// negative result and the next store is asked.
func (o *Orchestrator) FindSite(ctx context.Context, id string) (*models.Site, error) {
	var site *models.Site
	found, missing, err := o.run("find site "+id, func(s database.SiteStore) (outcome, error) {
		sites, err := s.ListSites(ctx)
		if err != nil {
			return fault, err
		}
		got, ok := database.FindSite(sites, id)
		if !ok {
			return negative, nil
		}
		site = got
		return positive, nil
	})
	if err != nil {
		return nil, err
	}
	if !found && missing {
		return nil, fmt.Errorf("find site %s: %w", id, database.ErrSiteNotFound)
	}
	return site, nil
}

// HealthCheck passes when any store in the chain is healthy.
func (o *Orchestrator) HealthCheck(ctx context.Context) error {
	_, _, err := o.run("health check", func(s database.SiteStore) (outcome, error) {
		if err := s.HealthCheck(ctx); err != nil {
			return fault, err
		}
		return positive, nil
	})
	return err
}

func (o *Orchestrator) Close() error {
	var errs []error
	for _, s := range o.stores {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ database.SiteStore = (*Orchestrator)(nil)
var _ database.SiteStore = (*APIStore)(nil)
