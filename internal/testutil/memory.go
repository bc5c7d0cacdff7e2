// Package testutil holds in-memory stand-ins for the storage, cache and
// event adapters. Transactions stage their writes and apply them only on
// commit, so tests can observe rollback.
package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/khoahotran/career-onboard/internal/application/service"
	"github.com/khoahotran/career-onboard/internal/domain/insight"
	"github.com/khoahotran/career-onboard/internal/domain/profile"
	"github.com/khoahotran/career-onboard/internal/domain/user"
	"github.com/khoahotran/career-onboard/pkg/apperror"
)

type MemoryStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	users    map[string]*user.User
	insights map[string]*insight.IndustryInsight

	// Injected failures.
	FailUpdateProfile error
	FailLookups       error

	commits   int
	rollbacks int
}

var _ service.UnitOfWork = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    map[string]*user.User{},
		insights: map[string]*insight.IndustryInsight{},
	}
}

// Users and Insights operate on committed state, outside any transaction.
func (s *MemoryStore) Users() user.Repository       { return &memUserRepo{s: s} }
func (s *MemoryStore) Insights() insight.Repository { return &memInsightRepo{s: s} }
func (s *MemoryStore) Commits() int                 { s.mu.Lock(); defer s.mu.Unlock(); return s.commits }
func (s *MemoryStore) Rollbacks() int               { s.mu.Lock(); defer s.mu.Unlock(); return s.rollbacks }

func (s *MemoryStore) AddUser(u *user.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ExternalID] = cloneUser(u)
}

func (s *MemoryStore) AddInsight(in *insight.IndustryInsight) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insights[in.Industry] = cloneInsight(in)
}

func (s *MemoryStore) User(externalID string) (*user.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[externalID]
	if !ok {
		return nil, false
	}
	return cloneUser(u), true
}

func (s *MemoryStore) Insight(industry string) (*insight.IndustryInsight, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	in, ok := s.insights[industry]
	if !ok {
		return nil, false
	}
	return cloneInsight(in), true
}

func (s *MemoryStore) UserCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

func (s *MemoryStore) InsightCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.insights)
}

type memTx struct {
	users    map[string]*user.User
	insights map[string]*insight.IndustryInsight
}

// Do serializes transactions. Staged writes are applied only when fn
// succeeds and ctx is still live.
func (s *MemoryStore) Do(ctx context.Context, fn func(ctx context.Context, st service.Stores) error) (err error) {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	tx := &memTx{
		users:    map[string]*user.User{},
		insights: map[string]*insight.IndustryInsight{},
	}

	defer func() {
		if p := recover(); p != nil {
			s.markRollback()
			panic(p)
		}
	}()

	if err := fn(ctx, service.Stores{
		Users:    &memUserRepo{s: s, tx: tx},
		Insights: &memInsightRepo{s: s, tx: tx},
	}); err != nil {
		s.markRollback()
		return err
	}
	if err := ctx.Err(); err != nil {
		s.markRollback()
		return fmt.Errorf("transaction deadline exceeded before commit: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range tx.insights {
		if _, exists := s.insights[k]; exists {
			s.rollbacks++
			return apperror.NewConflict("industry insight", "industry", k)
		}
	}
	for k, v := range tx.insights {
		s.insights[k] = v
	}
	for k, v := range tx.users {
		s.users[k] = v
	}
	s.commits++
	return nil
}

func (s *MemoryStore) markRollback() {
	s.mu.Lock()
	s.rollbacks++
	s.mu.Unlock()
}

type memUserRepo struct {
	s  *MemoryStore
	tx *memTx
}

func (r *memUserRepo) lookup(externalID string) (*user.User, bool) {
	if r.tx != nil {
		if u, ok := r.tx.users[externalID]; ok {
			return u, true
		}
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[externalID]
	return u, ok
}

func (r *memUserRepo) FindByExternalID(_ context.Context, externalID string) (*user.User, error) {
	if r.s.FailLookups != nil {
		return nil, r.s.FailLookups
	}
	u, ok := r.lookup(externalID)
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *memUserRepo) FindIndustryByExternalID(ctx context.Context, externalID string) (*string, error) {
	u, err := r.FindByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	return u.Industry, nil
}

func (r *memUserRepo) Create(_ context.Context, u *user.User) (*user.User, error) {
	if existing, ok := r.lookup(u.ExternalID); ok {
		return cloneUser(existing), nil
	}
	stored := cloneUser(u)
	if r.tx != nil {
		r.tx.users[u.ExternalID] = stored
	} else {
		r.s.mu.Lock()
		r.s.users[u.ExternalID] = stored
		r.s.mu.Unlock()
	}
	return cloneUser(stored), nil
}

func (r *memUserRepo) UpdateProfile(_ context.Context, id uuid.UUID, upd profile.Update) (*user.User, error) {
	if r.s.FailUpdateProfile != nil {
		return nil, r.s.FailUpdateProfile
	}

	var target *user.User
	if r.tx != nil {
		for _, u := range r.tx.users {
			if u.ID == id {
				target = cloneUser(u)
			}
		}
	}
	if target == nil {
		r.s.mu.Lock()
		for _, u := range r.s.users {
			if u.ID == id {
				target = cloneUser(u)
			}
		}
		r.s.mu.Unlock()
	}
	if target == nil {
		return nil, user.ErrUserNotFound
	}

	industry := upd.Industry
	target.Industry = &industry
	target.Experience = upd.Experience
	target.Bio = upd.Bio
	target.Skills = append([]string{}, upd.Skills...)
	target.OnboardingCompleted = true
	target.UpdatedAt = time.Now().UTC()

	if r.tx != nil {
		r.tx.users[target.ExternalID] = target
	} else {
		r.s.mu.Lock()
		r.s.users[target.ExternalID] = target
		r.s.mu.Unlock()
	}
	return cloneUser(target), nil
}

type memInsightRepo struct {
	s  *MemoryStore
	tx *memTx
}

func (r *memInsightRepo) lookup(industry string) (*insight.IndustryInsight, bool) {
	if r.tx != nil {
		if in, ok := r.tx.insights[industry]; ok {
			return in, true
		}
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	in, ok := r.s.insights[industry]
	return in, ok
}

func (r *memInsightRepo) FindByIndustry(_ context.Context, industry string) (*insight.IndustryInsight, error) {
	if r.s.FailLookups != nil {
		return nil, r.s.FailLookups
	}
	in, ok := r.lookup(industry)
	if !ok {
		return nil, insight.ErrInsightNotFound
	}
	return cloneInsight(in), nil
}

func (r *memInsightRepo) Create(_ context.Context, in *insight.IndustryInsight) (*insight.IndustryInsight, error) {
	if existing, ok := r.lookup(in.Industry); ok {
		return cloneInsight(existing), nil
	}
	stored := cloneInsight(in)
	if r.tx != nil {
		r.tx.insights[in.Industry] = stored
	} else {
		r.s.mu.Lock()
		r.s.insights[in.Industry] = stored
		r.s.mu.Unlock()
	}
	return cloneInsight(stored), nil
}

func cloneUser(u *user.User) *user.User {
	c := *u
	if u.Industry != nil {
		industry := *u.Industry
		c.Industry = &industry
	}
	c.Skills = append([]string{}, u.Skills...)
	return &c
}

func cloneInsight(in *insight.IndustryInsight) *insight.IndustryInsight {
	c := *in
	c.SalaryRanges = append([]insight.SalaryRange{}, in.SalaryRanges...)
	c.TopSkills = append([]string{}, in.TopSkills...)
	c.KeyTrends = append([]string{}, in.KeyTrends...)
	c.RecommendedSkills = append([]string{}, in.RecommendedSkills...)
	return &c
}

// MemoryViewCache is a map-backed service.ViewCache.
type MemoryViewCache struct {
	mu             sync.Mutex
	views          map[string]json.RawMessage
	invalidations  []string
	FailInvalidate error
}

var _ service.ViewCache = (*MemoryViewCache)(nil)

func NewMemoryViewCache() *MemoryViewCache {
	return &MemoryViewCache{views: map[string]json.RawMessage{}}
}

func viewKey(path, externalID string) string { return path + "|" + externalID }

func (c *MemoryViewCache) Get(_ context.Context, path, externalID string) (json.RawMessage, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.views[viewKey(path, externalID)]
	return v, ok, nil
}

func (c *MemoryViewCache) Set(_ context.Context, path, externalID string, view json.RawMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.views[viewKey(path, externalID)] = view
	return nil
}

func (c *MemoryViewCache) SetIfAbsent(_ context.Context, path, externalID string, view json.RawMessage) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.views[viewKey(path, externalID)]; ok {
		return false, nil
	}
	c.views[viewKey(path, externalID)] = view
	return true, nil
}

func (c *MemoryViewCache) Invalidate(_ context.Context, path, externalID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidations = append(c.invalidations, viewKey(path, externalID))
	if c.FailInvalidate != nil {
		return c.FailInvalidate
	}
	delete(c.views, viewKey(path, externalID))
	return nil
}

// Invalidations lists "path|externalID" for every Invalidate call.
func (c *MemoryViewCache) Invalidations() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string{}, c.invalidations...)
}

// RecordingPublisher keeps every published event.
type RecordingPublisher struct {
	mu     sync.Mutex
	events []service.ProfileEventPayload
}

var _ service.EventPublisher = (*RecordingPublisher)(nil)

func (p *RecordingPublisher) PublishProfileEvent(_ context.Context, payload service.ProfileEventPayload) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, payload)
	return nil
}

func (p *RecordingPublisher) Events() []service.ProfileEventPayload {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]service.ProfileEventPayload{}, p.events...)
}

// GeneratorFunc adapts a function to service.InsightGenerator.
type GeneratorFunc func(ctx context.Context, industry string) (*insight.Generated, error)

func (f GeneratorFunc) GenerateInsights(ctx context.Context, industry string) (*insight.Generated, error) {
	return f(ctx, industry)
}
