// Package budget owns the in-memory household document and every mutation
// applied to it. All operations are synchronous transforms applied under one
// mutex; persistence happens afterwards through the Persister, so a caller
// never waits on the network.
//
// Policy rejections (deleting the savings category) and unknown-id edits are
// silent no-ops by design. No mutation here returns an error.
package budget

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"spokoj/internal/classify"
	"spokoj/internal/core"
	"spokoj/internal/store"
)

// Snapshot is one immutable state of the document, tagged with the mutation
// revision that produced it.
type Snapshot struct {
	Doc      core.Document
	Revision int64
}

// Persister receives the latest snapshot after every mutation. Enqueue must
// not block; the syncer coalesces in-flight writes.
type Persister interface {
	Enqueue(snap Snapshot)
}

// TransactionInput is a transaction before the ledger assigns id and
// timestamp.
type TransactionInput struct {
	Amount     int64
	CategoryID string
	Date       string
	Note       string
	CreatedBy  core.Member
}

// TransactionPatch carries partial edits; nil fields stay untouched.
// ID and timestamp are not patchable.
type TransactionPatch struct {
	Amount     *int64
	CategoryID *string
	Date       *string
	Note       *string
	CreatedBy  *core.Member
}

// Service is the aggregate root for one household.
type Service struct {
	mu       sync.RWMutex
	doc      core.Document
	revision int64

	persister Persister
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string
}

// Option customizes a Service, mainly for tests.
type Option func(*Service)

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator overrides transaction/category id generation.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// Load reads the persisted document, heals it and returns a ready service.
// A store that has never been written yields the default document.
func Load(ctx context.Context, st store.DocumentStore, persister Persister, logger *slog.Logger, opts ...Option) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}

	doc, err := st.Load(ctx)
	switch {
	case errors.Is(err, store.ErrNotFound):
		logger.InfoContext(ctx, "No persisted document, starting from defaults")
		doc = core.DefaultDocument()
	case err != nil:
		return nil, fmt.Errorf("load document: %w", err)
	}

	doc = Sanitize(doc, logger)

	s := &Service{
		doc:       doc,
		persister: persister,
		logger:    logger,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Sanitize applies the defensive per-field-group defaulting and the savings
// category migration. A single malformed group never resets the rest of the
// document.
func Sanitize(doc core.Document, logger *slog.Logger) core.Document {
	if logger == nil {
		logger = slog.Default()
	}
	if doc.Configs == nil {
		doc.Configs = map[string]core.MonthConfig{}
	}
	if len(doc.Categories) == 0 {
		doc.Categories = core.DefaultCategories()
	}
	if doc.Transactions == nil {
		doc.Transactions = []core.Transaction{}
	}
	if doc.MerchantMappings == nil {
		doc.MerchantMappings = []core.MerchantMapping{}
	}

	hasSavings := false
	for _, c := range doc.Categories {
		if c.ID == core.SavingsCategoryID {
			hasSavings = true
			break
		}
	}
	if !hasSavings {
		logger.Info("Migrating document: appending missing savings category")
		doc.Categories = append(doc.Categories, core.DefaultSavingsCategory())
	}
	return doc
}

// changed bumps the revision and hands the new snapshot to the persister.
// Callers hold the write lock.
func (s *Service) changed() {
	s.revision++
	if s.persister != nil {
		s.persister.Enqueue(Snapshot{Doc: s.doc.Clone(), Revision: s.revision})
	}
}

// Revision returns the number of mutations applied since load.
func (s *Service) Revision() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// CurrentMonthID derives the active month from the wall clock. It is never
// persisted.
func (s *Service) CurrentMonthID() string {
	return core.CurrentMonthID(s.now())
}

// Snapshot returns a deep copy of the document.
func (s *Service) Snapshot() core.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Clone()
}

// --- Category ledger ---

// Categories returns a copy of the category list in display order.
func (s *Service) Categories() []core.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Category, len(s.doc.Categories))
	copy(out, s.doc.Categories)
	return out
}

// AddCategory appends a new category just before the savings category, which
// must stay last.
func (s *Service) AddCategory(name string, limit int64, icon string) core.Category {
	s.mu.Lock()
	defer s.mu.Unlock()

	cat := core.Category{ID: s.newID(), Name: name, Limit: limit, Icon: icon}

	inserted := false
	cats := make([]core.Category, 0, len(s.doc.Categories)+1)
	for _, c := range s.doc.Categories {
		if c.ID == core.SavingsCategoryID && !inserted {
			cats = append(cats, cat)
			inserted = true
		}
		cats = append(cats, c)
	}
	if !inserted {
		cats = append(cats, cat)
	}
	s.doc.Categories = cats

	s.changed()
	return cat
}

// UpdateCategory merges name and icon into an existing category. Unknown ids
// are a no-op.
func (s *Service) UpdateCategory(id string, name, icon *string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.doc.Categories {
		if s.doc.Categories[i].ID != id {
			continue
		}
		if name != nil {
			s.doc.Categories[i].Name = *name
		}
		if icon != nil {
			s.doc.Categories[i].Icon = *icon
		}
		s.changed()
		return
	}
}

// UpdateCategoryLimit sets one category's limit. The savings id is accepted
// like any other.
func (s *Service) UpdateCategoryLimit(id string, limit int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLimitsLocked(map[string]int64{id: limit})
}

// UpdateAllCategoryLimits applies a batch of limit edits as one mutation, so
// a single user save produces a single persisted write.
func (s *Service) UpdateAllCategoryLimits(limits map[string]int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLimitsLocked(limits)
}

func (s *Service) setLimitsLocked(limits map[string]int64) {
	touched := false
	for i := range s.doc.Categories {
		if limit, ok := limits[s.doc.Categories[i].ID]; ok {
			s.doc.Categories[i].Limit = limit
			touched = true
		}
	}
	if touched {
		s.changed()
	}
}

// DeleteCategory removes a category. Deleting the savings category or a
// system category is a silent no-op, not an error: callers must not rely on
// it failing.
func (s *Service) DeleteCategory(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == core.SavingsCategoryID {
		s.logger.Debug("Refusing to delete savings category")
		return
	}
	for i, c := range s.doc.Categories {
		if c.ID != id {
			continue
		}
		if c.IsSystem {
			s.logger.Debug("Refusing to delete system category", "id", id)
			return
		}
		s.doc.Categories = append(s.doc.Categories[:i], s.doc.Categories[i+1:]...)
		s.changed()
		return
	}
}

// --- Month configuration ---

// GetCreateMonthConfig returns the stored config for a month or synthesizes
// the default one. The default is NOT persisted; only UpdateMonthConfig
// writes, so merely viewing a month never clutters storage.
func (s *Service) GetCreateMonthConfig(monthID string) core.MonthConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if cfg, ok := s.doc.Configs[monthID]; ok {
		return cfg
	}
	return core.MonthConfig{
		ID:           monthID,
		TotalIncome:  core.DefaultMonthlyIncome,
		SavingsGoals: []core.SavingsGoal{core.InitialSavingsGoal()},
	}
}

// UpdateMonthConfig upserts a month config by id, replacing the whole record.
func (s *Service) UpdateMonthConfig(cfg core.MonthConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Configs[cfg.ID] = cfg
	s.changed()
}

// --- Transaction ledger ---

// Transactions returns a copy of the transaction list in insertion-group
// order, most recent insertion first. Consumers sort by date or timestamp
// themselves when they need a different order.
func (s *Service) Transactions() []core.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Transaction, len(s.doc.Transactions))
	copy(out, s.doc.Transactions)
	return out
}

// AddTransaction assigns a fresh id and timestamp and prepends the entry.
func (s *Service) AddTransaction(input TransactionInput) core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := s.buildLocked(input)
	s.doc.Transactions = append([]core.Transaction{tx}, s.doc.Transactions...)
	s.changed()
	return tx
}

// AddTransactions prepends a batch as one group ahead of existing entries,
// preserving input order within the group. One mutation, one persisted write.
func (s *Service) AddTransactions(inputs []TransactionInput) []core.Transaction {
	if len(inputs) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	group := make([]core.Transaction, 0, len(inputs))
	for _, input := range inputs {
		group = append(group, s.buildLocked(input))
	}
	s.doc.Transactions = append(group, s.doc.Transactions...)
	s.changed()

	out := make([]core.Transaction, len(group))
	copy(out, group)
	return out
}

func (s *Service) buildLocked(input TransactionInput) core.Transaction {
	return core.Transaction{
		ID:         s.newID(),
		Amount:     input.Amount,
		CategoryID: input.CategoryID,
		Date:       input.Date,
		Note:       input.Note,
		CreatedBy:  input.CreatedBy,
		Timestamp:  s.now().UnixMilli(),
	}
}

// EditTransaction merges the patch into an existing entry. ID and timestamp
// are immutable; unknown ids are a no-op.
func (s *Service) EditTransaction(id string, patch TransactionPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.doc.Transactions {
		if s.doc.Transactions[i].ID != id {
			continue
		}
		t := &s.doc.Transactions[i]
		if patch.Amount != nil {
			t.Amount = *patch.Amount
		}
		if patch.CategoryID != nil {
			t.CategoryID = *patch.CategoryID
		}
		if patch.Date != nil {
			t.Date = *patch.Date
		}
		if patch.Note != nil {
			t.Note = *patch.Note
		}
		if patch.CreatedBy != nil {
			t.CreatedBy = *patch.CreatedBy
		}
		s.changed()
		return
	}
}

// DeleteTransaction removes an entry by id; unknown ids are a no-op.
func (s *Service) DeleteTransaction(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, t := range s.doc.Transactions {
		if t.ID == id {
			s.doc.Transactions = append(s.doc.Transactions[:i], s.doc.Transactions[i+1:]...)
			s.changed()
			return
		}
	}
}

// --- Merchant mappings ---

// MerchantMappings returns a copy of the learned mappings in match order.
func (s *Service) MerchantMappings() []core.MerchantMapping {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.MerchantMapping, len(s.doc.MerchantMappings))
	copy(out, s.doc.MerchantMappings)
	return out
}

// SaveMerchantMapping upserts a learned mapping by pattern.
func (s *Service) SaveMerchantMapping(m core.MerchantMapping) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.MerchantMappings = classify.Upsert(s.doc.MerchantMappings, m)
	s.changed()
}

// CategoryForMerchant suggests a category for merchant text, consulting the
// learned mappings. Not authoritative; the import flow may override it.
func (s *Service) CategoryForMerchant(text string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return classify.NewSubstringMatcher(s.doc.MerchantMappings).Match(text)
}

// --- Reconciliation views ---

// Summary computes the dashboard view for a month.
func (s *Service) Summary(monthID string) core.MonthSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.Summarize(s.doc.Categories, s.doc.Transactions, monthID)
}

// Plan computes the zero-based planning view for a month using its declared
// (or default) income.
func (s *Service) Plan(monthID string) core.PlanSummary {
	income := s.GetCreateMonthConfig(monthID).TotalIncome
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.Reconcile(s.doc.Categories, income, monthID)
}

// Review computes the month-review statistics.
func (s *Service) Review(monthID string) core.MonthReview {
	income := s.GetCreateMonthConfig(monthID).TotalIncome
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.Review(s.doc.Transactions, income, monthID)
}

// CommitPlan atomically saves a month's income and the edited limits, as a
// single persisted write. The commit is refused while the plan over-allocates
// income (unassigned < 0); that is the one user action this service rejects.
func (s *Service) CommitPlan(monthID string, income int64, limits map[string]int64) (core.PlanSummary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Evaluate the prospective plan before touching state.
	prospective := make([]core.Category, len(s.doc.Categories))
	copy(prospective, s.doc.Categories)
	for i := range prospective {
		if limit, ok := limits[prospective[i].ID]; ok {
			prospective[i].Limit = limit
		}
	}
	plan := core.Reconcile(prospective, income, monthID)
	if plan.Unassigned < 0 {
		return plan, false
	}

	s.doc.Categories = prospective
	s.doc.Configs[monthID] = core.MonthConfig{
		ID:           monthID,
		TotalIncome:  income,
		SavingsGoals: []core.SavingsGoal{},
	}
	s.changed()
	return plan, true
}
