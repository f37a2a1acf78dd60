// Package ordering maintains the per-project display order of criteria:
// automatic importance sorting by default, with a persisted manual
// override per category.
package ordering

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/vendor-radar/internal/catalog"
	"github.com/spigell/vendor-radar/internal/storage"
)

// Manager owns the two persisted pieces of ordering state: the
// sorting-mode flag and the per-category manual order map. Every change
// is written through to the store immediately, so another session picks
// up the last saved arrangement. The two keys are independent; there is
// no transaction across them.
type Manager struct {
	store     storage.Store
	projectID string
	logger    *zap.Logger
}

// NewManager creates an order manager for one project.
func NewManager(store storage.Store, projectID string, logger *zap.Logger) *Manager {
	return &Manager{
		store:     store,
		projectID: projectID,
		logger:    logger,
	}
}

func (m *Manager) orderKey() string {
	return fmt.Sprintf("criteria_order_%s", m.projectID)
}

func (m *Manager) sortingKey() string {
	return fmt.Sprintf("criteria_order_%s_sorting", m.projectID)
}

// SortingEnabled reports whether automatic importance sorting is active.
// Sorted mode is the default for a fresh project.
func (m *Manager) SortingEnabled(ctx context.Context) bool {
	data, err := m.store.Get(ctx, m.sortingKey())
	if errors.Is(err, storage.ErrNotFound) {
		return true
	}
	if err != nil {
		m.logger.Warn("reading sorting flag failed, falling back to sorted mode", zap.Error(err))
		return true
	}

	var enabled bool
	if err := json.Unmarshal(data, &enabled); err != nil {
		m.logger.Warn("sorting flag is malformed, falling back to sorted mode",
			zap.String("key", m.sortingKey()),
			zap.Error(err),
		)
		return true
	}
	return enabled
}

// ToggleSorting flips between sorted and manual mode and persists the
// flag. It does not touch the stored order map.
func (m *Manager) ToggleSorting(ctx context.Context) (bool, error) {
	enabled := !m.SortingEnabled(ctx)

	data, err := json.Marshal(enabled)
	if err != nil {
		return false, fmt.Errorf("encoding sorting flag: %w", err)
	}
	if err := m.store.Set(ctx, m.sortingKey(), data); err != nil {
		return false, fmt.Errorf("persisting sorting flag: %w", err)
	}

	m.logger.Debug("toggled criteria sorting",
		zap.String("project", m.projectID),
		zap.Bool("sorting_enabled", enabled),
	)
	return enabled, nil
}

// OrderedCriteria returns the display order for one category's criteria.
// In sorted mode the saved manual order is ignored entirely, so toggling
// away and back is lossless.
func (m *Manager) OrderedCriteria(ctx context.Context, category string, criteria catalog.Criteria) catalog.Criteria {
	if m.SortingEnabled(ctx) {
		return SortByImportance(criteria)
	}

	saved := m.loadOrder(ctx)[normalizeCategory(category)]
	return applyManualOrder(criteria, saved)
}

// SaveCurrentOrder snapshots the presented criteria, grouped by their
// type, as the new manual baseline for every category.
func (m *Manager) SaveCurrentOrder(ctx context.Context, criteria catalog.Criteria) error {
	order := m.loadOrder(ctx)

	grouped := make(map[string][]string)
	for _, criterion := range criteria {
		key := normalizeCategory(criterion.Type)
		grouped[key] = append(grouped[key], criterion.ID)
	}
	for category, ids := range grouped {
		order[category] = ids
	}

	return m.persistOrder(ctx, order)
}

// UpdateOrder replaces the stored sequence for one category. A total
// replace, not a merge: the caller's sequence fully expresses insertions
// and removals.
func (m *Manager) UpdateOrder(ctx context.Context, category string, ids []string) error {
	order := m.loadOrder(ctx)
	order[normalizeCategory(category)] = append([]string(nil), ids...)
	return m.persistOrder(ctx, order)
}

func (m *Manager) loadOrder(ctx context.Context) map[string][]string {
	data, err := m.store.Get(ctx, m.orderKey())
	if errors.Is(err, storage.ErrNotFound) {
		return make(map[string][]string)
	}
	if err != nil {
		m.logger.Warn("reading criteria order failed, treating as empty", zap.Error(err))
		return make(map[string][]string)
	}

	var order map[string][]string
	if err := json.Unmarshal(data, &order); err != nil {
		m.logger.Warn("persisted criteria order is malformed, treating as empty",
			zap.String("key", m.orderKey()),
			zap.Error(err),
		)
		return make(map[string][]string)
	}
	if order == nil {
		order = make(map[string][]string)
	}
	return order
}

func (m *Manager) persistOrder(ctx context.Context, order map[string][]string) error {
	data, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("encoding criteria order: %w", err)
	}
	if err := m.store.Set(ctx, m.orderKey(), data); err != nil {
		return fmt.Errorf("persisting criteria order: %w", err)
	}

	m.logger.Debug("saved criteria order",
		zap.String("project", m.projectID),
		zap.Int("categories", len(order)),
	)
	return nil
}

func normalizeCategory(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}

// SortByImportance returns active criteria sorted descending by
// importance weight (stable, so ties keep their original order), with
// archived criteria appended after in their original order.
func SortByImportance(criteria catalog.Criteria) catalog.Criteria {
	active := make(catalog.Criteria, 0, len(criteria))
	archived := make(catalog.Criteria, 0)
	for _, criterion := range criteria {
		if criterion.Archived {
			archived = append(archived, criterion)
			continue
		}
		active = append(active, criterion)
	}

	sort.SliceStable(active, func(i, j int) bool {
		return active[i].Importance.Weight() > active[j].Importance.Weight()
	})

	return append(active, archived...)
}

// applyManualOrder arranges criteria by the saved id sequence; ids the
// sequence does not know are appended in their original relative order.
func applyManualOrder(criteria catalog.Criteria, saved []string) catalog.Criteria {
	position := make(map[string]int, len(saved))
	for idx, id := range saved {
		position[id] = idx
	}

	mapped := make(catalog.Criteria, 0, len(criteria))
	unmapped := make(catalog.Criteria, 0)
	for _, criterion := range criteria {
		if _, ok := position[criterion.ID]; ok {
			mapped = append(mapped, criterion)
			continue
		}
		unmapped = append(unmapped, criterion)
	}

	sort.SliceStable(mapped, func(i, j int) bool {
		return position[mapped[i].ID] < position[mapped[j].ID]
	})

	return append(mapped, unmapped...)
}
