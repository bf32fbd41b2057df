package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"pantry/internal/expiry"
	"pantry/internal/extraction"
	"pantry/internal/model"
	"pantry/internal/notify"
	"pantry/internal/repository"
	"pantry/internal/stats"
)

var (
	ErrIDRequired       = errors.New("id is required")
	ErrNotFound         = errors.New("item not found")
	ErrInvalidInput     = errors.New("invalid item")
	ErrTextRequired     = errors.New("text is required")
	ErrExtractionFailed = errors.New("extraction failed")
	ErrNothingExtracted = errors.New("nothing extracted")
	ErrInvalidCategory  = errors.New("invalid category")
	ErrInvalidSort      = errors.New("invalid sort")
)

// Sort orders accepted by List.
const (
	SortExpiry = "expiry"
	SortName   = "name"
)

var itemOpsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "pantry_item_operations_total",
	Help: "Item lifecycle operations, by operation.",
}, []string{"op"})

var tracer = otel.Tracer("pantry/internal/service")

var extractionFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "pantry_extraction_failures_total",
	Help: "Import attempts where the extraction collaborator failed or returned nothing.",
})

// ItemInput is a manually entered item.
type ItemInput struct {
	Name       string
	Category   model.Category
	Quantity   int
	Unit       string
	Notes      string
	ExpiryDate time.Time
}

// ListQuery filters and orders the active inventory.
type ListQuery struct {
	// Category is a category name, "" or "All" for every category.
	Category string
	// Sort is SortExpiry (default) or SortName.
	Sort string
}

// ItemView is an item annotated with its classification at query time.
type ItemView struct {
	model.Item
	Status expiry.Status `json:"status"`
	Label  string        `json:"label"`
}

// SessionResult is what a client needs right after loading.
type SessionResult struct {
	Items    []model.Item       `json:"items"`
	Stats    stats.DerivedStats `json:"stats"`
	Notified *model.Item        `json:"notified,omitempty"`
}

// ItemService defines the pantry use cases. Every mutation reads the whole
// collection, changes it in memory, and writes it back whole.
type ItemService interface {
	// Add appends item as given and returns the refreshed collection.
	Add(ctx context.Context, item model.Item) []model.Item
	// AddBatch adds each item in order. Not atomic.
	AddBatch(ctx context.Context, items []model.Item) []model.Item
	// Update replaces the record with the same id. Missing ids are a no-op.
	Update(ctx context.Context, item model.Item) ([]model.Item, error)
	// Delete removes the record with id. Missing ids are a no-op.
	Delete(ctx context.Context, id string) ([]model.Item, error)
	// Consume marks the record consumed, keeping every other field.
	Consume(ctx context.Context, item model.Item) ([]model.Item, error)

	// Create builds an item from manual input and adds it.
	Create(ctx context.Context, in ItemInput) (*model.Item, error)
	// Import extracts items from free text and adds them. It returns the
	// items that were added.
	Import(ctx context.Context, text string) ([]model.Item, error)

	Get(ctx context.Context, id string) (*model.Item, error)
	List(ctx context.Context, q ListQuery) ([]ItemView, error)
	Dashboard(ctx context.Context) stats.DerivedStats
	// StartSession loads the collection, computes stats, and runs a fresh
	// notification policy over it.
	StartSession(ctx context.Context) SessionResult
}

// Option customizes an itemService.
type Option func(*itemService)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *itemService) { s.now = now }
}

func WithLogger(log zerolog.Logger) Option {
	return func(s *itemService) { s.log = log }
}

// WithWarningDays sets the notification window used by StartSession.
func WithWarningDays(days int) Option {
	return func(s *itemService) { s.warnDays = days }
}

// itemService is a concrete implementation of ItemService.
type itemService struct {
	repo      repository.ItemRepository
	extractor extraction.Extractor
	notifier  notify.Notifier
	now       func() time.Time
	log       zerolog.Logger
	warnDays  int
}

// NewItemService constructs a new ItemService.
func NewItemService(repo repository.ItemRepository, extractor extraction.Extractor, notifier notify.Notifier, opts ...Option) ItemService {
	s := &itemService{
		repo:      repo,
		extractor: extractor,
		notifier:  notifier,
		now:       time.Now,
		log:       zerolog.Nop(),
		warnDays:  expiry.WarningDays,
	}
	for _, o := range opts {
		o(s)
	}
	if s.extractor == nil {
		s.extractor = extraction.Disabled{}
	}
	if s.notifier == nil {
		s.notifier = notify.Disabled{}
	}
	return s
}

func (s *itemService) Add(ctx context.Context, item model.Item) []model.Item {
	items := append(s.repo.Load(ctx), item)
	s.repo.Save(ctx, items)
	itemOpsTotal.WithLabelValues("add").Inc()
	return items
}

func (s *itemService) AddBatch(ctx context.Context, items []model.Item) []model.Item {
	var out []model.Item
	for _, it := range items {
		out = s.Add(ctx, it)
	}
	if out == nil {
		out = s.repo.Load(ctx)
	}
	return out
}

func (s *itemService) Update(ctx context.Context, item model.Item) ([]model.Item, error) {
	if item.ID == "" {
		return nil, ErrIDRequired
	}
	items := s.repo.Load(ctx)
	for i := range items {
		if items[i].ID == item.ID {
			item.CreatedAt = items[i].CreatedAt
			items[i] = item
			s.repo.Save(ctx, items)
			itemOpsTotal.WithLabelValues("update").Inc()
			return items, nil
		}
	}
	return items, nil
}

func (s *itemService) Delete(ctx context.Context, id string) ([]model.Item, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	items := s.repo.Load(ctx)
	for i := range items {
		if items[i].ID == id {
			items = append(items[:i], items[i+1:]...)
			s.repo.Save(ctx, items)
			itemOpsTotal.WithLabelValues("delete").Inc()
			return items, nil
		}
	}
	return items, nil
}

func (s *itemService) Consume(ctx context.Context, item model.Item) ([]model.Item, error) {
	item.Consumed = true
	items, err := s.Update(ctx, item)
	if err == nil {
		itemOpsTotal.WithLabelValues("consume").Inc()
	}
	return items, err
}

func (s *itemService) Create(ctx context.Context, in ItemInput) (*model.Item, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || in.Quantity < 1 || in.ExpiryDate.IsZero() {
		return nil, ErrInvalidInput
	}
	if !in.Category.Valid() {
		return nil, ErrInvalidCategory
	}

	now := s.now()
	item := model.Item{
		ID:           uuid.New().String(),
		Name:         name,
		Category:     in.Category,
		Quantity:     in.Quantity,
		Unit:         strings.TrimSpace(in.Unit),
		Notes:        strings.TrimSpace(in.Notes),
		PurchaseDate: now,
		ExpiryDate:   in.ExpiryDate,
		CreatedAt:    now,
	}
	s.Add(ctx, item)
	return &item, nil
}

func (s *itemService) Import(ctx context.Context, text string) ([]model.Item, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrTextRequired
	}

	ctx, span := tracer.Start(ctx, "ItemService.Import", trace.WithAttributes(attribute.Int("text.length", len(text))))
	defer span.End()

	drafts, err := s.extractor.Extract(ctx, text)
	if err != nil {
		extractionFailuresTotal.Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "extraction failed")
		s.log.Warn().Err(err).Msg("extraction failed")
		return nil, fmt.Errorf("%w: %w", ErrExtractionFailed, err)
	}
	if len(drafts) == 0 {
		extractionFailuresTotal.Inc()
		span.SetStatus(codes.Error, "nothing extracted")
		return nil, ErrNothingExtracted
	}
	span.SetAttributes(attribute.Int("items.added", len(drafts)))

	now := s.now()
	added := make([]model.Item, 0, len(drafts))
	for _, d := range drafts {
		added = append(added, model.Item{
			ID:           uuid.New().String(),
			Name:         d.Name,
			Category:     d.Category,
			Quantity:     d.Quantity,
			PurchaseDate: now,
			ExpiryDate:   now.AddDate(0, 0, d.ExpiryOffsetDays),
			CreatedAt:    now,
		})
	}
	s.AddBatch(ctx, added)
	s.log.Info().Int("count", len(added)).Msg("items imported")
	return added, nil
}

func (s *itemService) Get(ctx context.Context, id string) (*model.Item, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	for _, it := range s.repo.Load(ctx) {
		if it.ID == id {
			return &it, nil
		}
	}
	return nil, ErrNotFound
}

func (s *itemService) List(ctx context.Context, q ListQuery) ([]ItemView, error) {
	var (
		filter model.Category
		byName bool
	)
	if c := strings.TrimSpace(q.Category); c != "" && !strings.EqualFold(c, "all") {
		cat, ok := model.ParseCategory(c)
		if !ok {
			return nil, ErrInvalidCategory
		}
		filter = cat
	}
	switch strings.ToLower(strings.TrimSpace(q.Sort)) {
	case "", SortExpiry:
	case SortName:
		byName = true
	default:
		return nil, ErrInvalidSort
	}

	now := s.now()
	views := make([]ItemView, 0)
	for _, it := range s.repo.Load(ctx) {
		if it.Consumed || (filter != "" && it.Category != filter) {
			continue
		}
		views = append(views, ItemView{
			Item:   it,
			Status: expiry.Classify(it.ExpiryDate, now),
			Label:  expiry.Label(it.ExpiryDate, now),
		})
	}

	if byName {
		col := collate.New(language.Und, collate.IgnoreCase, collate.IgnoreDiacritics)
		sort.SliceStable(views, func(i, j int) bool {
			if c := col.CompareString(views[i].Name, views[j].Name); c != 0 {
				return c < 0
			}
			return views[i].CreatedAt.Before(views[j].CreatedAt)
		})
	} else {
		sort.SliceStable(views, func(i, j int) bool {
			if !views[i].ExpiryDate.Equal(views[j].ExpiryDate) {
				return views[i].ExpiryDate.Before(views[j].ExpiryDate)
			}
			return views[i].CreatedAt.Before(views[j].CreatedAt)
		})
	}
	return views, nil
}

func (s *itemService) Dashboard(ctx context.Context) stats.DerivedStats {
	return stats.Compute(s.repo.Load(ctx), s.now())
}

func (s *itemService) StartSession(ctx context.Context) SessionResult {
	ctx, span := tracer.Start(ctx, "ItemService.StartSession")
	defer span.End()

	now := s.now()
	items := s.repo.Load(ctx)
	policy := notify.NewPolicy(s.notifier, s.warnDays, s.log)
	res := SessionResult{
		Items:    items,
		Stats:    stats.Compute(items, now),
		Notified: policy.Check(ctx, items, now),
	}
	span.SetAttributes(
		attribute.Int("items.total", res.Stats.Total),
		attribute.Bool("notification.shown", res.Notified != nil),
	)
	return res
}
