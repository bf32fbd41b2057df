package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"pantry/internal/expiry"
	extractMocks "pantry/internal/extraction/mocks"
	"pantry/internal/model"
	"pantry/internal/notify"
	notifyMocks "pantry/internal/notify/mocks"
	repoMocks "pantry/internal/repository/mocks"
)

var now = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

// memRepo is an ItemRepository that copies on every load and save, like a
// real serialized store.
type memRepo struct {
	items []model.Item
	saves int
}

func (r *memRepo) Load(context.Context) []model.Item {
	return append([]model.Item{}, r.items...)
}

func (r *memRepo) Save(_ context.Context, items []model.Item) {
	r.items = append([]model.Item{}, items...)
	r.saves++
}

func item(id, name string, cat model.Category, qty, days int) model.Item {
	return model.Item{
		ID:           id,
		Name:         name,
		Category:     cat,
		Quantity:     qty,
		PurchaseDate: now.AddDate(0, 0, -1),
		ExpiryDate:   now.AddDate(0, 0, days),
		CreatedAt:    now.AddDate(0, 0, -1),
	}
}

func newSvc(repo *memRepo) ItemService {
	return NewItemService(repo, nil, nil, WithClock(clock))
}

func TestItemService_EmptyStore(t *testing.T) {
	svc := newSvc(&memRepo{})

	d := svc.Dashboard(context.Background())

	assert.Zero(t, d.Total)
	assert.Zero(t, d.ExpiringSoon)
	assert.Equal(t, 0, d.Buckets.Expired+d.Buckets.DueIn1Day+d.Buckets.DueIn3Days+d.Buckets.DueIn1Week+d.Buckets.DueIn2Weeks+d.Buckets.Safe)
	assert.NotNil(t, d.Categories)
	assert.Empty(t, d.Categories)
}

func TestItemService_AddClassifies(t *testing.T) {
	ctx := context.Background()
	repo := &memRepo{}
	svc := newSvc(repo)

	got := svc.Add(ctx, item("m", "Milk", model.CategoryDairy, 1, 2))

	require.Len(t, got, 1)
	assert.Equal(t, 1, repo.saves)
	views, err := svc.List(ctx, ListQuery{})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, expiry.Status{Bucket: expiry.BucketDueIn3Days, DaysRemaining: 2}, views[0].Status)
	assert.Equal(t, "In 2d", views[0].Label)
}

func TestItemService_CategoryTotalsSumQuantity(t *testing.T) {
	ctx := context.Background()
	svc := newSvc(&memRepo{})

	svc.AddBatch(ctx, []model.Item{
		item("a", "Milk", model.CategoryDairy, 2, 5),
		item("b", "Cheese", model.CategoryDairy, 3, 20),
	})

	d := svc.Dashboard(ctx)
	require.Len(t, d.Categories, 1)
	assert.Equal(t, model.CategoryDairy, d.Categories[0].Category)
	assert.Equal(t, 5, d.Categories[0].Quantity)
	assert.Equal(t, 2, d.Total)
}

func TestItemService_ConsumeKeepsRecord(t *testing.T) {
	ctx := context.Background()
	repo := &memRepo{items: []model.Item{item("a", "Milk", model.CategoryDairy, 1, 2), item("b", "Bread", model.CategoryPantry, 1, 1)}}
	svc := newSvc(repo)

	got, err := svc.Consume(ctx, repo.items[0])
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.True(t, got[0].Consumed)
	assert.Equal(t, "Milk", got[0].Name)

	d := svc.Dashboard(ctx)
	assert.Equal(t, 1, d.Total)
	assert.Equal(t, 0, d.Buckets.DueIn3Days)
	assert.Equal(t, 1, d.Buckets.DueIn1Day)

	stored, err := svc.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, stored.Consumed)
}

func TestItemService_Update(t *testing.T) {
	ctx := context.Background()
	orig := item("a", "Milk", model.CategoryDairy, 1, 2)

	tests := []struct {
		name      string
		input     model.Item
		wantErr   error
		wantSaves int
		check     func(t *testing.T, items []model.Item)
	}{
		{
			name: "replaces matching record and keeps created_at",
			input: func() model.Item {
				u := orig
				u.Quantity = 4
				u.CreatedAt = now.AddDate(1, 0, 0)
				return u
			}(),
			wantSaves: 1,
			check: func(t *testing.T, items []model.Item) {
				assert.Equal(t, 4, items[0].Quantity)
				assert.True(t, items[0].CreatedAt.Equal(orig.CreatedAt))
			},
		},
		{
			name:  "missing id leaves store unchanged",
			input: item("zzz", "Ghost", model.CategoryOther, 1, 1),
			check: func(t *testing.T, items []model.Item) {
				assert.Equal(t, []model.Item{orig}, items)
			},
		},
		{
			name:    "empty id",
			input:   model.Item{Name: "x"},
			wantErr: ErrIDRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &memRepo{items: []model.Item{orig}}
			svc := newSvc(repo)

			got, err := svc.Update(ctx, tt.input)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Zero(t, repo.saves)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSaves, repo.saves)
			tt.check(t, got)
		})
	}
}

func TestItemService_UpdateIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := &memRepo{items: []model.Item{item("a", "Milk", model.CategoryDairy, 1, 2)}}
	svc := newSvc(repo)

	u := repo.items[0]
	u.Notes = "opened"

	_, err := svc.Update(ctx, u)
	require.NoError(t, err)
	once := repo.Load(ctx)

	_, err = svc.Update(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, once, repo.Load(ctx))
}

func TestItemService_Delete(t *testing.T) {
	ctx := context.Background()
	repo := &memRepo{items: []model.Item{item("a", "Milk", model.CategoryDairy, 1, 2), item("b", "Bread", model.CategoryPantry, 1, 1)}}
	svc := newSvc(repo)

	got, err := svc.Delete(ctx, "a")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].ID)

	got, err = svc.Delete(ctx, "a")
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 1, repo.saves)

	_, err = svc.Delete(ctx, "")
	assert.ErrorIs(t, err, ErrIDRequired)
}

func TestItemService_Get(t *testing.T) {
	ctx := context.Background()
	svc := newSvc(&memRepo{items: []model.Item{item("a", "Milk", model.CategoryDairy, 1, 2)}})

	got, err := svc.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Milk", got.Name)

	_, err = svc.Get(ctx, "b")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Get(ctx, "")
	assert.ErrorIs(t, err, ErrIDRequired)
}

func TestItemService_Create(t *testing.T) {
	ctx := context.Background()
	expiresAt := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		in      ItemInput
		wantErr error
	}{
		{
			name: "valid",
			in:   ItemInput{Name: "  Butter ", Category: model.CategoryDairy, Quantity: 2, Unit: "pack", ExpiryDate: expiresAt},
		},
		{
			name:    "blank name",
			in:      ItemInput{Name: " ", Category: model.CategoryDairy, Quantity: 1, ExpiryDate: expiresAt},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "zero quantity",
			in:      ItemInput{Name: "Butter", Category: model.CategoryDairy, ExpiryDate: expiresAt},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "missing expiry",
			in:      ItemInput{Name: "Butter", Category: model.CategoryDairy, Quantity: 1},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "unknown category",
			in:      ItemInput{Name: "Butter", Category: "Frozen", Quantity: 1, ExpiryDate: expiresAt},
			wantErr: ErrInvalidCategory,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &memRepo{}
			svc := newSvc(repo)

			got, err := svc.Create(ctx, tt.in)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, repo.items)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, got.ID)
			assert.Equal(t, "Butter", got.Name)
			assert.Equal(t, "pack", got.Unit)
			assert.Equal(t, now, got.CreatedAt)
			assert.Equal(t, now, got.PurchaseDate)
			assert.False(t, got.Consumed)
			assert.Equal(t, []model.Item{*got}, repo.items)
		})
	}
}

func TestItemService_Import(t *testing.T) {
	ctx := context.Background()
	existing := item("old", "Rice", model.CategoryPantry, 1, 300)

	tests := []struct {
		name       string
		text       string
		setupMocks func(m *extractMocks.MockExtractor)
		wantErr    error
		wantAdded  int
	}{
		{
			name: "adds each draft in order",
			text: "milk and 6 apples",
			setupMocks: func(m *extractMocks.MockExtractor) {
				m.On("Extract", mock.Anything, "milk and 6 apples").Return([]model.ItemDraft{
					{Name: "Milk", Category: model.CategoryDairy, Quantity: 1, ExpiryOffsetDays: 7},
					{Name: "Apples", Category: model.CategoryFruits, Quantity: 6, ExpiryOffsetDays: 14},
				}, nil)
			},
			wantAdded: 2,
		},
		{
			name:       "blank text",
			text:       "   ",
			setupMocks: func(m *extractMocks.MockExtractor) {},
			wantErr:    ErrTextRequired,
		},
		{
			name: "collaborator error adds nothing",
			text: "milk",
			setupMocks: func(m *extractMocks.MockExtractor) {
				m.On("Extract", mock.Anything, "milk").Return(nil, errors.New("network down"))
			},
			wantErr: ErrExtractionFailed,
		},
		{
			name: "empty result adds nothing",
			text: "qwerty",
			setupMocks: func(m *extractMocks.MockExtractor) {
				m.On("Extract", mock.Anything, "qwerty").Return([]model.ItemDraft{}, nil)
			},
			wantErr: ErrNothingExtracted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &memRepo{items: []model.Item{existing}}
			ext := new(extractMocks.MockExtractor)
			tt.setupMocks(ext)
			svc := NewItemService(repo, ext, nil, WithClock(clock))

			got, err := svc.Import(ctx, tt.text)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, []model.Item{existing}, repo.items)
				assert.Zero(t, repo.saves)
				ext.AssertExpectations(t)
				return
			}
			require.NoError(t, err)
			require.Len(t, got, tt.wantAdded)
			assert.Len(t, repo.items, 1+tt.wantAdded)
			assert.Equal(t, "Milk", repo.items[1].Name)
			assert.Equal(t, now.AddDate(0, 0, 7), repo.items[1].ExpiryDate)
			assert.Equal(t, "Apples", repo.items[2].Name)
			assert.Equal(t, 6, repo.items[2].Quantity)
			assert.NotEqual(t, repo.items[1].ID, repo.items[2].ID)
			ext.AssertExpectations(t)
		})
	}
}

func TestItemService_ImportWithoutExtractor(t *testing.T) {
	svc := newSvc(&memRepo{})
	_, err := svc.Import(context.Background(), "milk")
	assert.ErrorIs(t, err, ErrExtractionFailed)
}

func TestItemService_List(t *testing.T) {
	ctx := context.Background()
	a := item("1", "banana", model.CategoryFruits, 1, 5)
	b := item("2", "Apple", model.CategoryFruits, 1, 2)
	c := item("3", "Éclair", model.CategorySnacks, 1, 2)
	c.CreatedAt = now
	d := item("4", "Milk", model.CategoryDairy, 1, 1)
	d.Consumed = true

	repo := &memRepo{items: []model.Item{a, b, c, d}}
	svc := newSvc(repo)

	ids := func(v []ItemView) []string {
		out := make([]string, len(v))
		for i := range v {
			out[i] = v[i].ID
		}
		return out
	}

	tests := []struct {
		name    string
		q       ListQuery
		want    []string
		wantErr error
	}{
		{name: "default is expiry then created_at", q: ListQuery{}, want: []string{"2", "3", "1"}},
		{name: "by name ignores case and accents", q: ListQuery{Sort: "name"}, want: []string{"2", "1", "3"}},
		{name: "category filter", q: ListQuery{Category: "fruits"}, want: []string{"2", "1"}},
		{name: "all", q: ListQuery{Category: "All", Sort: "expiry"}, want: []string{"2", "3", "1"}},
		{name: "unknown category", q: ListQuery{Category: "Frozen"}, wantErr: ErrInvalidCategory},
		{name: "unknown sort", q: ListQuery{Sort: "price"}, wantErr: ErrInvalidSort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.List(ctx, tt.q)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestItemService_StartSession(t *testing.T) {
	ctx := context.Background()
	items := []model.Item{
		item("1", "Safe", model.CategoryPantry, 1, 30),
		item("2", "Milk", model.CategoryDairy, 1, 2),
		item("3", "Yogurt", model.CategoryDairy, 1, 2),
	}

	n := new(notifyMocks.MockNotifier)
	n.On("Supported").Return(true)
	n.On("Permission").Return(notify.PermissionGranted)
	n.On("Show", mock.Anything, mock.MatchedBy(func(x notify.Notification) bool {
		return x.Title == "Expiring Soon: Milk"
	})).Return(nil).Once()

	repo := new(repoMocks.MockItemRepository)
	repo.On("Load", mock.Anything).Return(items)

	svc := NewItemService(repo, nil, n, WithClock(clock))

	res := svc.StartSession(ctx)
	require.NotNil(t, res.Notified)
	assert.Equal(t, "2", res.Notified.ID)
	assert.Equal(t, 3, res.Stats.Total)
	assert.Equal(t, 2, res.Stats.ExpiringSoon)
	assert.Equal(t, items, res.Items)

	// A new session gets its own budget.
	n.On("Show", mock.Anything, mock.Anything).Return(nil).Once()
	assert.NotNil(t, svc.StartSession(ctx).Notified)
	n.AssertNumberOfCalls(t, "Show", 2)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestItemService_StartSessionWarningDays(t *testing.T) {
	ctx := context.Background()
	repo := &memRepo{items: []model.Item{item("1", "Ham", model.CategoryMeat, 1, 5)}}

	n := new(notifyMocks.MockNotifier)
	n.On("Supported").Return(true)
	n.On("Permission").Return(notify.PermissionGranted)

	assert.Nil(t, NewItemService(repo, nil, n, WithClock(clock)).StartSession(ctx).Notified)

	n.On("Show", mock.Anything, mock.Anything).Return(nil).Once()
	assert.NotNil(t, NewItemService(repo, nil, n, WithClock(clock), WithWarningDays(5)).StartSession(ctx).Notified)
}
