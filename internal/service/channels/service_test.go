package channels

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/vovakirdan/wirefeed/internal/common"
	"github.com/vovakirdan/wirefeed/internal/mocks"
	"github.com/vovakirdan/wirefeed/internal/store"
	"github.com/vovakirdan/wirefeed/internal/store/sqlite"
)

func newTestChannelService(t *testing.T) (*Service, *sqlite.SQLiteStore) {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	return New(st, nil), st
}

func TestEnsureDefaultIsIdempotent(t *testing.T) {
	svc, _ := newTestChannelService(t)
	ctx := context.Background()

	first, err := svc.EnsureDefault(ctx, "DiscountNews", "Latest discount news and offers")
	if err != nil {
		t.Fatalf("ensure default failed: %v", err)
	}
	second, err := svc.EnsureDefault(ctx, "DiscountNews", "ignored on second call")
	if err != nil {
		t.Fatalf("second ensure default failed: %v", err)
	}

	if first.ID != second.ID {
		t.Fatalf("expected the same channel, got %d and %d", first.ID, second.ID)
	}
	if second.Description != "Latest discount news and offers" {
		t.Fatalf("existing channel must not be modified, got %q", second.Description)
	}

	all, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected exactly one channel, got %d", len(all))
	}
}

func TestCreateAndFind(t *testing.T) {
	svc, _ := newTestChannelService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "   ", "x"); !errors.Is(err, common.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank name, got %v", err)
	}

	ch, err := svc.Create(ctx, "  golang ", "  gophers  ")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if ch.Name != "golang" || ch.Description != "gophers" {
		t.Fatalf("expected trimmed fields, got %+v", ch)
	}

	if _, err := svc.Create(ctx, "golang", "again"); !errors.Is(err, store.ErrDuplicateChannel) {
		t.Fatalf("expected ErrDuplicateChannel, got %v", err)
	}

	found, err := svc.FindByName(ctx, " golang")
	if err != nil || found.ID != ch.ID {
		t.Fatalf("find by name: got %+v, %v", found, err)
	}
	byID, err := svc.FindByID(ctx, ch.ID)
	if err != nil || byID.Name != "golang" {
		t.Fatalf("find by id: got %+v, %v", byID, err)
	}
	if _, err := svc.FindByName(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListOrderedByName(t *testing.T) {
	svc, _ := newTestChannelService(t)
	ctx := context.Background()

	for _, name := range []string{"zeta", "alpha", "mid"} {
		if _, err := svc.Create(ctx, name, ""); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}

	all, err := svc.List(ctx)
	require.NoError(t, err)
	names := make([]string, 0, len(all))
	for _, ch := range all {
		names = append(names, ch.Name)
	}
	require.Equal(t, []string{"alpha", "mid", "zeta"}, names)
}

func TestSubscriptionLifecycle(t *testing.T) {
	svc, st := newTestChannelService(t)
	ctx := context.Background()

	user, err := st.CreateUser(ctx, "dave@example.com", "hash")
	require.NoError(t, err)
	ch, err := svc.Create(ctx, "news", "")
	require.NoError(t, err)

	subscribed, err := svc.IsSubscribed(ctx, user.ID, ch.ID)
	require.NoError(t, err)
	require.False(t, subscribed)

	require.NoError(t, svc.Subscribe(ctx, user.ID, ch.ID))
	require.NoError(t, svc.Subscribe(ctx, user.ID, ch.ID))

	subscribed, err = svc.IsSubscribed(ctx, user.ID, ch.ID)
	require.NoError(t, err)
	require.True(t, subscribed)

	require.NoError(t, svc.Unsubscribe(ctx, user.ID, ch.ID))
	require.NoError(t, svc.Unsubscribe(ctx, user.ID, ch.ID))

	subscribed, err = svc.IsSubscribed(ctx, user.ID, ch.ID)
	require.NoError(t, err)
	require.False(t, subscribed)
}

func TestChannelService_WithMockStore(t *testing.T) {
	ctx := context.Background()

	t.Run("blank name is not looked up", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockStore := mocks.NewMockChannelStore(ctrl)
		mockStore.EXPECT().GetChannelByName(gomock.Any(), gomock.Any()).Times(0)

		_, err := New(mockStore, nil).FindByName(ctx, "  ")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("ensure default propagates storage failures", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockStore := mocks.NewMockChannelStore(ctrl)
		storageErr := store.Wrap("query channel", errors.New("disk full"))
		mockStore.EXPECT().GetChannelByName(gomock.Any(), "DiscountNews").Return(nil, storageErr)
		mockStore.EXPECT().CreateChannel(gomock.Any(), gomock.Any()).Times(0)

		_, err := New(mockStore, nil).EnsureDefault(ctx, "DiscountNews", "")
		require.Equal(t, storageErr, err)
	})

	t.Run("ensure default recovers from a concurrent create", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockStore := mocks.NewMockChannelStore(ctrl)
		existing := &store.Channel{ID: 4, Name: "DiscountNews"}
		gomock.InOrder(
			mockStore.EXPECT().GetChannelByName(gomock.Any(), "DiscountNews").Return(nil, store.ErrNotFound),
			mockStore.EXPECT().CreateChannel(gomock.Any(), gomock.Any()).Return(nil, store.ErrDuplicateChannel),
			mockStore.EXPECT().GetChannelByName(gomock.Any(), "DiscountNews").Return(existing, nil),
		)

		ch, err := New(mockStore, nil).EnsureDefault(ctx, "DiscountNews", "")
		require.NoError(t, err)
		require.Equal(t, existing, ch)
	})
}
