package messages

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/vovakirdan/wirefeed/internal/common"
	"github.com/vovakirdan/wirefeed/internal/core"
	"github.com/vovakirdan/wirefeed/internal/mocks"
	"github.com/vovakirdan/wirefeed/internal/store"
	"github.com/vovakirdan/wirefeed/internal/store/sqlite"
)

func ptr(s string) *string { return &s }

type collector struct {
	mu  sync.Mutex
	got []store.Message
}

func (c *collector) Notify(_ context.Context, msg store.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.got = append(c.got, msg)
	return nil
}

func (c *collector) messages() []store.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]store.Message(nil), c.got...)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		content *string
		want    string
		wantErr error
	}{
		{name: "nil", content: nil, wantErr: common.ErrInvalidInput},
		{name: "empty", content: ptr(""), wantErr: common.ErrInvalidInput},
		{name: "blank", content: ptr("  \t\n "), wantErr: common.ErrInvalidInput},
		{name: "trimmed", content: ptr("  hello  "), want: "hello"},
		{name: "exactly max", content: ptr(strings.Repeat("a", 200)), want: strings.Repeat("a", 200)},
		{name: "max after trim", content: ptr("  " + strings.Repeat("b", 200) + "  "), want: strings.Repeat("b", 200)},
		{name: "multibyte at max", content: ptr(strings.Repeat("ж", 200)), want: strings.Repeat("ж", 200)},
		{name: "one over max", content: ptr(strings.Repeat("a", 201)), wantErr: common.ErrMessageTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Validate(tt.content)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestValidate_TooLongCarriesLengths(t *testing.T) {
	_, err := Validate(ptr(strings.Repeat("a", 201)))

	var tooLong *common.MessageTooLongError
	require.ErrorAs(t, err, &tooLong)
	require.Equal(t, 201, tooLong.Actual)
	require.Equal(t, 200, tooLong.Max)
	require.Equal(t, "message content should contain at most 200 characters, current length: 201", err.Error())
}

func TestPost_WithMockStore(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid content never reaches the store", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockStore := mocks.NewMockMessageStore(ctrl)
		mockStore.EXPECT().CreateMessage(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		hub := core.NewHub(nil, core.Options{})
		obs := &collector{}
		hub.Attach(obs)
		svc := New(mockStore, hub, nil)

		for _, content := range []*string{nil, ptr(" "), ptr(strings.Repeat("x", 201))} {
			_, err := svc.Post(ctx, 1, 1, content)
			require.Error(t, err)
		}
		require.Empty(t, obs.messages())
	})

	t.Run("content is trimmed before persisting", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockStore := mocks.NewMockMessageStore(ctrl)
		mockStore.EXPECT().
			CreateMessage(gomock.Any(), int64(3), int64(9), "padded").
			Return(&store.Message{ID: 1, ChannelID: 3, UserID: 9, Content: "padded", CreatedAt: time.Now()}, nil).
			Times(1)

		svc := New(mockStore, core.NewHub(nil, core.Options{}), nil)
		msg, err := svc.Post(ctx, 3, 9, ptr("  padded\n"))

		require.NoError(t, err)
		require.Equal(t, "padded", msg.Content)
	})

	t.Run("storage failure propagates and nothing is published", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockStore := mocks.NewMockMessageStore(ctrl)
		storageErr := store.Wrap("insert message", errors.New("database is locked"))
		mockStore.EXPECT().
			CreateMessage(gomock.Any(), int64(1), int64(1), "hi").
			Return(nil, storageErr).
			Times(1)

		hub := core.NewHub(nil, core.Options{})
		obs := &collector{}
		hub.Attach(obs)
		svc := New(mockStore, hub, nil)

		msg, err := svc.Post(ctx, 1, 1, ptr("hi"))

		require.Nil(t, msg)
		require.Equal(t, storageErr, err)
		require.ErrorIs(t, err, store.ErrStorage)
		require.Empty(t, obs.messages())
	})

	t.Run("failing observer does not fail post", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockStore := mocks.NewMockMessageStore(ctrl)
		mockStore.EXPECT().
			CreateMessage(gomock.Any(), int64(1), int64(1), "hi").
			Return(&store.Message{ID: 5, ChannelID: 1, UserID: 1, Content: "hi"}, nil)

		hub := core.NewHub(nil, core.Options{DeliveryTimeout: 100 * time.Millisecond})
		hub.Attach(core.NewFuncObserver(func(context.Context, store.Message) error {
			panic("observer bug")
		}))
		healthy := &collector{}
		hub.Attach(healthy)
		svc := New(mockStore, hub, nil)

		msg, err := svc.Post(ctx, 1, 1, ptr("hi"))

		require.NoError(t, err)
		require.Equal(t, int64(5), msg.ID)
		require.Len(t, healthy.messages(), 1)
	})
}

func newTestService(t *testing.T) (*Service, *sqlite.SQLiteStore) {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	return New(st, core.NewHub(nil, core.Options{}), nil), st
}

func seed(t *testing.T, st *sqlite.SQLiteStore, email string, channels ...string) (*store.User, []*store.Channel) {
	t.Helper()
	ctx := context.Background()

	user, err := st.CreateUser(ctx, email, "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	var created []*store.Channel
	for _, name := range channels {
		ch, err := st.CreateChannel(ctx, &store.Channel{Name: name})
		if err != nil {
			t.Fatalf("create channel %s: %v", name, err)
		}
		created = append(created, ch)
	}
	return user, created
}

func TestPost_ObserversAttachedBeforePostReceiveMessage(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	user, chans := seed(t, st, "alice@example.com", "general")

	first, second := &collector{}, &collector{}
	svc.Attach(first)
	svc.Attach(second)
	if svc.SubscriberCount() != 2 {
		t.Fatalf("expected 2 subscribers, got %d", svc.SubscriberCount())
	}

	msg, err := svc.Post(ctx, chans[0].ID, user.ID, ptr("hi"))
	if err != nil {
		t.Fatalf("post failed: %v", err)
	}

	for i, obs := range []*collector{first, second} {
		got := obs.messages()
		if len(got) != 1 {
			t.Fatalf("observer %d: expected 1 message, got %d", i, len(got))
		}
		if got[0].Content != "hi" || got[0].ChannelID != chans[0].ID || got[0].ID != msg.ID {
			t.Fatalf("observer %d: unexpected message %+v", i, got[0])
		}
		if got[0].AuthorEmail != "alice@example.com" {
			t.Fatalf("observer %d: expected author email, got %q", i, got[0].AuthorEmail)
		}
	}

	svc.Detach(first)
	svc.Detach(first)
	if svc.SubscriberCount() != 1 {
		t.Fatalf("expected 1 subscriber after detach, got %d", svc.SubscriberCount())
	}
}

func TestPost_ClientSeesOnlyJoinedChannel(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	user, chans := seed(t, st, "bob@example.com", "news", "random")

	client := core.NewClient("bob")
	client.Join(chans[0].ID)
	svc.Attach(client)
	t.Cleanup(func() { svc.Detach(client) })

	if _, err := svc.Post(ctx, chans[1].ID, user.ID, ptr("off topic")); err != nil {
		t.Fatalf("post failed: %v", err)
	}
	if _, err := svc.Post(ctx, chans[0].ID, user.ID, ptr("on topic")); err != nil {
		t.Fatalf("post failed: %v", err)
	}

	select {
	case msg := <-client.Messages:
		if msg.Content != "on topic" {
			t.Fatalf("expected on topic message, got %q", msg.Content)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("client did not receive message")
	}
	select {
	case msg := <-client.Messages:
		t.Fatalf("unexpected extra message %+v", msg)
	default:
	}
}

func TestHistoryNewestFirst(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	user, chans := seed(t, st, "carol@example.com", "a", "b", "c")

	for _, p := range []struct {
		channel int
		text    string
	}{{0, "a1"}, {1, "b1"}, {0, "a2"}, {2, "c1"}} {
		if _, err := svc.Post(ctx, chans[p.channel].ID, user.ID, ptr(p.text)); err != nil {
			t.Fatalf("post %s: %v", p.text, err)
		}
	}

	history, err := svc.MessagesForChannel(ctx, chans[0].ID)
	require.NoError(t, err)
	require.Equal(t, []string{"a2", "a1"}, contents(history))

	if err := st.Subscribe(ctx, user.ID, chans[0].ID); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err := st.Subscribe(ctx, user.ID, chans[1].ID); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	feed, err := svc.MessagesForSubscribedChannels(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"a2", "b1", "a1"}, contents(feed))

	empty, err := svc.MessagesForSubscribedChannels(ctx, user.ID+100)
	require.NoError(t, err)
	require.Empty(t, empty)
}

func contents(msgs []*store.Message) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.Content)
	}
	return out
}
