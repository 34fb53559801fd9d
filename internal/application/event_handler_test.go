package application_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-hexagonal-users/internal/application"
	"github.com/oksasatya/go-hexagonal-users/internal/domain/command"
	"github.com/oksasatya/go-hexagonal-users/internal/domain/entity"
	"github.com/oksasatya/go-hexagonal-users/internal/domain/event"
)

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) Send(ctx context.Context, n application.Notification) error {
	return m.Called(ctx, n).Error(0)
}

type mockIndex struct{ mock.Mock }

func (m *mockIndex) Upsert(ctx context.Context, id string, fields map[string]any) error {
	return m.Called(ctx, id, fields).Error(0)
}

func (m *mockIndex) Remove(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockIndex) Search(ctx context.Context, q string, size int) ([]map[string]any, error) {
	args := m.Called(ctx, q, size)
	hits, _ := args.Get(0).([]map[string]any)
	return hits, args.Error(1)
}

// wire round-trips an event through JSON like the broker does.
func wire(t *testing.T, ev event.DomainEvent) event.Envelope {
	t.Helper()
	b, err := json.Marshal(ev)
	require.NoError(t, err)
	var env event.Envelope
	require.NoError(t, json.Unmarshal(b, &env))
	return env
}

func TestUserEventHandler_Created(t *testing.T) {
	notifier, index := &mockNotifier{}, &mockIndex{}
	h := application.NewUserEventHandler(notifier, index, nil, quietLogger())
	ev := event.New(event.UserCreated, "u-1", map[string]event.Change{
		entity.FieldEmailAddress: {Current: "john@doe.com"},
		entity.FieldFullName:     {Current: "John Doe"},
		entity.FieldAge:          {Current: 32},
	})

	index.On("Upsert", mock.Anything, "u-1", mock.MatchedBy(func(f map[string]any) bool {
		return f[entity.FieldEmailAddress] == "john@doe.com" && f[entity.FieldAge] == float64(32)
	})).Return(nil)
	notifier.On("Send", mock.Anything, mock.MatchedBy(func(n application.Notification) bool {
		return n.To == "john@doe.com" && n.Template == application.TemplateUserCreated && n.Data["Name"] == "John Doe"
	})).Return(nil)

	require.NoError(t, h.Handle(context.Background(), wire(t, ev)))
	index.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestUserEventHandler_DetailsChangedLooksUpRecipient(t *testing.T) {
	s, _, _ := newUserService(t)
	u := mustCreate(t, s, "John Doe", 32, "john@doe.com")

	name := "Johnny Doe"
	cmd, err := command.NewChangeUserDetails(u.ID().String(), command.DetailsPatch{FullName: &name})
	require.NoError(t, err)
	_, err = s.ChangeBy(context.Background(), cmd)
	require.NoError(t, err)

	notifier := &mockNotifier{}
	h := application.NewUserEventHandler(notifier, nil, s, quietLogger())
	ev := event.New(event.UserDetailsChanged, u.ID().String(), map[string]event.Change{
		entity.FieldFullName: {Previous: "John Doe", Current: "Johnny Doe"},
	})
	notifier.On("Send", mock.Anything, mock.MatchedBy(func(n application.Notification) bool {
		changes, _ := n.Data["Changes"].(map[string]string)
		return n.To == "john@doe.com" && changes[entity.FieldFullName] == "John Doe -> Johnny Doe"
	})).Return(nil)

	require.NoError(t, h.Handle(context.Background(), wire(t, ev)))
	notifier.AssertExpectations(t)
}

func TestUserEventHandler_EmailChangeNotifiesOldAddress(t *testing.T) {
	notifier := &mockNotifier{}
	h := application.NewUserEventHandler(notifier, nil, nil, quietLogger())
	ev := event.New(event.UserDetailsChanged, "u-1", map[string]event.Change{
		entity.FieldEmailAddress: {Previous: "john@doe.com", Current: "jane@doe.com"},
	})
	notifier.On("Send", mock.Anything, mock.MatchedBy(func(n application.Notification) bool {
		return n.To == "john@doe.com"
	})).Return(nil)

	require.NoError(t, h.Handle(context.Background(), wire(t, ev)))
	notifier.AssertExpectations(t)
}

func TestUserEventHandler_Deleted(t *testing.T) {
	notifier, index := &mockNotifier{}, &mockIndex{}
	h := application.NewUserEventHandler(notifier, index, nil, quietLogger())
	ev := event.New(event.UserDeleted, "u-1", map[string]event.Change{
		entity.FieldEmailAddress: {Previous: "john@doe.com"},
		entity.FieldFullName:     {Previous: "John Doe"},
	})

	index.On("Remove", mock.Anything, "u-1").Return(nil)
	notifier.On("Send", mock.Anything, mock.MatchedBy(func(n application.Notification) bool {
		return n.To == "john@doe.com" && n.Template == application.TemplateUserDeleted
	})).Return(nil)

	require.NoError(t, h.Handle(context.Background(), wire(t, ev)))
	index.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestUserEventHandler_FailuresAreReturned(t *testing.T) {
	index := &mockIndex{}
	h := application.NewUserEventHandler(nil, index, nil, quietLogger())
	index.On("Remove", mock.Anything, "u-1").Return(errors.New("es down"))

	err := h.Handle(context.Background(), wire(t, event.New(event.UserDeleted, "u-1", nil)))
	assert.Error(t, err)
}

func TestUserEventHandler_IgnoresUnknownEvents(t *testing.T) {
	h := application.NewUserEventHandler(&mockNotifier{}, &mockIndex{}, nil, quietLogger())
	assert.NoError(t, h.Handle(context.Background(), event.Envelope{Name: "order.placed"}))
}
