package delivery_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailroom/internal/delivery"
	"github.com/dmitrymomot/mailroom/internal/store"
	"github.com/dmitrymomot/mailroom/pkg/job"
	"github.com/dmitrymomot/mailroom/pkg/logger"
	"github.com/dmitrymomot/mailroom/pkg/mailer"
	"github.com/dmitrymomot/mailroom/pkg/tmpl"
)

type MockMailer struct{ mock.Mock }

func (m *MockMailer) Compose(ctx context.Context, p mailer.SendParams) (*mailer.Email, error) {
	args := m.Called(ctx, p)
	email, _ := args.Get(0).(*mailer.Email)
	return email, args.Error(1)
}

func (m *MockMailer) SendRaw(ctx context.Context, email *mailer.Email) error {
	return m.Called(ctx, email).Error(0)
}

type MockLog struct{ mock.Mock }

func (m *MockLog) Create(ctx context.Context, d *store.Delivery) error {
	return m.Called(ctx, d).Error(0)
}

func (m *MockLog) Get(ctx context.Context, id uuid.UUID) (*store.Delivery, error) {
	args := m.Called(ctx, id)
	d, _ := args.Get(0).(*store.Delivery)
	return d, args.Error(1)
}

func (m *MockLog) MarkSent(ctx context.Context, id uuid.UUID, recipient, subject string) error {
	return m.Called(ctx, id, recipient, subject).Error(0)
}

func (m *MockLog) MarkFailed(ctx context.Context, id uuid.UUID, cause error, final bool) error {
	return m.Called(ctx, id, cause, final).Error(0)
}

func (m *MockLog) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type MockQueue struct{ mock.Mock }

func (m *MockQueue) Enqueue(ctx context.Context, name string, payload any, opts ...job.EnqueueOption) error {
	return m.Called(ctx, name, payload).Error(0)
}

type MockOutbox struct{ mock.Mock }

func (m *MockOutbox) Put(ctx context.Context, d *store.Delivery, payload delivery.Job, opts ...job.EnqueueOption) error {
	return m.Called(ctx, d, payload).Error(0)
}

func orderParams() mailer.SendParams {
	return mailer.SendParams{
		Kind:      "order-confirmation",
		Variables: tmpl.Map{"orderNumber": tmpl.String("A1"), "customerEmail": tmpl.String("ada@example.com")},
	}
}

func orderEmail() *mailer.Email {
	return &mailer.Email{
		To:      []string{"ada@example.com"},
		Subject: "Order Confirmation #A1",
		HTML:    "<p>Thanks</p>",
		Tags:    mailer.Tags{"kind": "order-confirmation"},
	}
}

func TestService_Submit_Queued(t *testing.T) {
	t.Parallel()

	m, log, q := &MockMailer{}, &MockLog{}, &MockQueue{}
	email := orderEmail()

	m.On("Compose", mock.Anything, mock.Anything).Return(email, nil)
	log.On("Create", mock.Anything, mock.MatchedBy(func(d *store.Delivery) bool {
		return d.Kind == "order-confirmation" && d.Recipient == "ada@example.com" && d.Status == store.StatusQueued
	})).Return(nil)
	q.On("Enqueue", mock.Anything, delivery.TaskSendEmail, mock.MatchedBy(func(j delivery.Job) bool {
		return j.Kind == "order-confirmation" && j.Email == email && j.DeliveryID != uuid.Nil
	})).Return(nil)

	svc := delivery.NewService(m, delivery.WithLog(log), delivery.WithQueue(q))
	rec, err := svc.Submit(context.Background(), orderParams())
	require.NoError(t, err)

	assert.True(t, svc.Async())
	assert.True(t, rec.Queued)
	assert.Equal(t, store.StatusQueued, rec.Status)
	assert.Equal(t, "ada@example.com", rec.To)
	assert.Equal(t, "Order Confirmation #A1", rec.Subject)
	assert.NotEqual(t, uuid.Nil, rec.ID)

	m.AssertNotCalled(t, "SendRaw", mock.Anything, mock.Anything)
	mock.AssertExpectationsForObjects(t, m, log, q)
}

func TestService_Submit_Outbox(t *testing.T) {
	t.Parallel()

	t.Run("queued", func(t *testing.T) {
		t.Parallel()

		m, log, q, o := &MockMailer{}, &MockLog{}, &MockQueue{}, &MockOutbox{}
		email := orderEmail()

		m.On("Compose", mock.Anything, mock.Anything).Return(email, nil)
		o.On("Put", mock.Anything, mock.MatchedBy(func(d *store.Delivery) bool {
			return d.Status == store.StatusQueued && d.Recipient == "ada@example.com"
		}), mock.MatchedBy(func(j delivery.Job) bool {
			return j.Email == email && j.DeliveryID != uuid.Nil
		})).Return(nil)

		svc := delivery.NewService(m, delivery.WithLog(log), delivery.WithQueue(q), delivery.WithOutbox(o))
		rec, err := svc.Submit(context.Background(), orderParams())
		require.NoError(t, err)

		assert.True(t, rec.Queued)
		log.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		q.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything, mock.Anything)
		mock.AssertExpectationsForObjects(t, m, o)
	})

	t.Run("put fails", func(t *testing.T) {
		t.Parallel()

		m, log, o := &MockMailer{}, &MockLog{}, &MockOutbox{}
		m.On("Compose", mock.Anything, mock.Anything).Return(orderEmail(), nil)
		o.On("Put", mock.Anything, mock.Anything, mock.Anything).Return(delivery.ErrEnqueueFailed)

		svc := delivery.NewService(m, delivery.WithLog(log), delivery.WithOutbox(o))
		assert.True(t, svc.Async())

		_, err := svc.Submit(context.Background(), orderParams())
		require.ErrorIs(t, err, delivery.ErrEnqueueFailed)
		log.AssertNotCalled(t, "MarkFailed", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestService_Submit_Sync(t *testing.T) {
	t.Parallel()

	t.Run("sent", func(t *testing.T) {
		t.Parallel()

		m, log := &MockMailer{}, &MockLog{}
		email := orderEmail()

		m.On("Compose", mock.Anything, mock.Anything).Return(email, nil)
		m.On("SendRaw", mock.MatchedBy(func(ctx context.Context) bool {
			return logger.DeliveryIDFromContext(ctx) != ""
		}), email).Return(nil)
		log.On("Create", mock.Anything, mock.Anything).Return(nil)
		log.On("MarkSent", mock.Anything, mock.Anything, "ada@example.com", "Order Confirmation #A1").Return(nil)

		svc := delivery.NewService(m, delivery.WithLog(log))
		rec, err := svc.Submit(context.Background(), orderParams())
		require.NoError(t, err)

		assert.False(t, svc.Async())
		assert.False(t, rec.Queued)
		assert.Equal(t, store.StatusSent, rec.Status)
		mock.AssertExpectationsForObjects(t, m, log)
	})

	t.Run("send failure is final", func(t *testing.T) {
		t.Parallel()

		m, log := &MockMailer{}, &MockLog{}
		sendErr := errors.Join(mailer.ErrSendFailed, errors.New("550 rejected"))

		m.On("Compose", mock.Anything, mock.Anything).Return(orderEmail(), nil)
		m.On("SendRaw", mock.Anything, mock.Anything).Return(sendErr)
		log.On("Create", mock.Anything, mock.Anything).Return(nil)
		log.On("MarkFailed", mock.Anything, mock.Anything, sendErr, true).Return(nil)

		svc := delivery.NewService(m, delivery.WithLog(log))
		_, err := svc.Submit(context.Background(), orderParams())
		require.ErrorIs(t, err, mailer.ErrSendFailed)
		mock.AssertExpectationsForObjects(t, m, log)
	})

	t.Run("without log", func(t *testing.T) {
		t.Parallel()

		m := &MockMailer{}
		m.On("Compose", mock.Anything, mock.Anything).Return(orderEmail(), nil)
		m.On("SendRaw", mock.Anything, mock.Anything).Return(nil)

		rec, err := delivery.NewService(m).Submit(context.Background(), orderParams())
		require.NoError(t, err)
		assert.Equal(t, store.StatusSent, rec.Status)
	})
}

func TestService_Submit_Errors(t *testing.T) {
	t.Parallel()

	t.Run("compose error stops early", func(t *testing.T) {
		t.Parallel()

		m, log, q := &MockMailer{}, &MockLog{}, &MockQueue{}
		m.On("Compose", mock.Anything, mock.Anything).Return(nil, mailer.ErrUnknownKind)

		_, err := delivery.NewService(m, delivery.WithLog(log), delivery.WithQueue(q)).
			Submit(context.Background(), mailer.SendParams{Kind: "invoice", Variables: tmpl.Map{}})
		require.ErrorIs(t, err, mailer.ErrUnknownKind)

		log.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		q.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("log failure", func(t *testing.T) {
		t.Parallel()

		m, log, q := &MockMailer{}, &MockLog{}, &MockQueue{}
		m.On("Compose", mock.Anything, mock.Anything).Return(orderEmail(), nil)
		log.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down"))

		_, err := delivery.NewService(m, delivery.WithLog(log), delivery.WithQueue(q)).
			Submit(context.Background(), orderParams())
		require.ErrorIs(t, err, delivery.ErrLogFailed)
		q.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("enqueue failure marks failed", func(t *testing.T) {
		t.Parallel()

		m, log, q := &MockMailer{}, &MockLog{}, &MockQueue{}
		enqErr := errors.New("queue full")
		m.On("Compose", mock.Anything, mock.Anything).Return(orderEmail(), nil)
		log.On("Create", mock.Anything, mock.Anything).Return(nil)
		log.On("MarkFailed", mock.Anything, mock.Anything, enqErr, true).Return(nil)
		q.On("Enqueue", mock.Anything, delivery.TaskSendEmail, mock.Anything).Return(enqErr)

		_, err := delivery.NewService(m, delivery.WithLog(log), delivery.WithQueue(q)).
			Submit(context.Background(), orderParams())
		require.ErrorIs(t, err, delivery.ErrEnqueueFailed)
		require.ErrorIs(t, err, enqErr)
		mock.AssertExpectationsForObjects(t, log, q)
	})
}

func TestService_Deliver(t *testing.T) {
	t.Parallel()

	id := uuid.New()

	t.Run("sent", func(t *testing.T) {
		t.Parallel()

		m, log := &MockMailer{}, &MockLog{}
		email := orderEmail()
		m.On("SendRaw", mock.Anything, email).Return(nil)
		log.On("MarkSent", mock.Anything, id, "ada@example.com", "Order Confirmation #A1").Return(nil)

		svc := delivery.NewService(m, delivery.WithLog(log))
		require.NoError(t, svc.Deliver(context.Background(), delivery.Job{DeliveryID: id, Kind: "order-confirmation", Email: email}))
		mock.AssertExpectationsForObjects(t, m, log)
	})

	t.Run("mark sent failure is not retried", func(t *testing.T) {
		t.Parallel()

		m, log := &MockMailer{}, &MockLog{}
		m.On("SendRaw", mock.Anything, mock.Anything).Return(nil)
		log.On("MarkSent", mock.Anything, id, mock.Anything, mock.Anything).Return(errors.New("db down"))

		svc := delivery.NewService(m, delivery.WithLog(log))
		assert.NoError(t, svc.Deliver(context.Background(), delivery.Job{DeliveryID: id, Email: orderEmail()}))
	})

	t.Run("invalid email", func(t *testing.T) {
		t.Parallel()

		m, log := &MockMailer{}, &MockLog{}
		log.On("MarkFailed", mock.Anything, id, mailer.ErrNoRecipient, true).Return(nil)

		svc := delivery.NewService(m, delivery.WithLog(log))
		err := svc.Deliver(context.Background(), delivery.Job{DeliveryID: id})
		require.ErrorIs(t, err, mailer.ErrNoRecipient)
		m.AssertNotCalled(t, "SendRaw", mock.Anything, mock.Anything)
		mock.AssertExpectationsForObjects(t, log)
	})
}

func TestService_Get(t *testing.T) {
	t.Parallel()

	id := uuid.New()

	log := &MockLog{}
	log.On("Get", mock.Anything, id).Return(&store.Delivery{ID: id, Status: store.StatusSent}, nil)
	other := uuid.New()
	log.On("Get", mock.Anything, other).Return(nil, store.ErrNotFound)

	svc := delivery.NewService(&MockMailer{}, delivery.WithLog(log))

	d, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, store.StatusSent, d.Status)

	_, err = svc.Get(context.Background(), other)
	assert.ErrorIs(t, err, delivery.ErrNotFound)

	_, err = delivery.NewService(&MockMailer{}).Get(context.Background(), id)
	assert.ErrorIs(t, err, delivery.ErrNotFound)
}

func TestService_Prune(t *testing.T) {
	t.Parallel()

	log := &MockLog{}
	log.On("Prune", mock.Anything, mock.MatchedBy(func(cutoff time.Time) bool {
		return time.Since(cutoff) > 23*time.Hour && time.Since(cutoff) < 25*time.Hour
	})).Return(int64(3), nil)

	n, err := delivery.NewService(&MockMailer{}, delivery.WithLog(log)).Prune(context.Background(), 24*time.Hour)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	n, err = delivery.NewService(&MockMailer{}).Prune(context.Background(), time.Hour)
	require.NoError(t, err)
	assert.Zero(t, n)
}
