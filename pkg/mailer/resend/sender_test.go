package resend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailroom/pkg/mailer"
)

func TestNew(t *testing.T) {
	t.Parallel()

	_, err := New(Config{SenderEmail: "shop@shop.test"})
	require.ErrorIs(t, err, mailer.ErrInvalidConfig)

	_, err = New(Config{APIKey: "re_test"})
	require.ErrorIs(t, err, mailer.ErrInvalidConfig)

	s, err := New(Config{APIKey: "re_test", SenderEmail: "shop@shop.test"})
	require.NoError(t, err)
	require.NotNil(t, s)
}

func TestSender_Request(t *testing.T) {
	t.Parallel()

	s, err := New(Config{APIKey: "re_test", SenderEmail: "shop@shop.test", SenderName: "Shop"})
	require.NoError(t, err)

	req := s.request(&mailer.Email{
		To:          []string{"ada@shop.test"},
		Subject:     "Order Confirmation #A1",
		HTML:        "<p>x</p>",
		Text:        "x",
		Tags:        mailer.Tags{"kind": "order-confirmation"},
		Attachments: []mailer.Attachment{{Filename: "a.pdf", ContentID: "cid-1", Content: []byte("%PDF")}},
	})

	assert.Equal(t, "Shop <shop@shop.test>", req.From)
	assert.Equal(t, []string{"ada@shop.test"}, req.To)
	assert.Equal(t, "x", req.Text)
	require.Len(t, req.Attachments, 1)
	assert.Equal(t, "cid-1", req.Attachments[0].ContentId)
	require.Len(t, req.Tags, 1)
	assert.Equal(t, "order-confirmation", req.Tags[0].Value)

	req = s.request(&mailer.Email{To: []string{"a@shop.test"}, From: "Other <o@shop.test>"})
	assert.Equal(t, "Other <o@shop.test>", req.From)
	assert.Nil(t, req.Tags)
}

func TestSender_Send_Invalid(t *testing.T) {
	t.Parallel()

	s, err := New(Config{APIKey: "re_test", SenderEmail: "shop@shop.test"})
	require.NoError(t, err)

	err = s.Send(context.Background(), &mailer.Email{Subject: "x", HTML: "<p>x</p>"})
	require.ErrorIs(t, err, mailer.ErrNoRecipient)
}

func TestConvertTags(t *testing.T) {
	t.Parallel()

	tags := convertTags(mailer.Tags{
		"kind":       "contact-form",
		"vip":        struct{}{},
		"order id":   42,
		"source.url": "https://shop.test",
	})

	require.Len(t, tags, 4)
	assert.Equal(t, "kind", tags[0].Name)
	assert.Equal(t, "contact-form", tags[0].Value)
	assert.Equal(t, "order_id", tags[1].Name)
	assert.Equal(t, "42", tags[1].Value)
	assert.Equal(t, "source_url", tags[2].Name)
	assert.Equal(t, "https_shop_test", tags[2].Value)
	assert.Equal(t, "vip", tags[3].Name)
	assert.Equal(t, "true", tags[3].Value)
}

func TestTagValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   any
		want string
	}{
		{nil, "true"},
		{struct{}{}, "true"},
		{"x", "x"},
		{true, "true"},
		{7, "7"},
		{int64(8), "8"},
		{1.5, "1.5"},
		{[]int{1}, "[1]"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tagValue(tt.in))
	}
}
