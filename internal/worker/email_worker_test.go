package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	to, subject string
	err         error
}

func (f *fakeSender) SendComprobante(to, subject, _, _ string) error {
	f.to, f.subject = to, subject
	return f.err
}

func TestEmailWorker_Sends(t *testing.T) {
	s := &fakeSender{}
	raw, _ := json.Marshal(EmailJobPayload{ToEmail: "a@b.com", Subject: "Factura 0001"})

	require.NoError(t, NewEmailWorker(s).Process(context.Background(), raw))
	assert.Equal(t, "a@b.com", s.to)
	assert.Equal(t, "Factura 0001", s.subject)
}

func TestEmailWorker_SendFailureIsRetryable(t *testing.T) {
	s := &fakeSender{err: errors.New("smtp caido")}
	raw, _ := json.Marshal(EmailJobPayload{ToEmail: "a@b.com"})

	err := NewEmailWorker(s).Process(context.Background(), raw)
	require.Error(t, err)
	assert.False(t, IsPermanent(err))
}

func TestEmailWorker_EmptyRecipientIsPermanent(t *testing.T) {
	raw, _ := json.Marshal(EmailJobPayload{})
	err := NewEmailWorker(&fakeSender{}).Process(context.Background(), raw)
	assert.True(t, IsPermanent(err))
}
