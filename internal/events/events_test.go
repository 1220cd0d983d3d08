package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"printkit/internal/logger"
)

func TestDecodeRoundTrip(t *testing.T) {
	event := New(TemplateGenerate, map[string]interface{}{"blueprint_id": 5})
	raw, err := json.Marshal(event)
	require.NoError(t, err)

	back, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, event.ID, back.ID)
	assert.Equal(t, TemplateGenerate, back.Type)
	assert.EqualValues(t, 5, back.Data["blueprint_id"])
}

func TestDecodeRejectsMissingType(t *testing.T) {
	_, err := Decode([]byte(`{"data": {}}`))
	assert.Error(t, err)

	_, err = Decode([]byte(`not json`))
	assert.Error(t, err)

	event, err := Decode([]byte(`{"type": "product.create"}`))
	require.NoError(t, err)
	assert.NotNil(t, event.Data)
}

func TestNewPublisherWithoutBrokers(t *testing.T) {
	p := NewPublisher(nil, "topic", logger.New("error"))
	_, ok := p.(Nop)
	assert.True(t, ok)
	assert.NoError(t, p.Publish(context.Background(), ProductCreated, nil))
	assert.NoError(t, p.Close())
}

func TestMemoryPublisher(t *testing.T) {
	m := &Memory{}
	require.NoError(t, m.Publish(context.Background(), ProductCreated, map[string]interface{}{"id": "p1"}))
	require.NoError(t, m.Publish(context.Background(), ProductPublished, nil))

	assert.Equal(t, []Type{ProductCreated, ProductPublished}, m.Types())
	assert.Equal(t, "p1", m.Events()[0].Data["id"])
}
