package publisher

import (
	"context"
	"encoding/xml"
	"testing"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSink struct {
	exchange, key string
	msg           amqp.Publishing
	err           error
}

func (s *fakeSink) Publish(_ context.Context, exchange string, key string, _ bool, _ bool, msg amqp.Publishing) error {
	s.exchange, s.key, s.msg = exchange, key, msg
	return s.err
}

type message struct {
	XMLName xml.Name `xml:"Message"`
	Value   string   `xml:"Value"`
}

func TestSendMessage(t *testing.T) {
	sink := &fakeSink{}
	p := New[message](sink, &Config{
		Exchange:    "rainbow",
		RoutingKey:  "crack.response",
		Marshal:     xml.Marshal,
		ContentType: "application/xml",
	})
	require.NoError(t, p.SendMessage(context.Background(), &message{Value: "abcdef"}, Persistent, false, false))

	assert.Equal(t, "rainbow", sink.exchange)
	assert.Equal(t, "crack.response", sink.key)
	assert.Equal(t, uint8(Persistent), sink.msg.DeliveryMode)
	assert.Equal(t, "application/xml", sink.msg.ContentType)
	assert.Equal(t, "<Message><Value>abcdef</Value></Message>", string(sink.msg.Body))
}

func TestSendMessage_Defaults(t *testing.T) {
	sink := &fakeSink{}
	p := New[message](sink, &Config{})
	require.NoError(t, p.SendMessage(context.Background(), &message{Value: "x"}, Transient, false, false))
	assert.Equal(t, "application/json", sink.msg.ContentType)
	assert.JSONEq(t, `{"XMLName":{"Space":"","Local":""},"Value":"x"}`, string(sink.msg.Body))
}

func TestSendMessage_PublishError(t *testing.T) {
	sink := &fakeSink{err: errors.New("channel closed")}
	p := New[message](sink, &Config{})
	err := p.SendMessage(context.Background(), &message{}, Transient, false, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "channel closed")
}
