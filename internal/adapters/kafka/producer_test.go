package kafka

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProducer_ConcurrentPublish(t *testing.T) {
	producer := NewProducer(ProducerConfig{Brokers: []string{"localhost:0"}})
	defer producer.Close()

	// Canceled context makes WriteMessages return without dialing the broker;
	// the point is concurrent first-use writer creation, not delivery
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = producer.Publish(ctx, "machina.predictions", "req", map[string]string{"k": "v"})
		}()
	}
	wg.Wait()

	producer.mu.RLock()
	defer producer.mu.RUnlock()
	assert.Len(t, producer.writers, 1, "concurrent publishes to one topic must share one writer")
}

func TestProducer_GetWriterReuse(t *testing.T) {
	producer := NewProducer(ProducerConfig{Brokers: []string{"localhost:0"}})
	defer producer.Close()

	first := producer.getWriter("machina.predictions")
	second := producer.getWriter("machina.predictions")
	assert.Same(t, first, second)

	other := producer.getWriter("machina.other")
	assert.NotSame(t, first, other)
}
