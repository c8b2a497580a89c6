package realtime

import (
	"testing"
	"time"

	"superbravo/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recibir(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
		return ""
	}
}

func TestHub_BroadcastReachesEverySubscriber(t *testing.T) {
	hub := NewHub()
	a, cancelA := hub.Subscribe()
	defer cancelA()
	b, cancelB := hub.Subscribe()
	defer cancelB()

	hub.Broadcast("0007")

	assert.Equal(t, "0007", recibir(t, a))
	assert.Equal(t, "0007", recibir(t, b))
}

func TestHub_CancelRemovesAndClosesChannel(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe()
	require.Equal(t, 1, hub.Suscriptores())

	cancel()
	cancel() // second call is a no-op

	assert.Equal(t, 0, hub.Suscriptores())
	_, ok := <-ch
	assert.False(t, ok)
}

func TestHub_BroadcastDoesNotBlockOnFullSubscriber(t *testing.T) {
	hub := NewHub()
	_, cancel := hub.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			hub.Broadcast("0001")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Broadcast blocked on a subscriber that never reads")
	}
}

func TestRedisNotifier_FallsBackToLocalHub(t *testing.T) {
	// Nothing listens on port 1, so every publish fails fast.
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	hub := NewHub()
	ch, cancel := hub.Subscribe()
	defer cancel()

	n := NewRedisNotifier(rdb, infra.NewCircuitBreaker(infra.DefaultCBConfig()), hub)
	n.NotificarCodigoFactura("0042")

	assert.Equal(t, "0042", recibir(t, ch))
}

func TestRedisNotifier_DeliversInNotifyOrder(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	hub := NewHub()
	ch, cancel := hub.Subscribe()
	defer cancel()

	n := NewRedisNotifier(rdb, infra.NewCircuitBreaker(infra.DefaultCBConfig()), hub)
	codigos := []string{"0004", "0005", "0006", "0007", "0008", "0009"}
	for _, c := range codigos {
		n.NotificarCodigoFactura(c)
	}

	for _, want := range codigos {
		assert.Equal(t, want, recibir(t, ch))
	}
}
