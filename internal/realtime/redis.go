package realtime

import (
	"context"
	"sync"
	"time"

	"superbravo/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// CanalCodigoFactura is the Redis pub/sub channel shared by every API node.
const CanalCodigoFactura = "ventas:codigo-factura"

const (
	publishTimeout = 2 * time.Second
	// colaPublicacion bounds the codes waiting for the publisher goroutine.
	colaPublicacion = 64
)

// RedisNotifier publishes codes to CanalCodigoFactura so every node's Relay
// can forward them to its own Hub. When Redis is failing, or the breaker is
// open, the code goes straight to the local hub so clients on this node still
// get it.
type RedisNotifier struct {
	rdb   *redis.Client
	cb    *infra.CircuitBreaker
	local *Hub
	cola  chan string
	once  sync.Once
}

func NewRedisNotifier(rdb *redis.Client, cb *infra.CircuitBreaker, local *Hub) *RedisNotifier {
	return &RedisNotifier{rdb: rdb, cb: cb, local: local, cola: make(chan string, colaPublicacion)}
}

// NotificarCodigoFactura hands codigo to a single publisher goroutine, so
// codes leave this node in the order they were notified. When the queue is
// full the code is dropped; a later sale publishes a newer one.
func (n *RedisNotifier) NotificarCodigoFactura(codigo string) {
	n.once.Do(func() { go n.publicarEnOrden() })
	select {
	case n.cola <- codigo:
	default:
		log.Warn().Str("codigo", codigo).Msg("realtime: publish queue full, code dropped")
	}
}

func (n *RedisNotifier) publicarEnOrden() {
	for codigo := range n.cola {
		n.publicar(codigo)
	}
}

func (n *RedisNotifier) publicar(codigo string) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	err := n.cb.Execute(func() error {
		return n.rdb.Publish(ctx, CanalCodigoFactura, codigo).Err()
	})
	if err == nil {
		return
	}
	log.Warn().Err(err).Str("codigo", codigo).Str("breaker", n.cb.State().String()).
		Msg("realtime: publish failed, delivering locally")
	if n.local != nil {
		n.local.Broadcast(codigo)
	}
}

// Relay forwards every message on CanalCodigoFactura to hub until ctx ends.
func Relay(ctx context.Context, rdb *redis.Client, hub *Hub) {
	sub := rdb.Subscribe(ctx, CanalCodigoFactura)
	defer sub.Close()

	log.Info().Str("canal", CanalCodigoFactura).Msg("realtime: relay started")
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("realtime: relay stopped")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			hub.Broadcast(msg.Payload)
		}
	}
}
