package relay

import (
	"sync"
	"time"

	"github.com/rickgao/screen-relay/internal/protocol"
	"github.com/rickgao/screen-relay/internal/registry"
)

// startHeartbeat pings the connection on a repeating timer until the
// connection closes or the registry cancels it on unregister. There is
// no missed-pong eviction; dead peers are reaped by transport
// close/error only.
func (r *Relay) startHeartbeat(c *registry.Conn) {
	stop := make(chan struct{})
	var once sync.Once
	r.registry.SetHeartbeat(c, func() {
		once.Do(func() { close(stop) })
	})

	go func() {
		ticker := time.NewTicker(r.cfg.PingInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if !c.IsOpen() {
					return
				}
				err := c.Send(protocol.Ping{
					Type:      protocol.TypePing,
					Timestamp: time.Now().UnixMilli(),
				})
				if err != nil {
					r.logger.Debug("heartbeat ping failed", "conn_id", c.ID(), "error", err)
				}
			case <-stop:
				return
			case <-c.Done():
				return
			}
		}
	}()
}
