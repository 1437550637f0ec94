package registry

import (
	"errors"

	"github.com/rickgao/screen-relay/internal/protocol"
)

// Errors
var (
	ErrClosed            = errors.New("connection closed")
	ErrBufferFull        = errors.New("send buffer full")
	ErrAlreadyClassified = errors.New("connection already classified")
	ErrUnclassified      = errors.New("connection not classified")
	ErrEmptyID           = errors.New("connection id is empty")
)

// Role classifies a connection at handshake time.
type Role string

const (
	RoleUnclassified         Role = "unclassified"
	RoleProducer             Role = "producer"
	RoleProducerMultiMonitor Role = "producer_multi_monitor"
	RoleProducerDualScreen   Role = "producer_dual_screen"
	RoleSpawner              Role = "spawner"
	RoleConsumer             Role = "consumer"
)

// Producer reports whether the role belongs to the producer family.
func (r Role) Producer() bool {
	switch r {
	case RoleProducer, RoleProducerMultiMonitor, RoleProducerDualScreen:
		return true
	}
	return false
}

// Identity is the immutable classification assigned by the handshake.
type Identity struct {
	ID           string
	Role         Role
	ProducerID   string // logical desktop id, producer roles only
	ScreenID     string // dual-screen producers only
	Capabilities []string
	MonitorCount int
	Monitors     []protocol.Monitor
}

// Stats reports per-role membership counts.
type Stats struct {
	Producers            int `json:"producers"`
	MultiMonitorProducer int `json:"multi_monitor_producers"`
	DualScreenProducers  int `json:"dual_screen_producers"`
	Spawners             int `json:"spawners"`
	Consumers            int `json:"consumers"`
}
