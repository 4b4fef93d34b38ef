package events

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

const (
	StreamName = "STOCK_MOVEMENTS"

	SubjectStockAdjusted    = "stock.adjusted"
	SubjectStockTransferred = "stock.transferred"
	SubjectStockReceived    = "stock.received"
	SubjectLowStock         = "stock.low_stock"
)

// Publisher emits stock movement events to NATS JetStream. A nil Publisher
// (or one whose connection failed) is safe to call; events are logged and
// dropped so movement operations never depend on the broker being up.
type Publisher struct {
	nc     *nats.Conn
	js     nats.JetStreamContext
	logger *logrus.Entry
}

// StockMovedEvent is the payload for adjusted/transferred/received events
type StockMovedEvent struct {
	OrganizationID string    `json:"organizationId"`
	ProductID      string    `json:"productId"`
	WarehouseID    string    `json:"warehouseId,omitempty"`
	MovementType   string    `json:"movementType"`
	Quantity       int       `json:"quantity"`
	ReferenceID    string    `json:"referenceId"`
	ReferenceType  string    `json:"referenceType"`
	OccurredAt     time.Time `json:"occurredAt"`
}

func NewPublisher(natsURL string, logger *logrus.Logger) (*Publisher, error) {
	log := logger.WithField("component", "events")

	nc, err := nats.Connect(natsURL,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, err
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, err
	}

	p := &Publisher{nc: nc, js: js, logger: log}
	if err := p.ensureStream(); err != nil {
		log.WithError(err).Warn("Failed to ensure stream, publishing may fail")
	}

	log.WithField("url", natsURL).Info("Connected to NATS")
	return p, nil
}

func (p *Publisher) ensureStream() error {
	_, err := p.js.StreamInfo(StreamName)
	if err == nil {
		return nil
	}
	_, err = p.js.AddStream(&nats.StreamConfig{
		Name:     StreamName,
		Subjects: []string{"stock.>"},
		Storage:  nats.FileStorage,
		MaxAge:   7 * 24 * time.Hour,
	})
	return err
}

func (p *Publisher) publish(subject string, event interface{}) {
	if p == nil || p.js == nil {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		p.logger.WithError(err).WithField("subject", subject).Error("Failed to marshal event")
		return
	}

	if _, err := p.js.Publish(subject, data); err != nil {
		p.logger.WithError(err).WithField("subject", subject).Warn("Failed to publish event")
		return
	}
	p.logger.WithField("subject", subject).Debug("Published event")
}

func (p *Publisher) PublishStockAdjusted(event StockMovedEvent) {
	p.publish(SubjectStockAdjusted, event)
}

func (p *Publisher) PublishStockTransferred(event StockMovedEvent) {
	p.publish(SubjectStockTransferred, event)
}

func (p *Publisher) PublishStockReceived(event StockMovedEvent) {
	p.publish(SubjectStockReceived, event)
}

// LowStockEvent is emitted when a movement drops a product below its
// minimum stock level.
type LowStockEvent struct {
	OrganizationID  string    `json:"organizationId"`
	ProductID       string    `json:"productId"`
	WarehouseID     string    `json:"warehouseId"`
	CurrentQuantity int       `json:"currentQuantity"`
	MinStockLevel   int       `json:"minStockLevel"`
	OccurredAt      time.Time `json:"occurredAt"`
}

func (p *Publisher) PublishLowStock(event LowStockEvent) {
	p.publish(SubjectLowStock, event)
}

func (p *Publisher) Close() {
	if p == nil || p.nc == nil {
		return
	}
	p.nc.Close()
}
