package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/servana-app/servana-backend/pkg/logger"
)

const publishTimeout = 15 * time.Second

type publisher interface {
	Publish(context.Context, *gcppubsub.Message) publishResult
}

type publishResult interface {
	Get(context.Context) (string, error)
}

type gcpPublisher struct {
	inner *gcppubsub.Publisher
}

func (p gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	return p.inner.Publish(ctx, msg)
}

// Publisher emits domain events on the configured topic. Publish failures are
// logged and swallowed so event delivery never blocks a request path.
type Publisher struct {
	pub  publisher
	logg *logger.Logger
	now  func() time.Time
}

// NewPublisher wraps a Pub/Sub publisher handle for domain events.
func NewPublisher(pub *gcppubsub.Publisher, logg *logger.Logger) (*Publisher, error) {
	if pub == nil {
		return nil, errors.New("pubsub publisher is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &Publisher{pub: gcpPublisher{inner: pub}, logg: logg, now: time.Now}, nil
}

// Emit publishes a domain event. It never returns an error to the caller.
func (p *Publisher) Emit(ctx context.Context, eventType Type, tenantID uuid.UUID, payload any) {
	if p == nil || p.pub == nil {
		return
	}

	env, err := NewEnvelope(eventType, tenantID, p.now(), payload)
	if err != nil {
		p.logg.Error(ctx, "encode domain event", err)
		return
	}
	body, err := json.Marshal(env)
	if err != nil {
		p.logg.Error(ctx, "encode domain event envelope", err)
		return
	}

	msg := &gcppubsub.Message{
		Data: body,
		Attributes: map[string]string{
			"event_type": string(eventType),
			"tenant_id":  env.TenantID,
			"event_id":   env.EventID,
		},
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if _, err := p.pub.Publish(pubCtx, msg).Get(pubCtx); err != nil {
		ctx = p.logg.WithFields(ctx, map[string]any{"event_type": eventType})
		p.logg.Error(ctx, "publish domain event", err)
	}
}
