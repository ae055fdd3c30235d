package notify

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// DefaultChannel carries nudges between instances.
const DefaultChannel = "notifications:nudge"

type nudgeMessage struct {
	Subject string `json:"subject"`
}

// Bridge relays nudges over Redis pub/sub so that a write handled by one
// instance refreshes the streams held by every instance.
type Bridge struct {
	hub     *Hub
	rc      *redis.Client
	channel string
	log     *log.Logger
}

// NewBridge creates a bridge for hub. A nil client keeps nudges local.
func NewBridge(hub *Hub, rc *redis.Client, channel string, logger *log.Logger) *Bridge {
	if channel == "" {
		channel = DefaultChannel
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Bridge{hub: hub, rc: rc, channel: channel, log: logger}
}

// Nudge publishes a nudge for subject. When publishing fails only the local
// hub is nudged.
func (b *Bridge) Nudge(ctx context.Context, subject string) {
	if b.rc == nil {
		b.hub.Nudge(subject)
		return
	}
	data, err := sonic.Marshal(nudgeMessage{Subject: subject})
	if err == nil {
		err = b.rc.Publish(ctx, b.channel, data).Err()
	}
	if err != nil {
		b.log.WithError(err).WithField("subject", subject).Warn("publish nudge failed")
		b.hub.Nudge(subject)
	}
}

// Run delivers published nudges to the local hub until ctx is done,
// resubscribing when the subscription drops.
func (b *Bridge) Run(ctx context.Context) {
	if b.rc == nil {
		return
	}
	for {
		sub := b.rc.Subscribe(ctx, b.channel)
		ch := sub.Channel()
	recv:
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case msg, ok := <-ch:
				if !ok {
					break recv
				}
				var m nudgeMessage
				if err := sonic.UnmarshalString(msg.Payload, &m); err != nil || m.Subject == "" {
					b.log.WithField("payload", msg.Payload).Warn("unable to parse nudge")
					continue
				}
				b.hub.Nudge(m.Subject)
			}
		}
		_ = sub.Close()
		if ctx.Err() != nil {
			return
		}
		b.log.Error("nudge subscription closed, reconnecting")
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Second):
		}
	}
}
