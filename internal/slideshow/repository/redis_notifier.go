package repository

import (
	"context"
	"encoding/json"

	"github.com/amankumarsingh77/slideshow-encoder/internal/models"
	"github.com/amankumarsingh77/slideshow-encoder/internal/slideshow"
	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

type publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

type redisNotifier struct {
	client  publisher
	channel string
}

// NewRedisNotifier publishes every status event as JSON on channel.
func NewRedisNotifier(client *redis.Client, channel string) slideshow.StatusNotifier {
	return &redisNotifier{client: client, channel: channel}
}

func (r *redisNotifier) Notify(ctx context.Context, event models.StatusEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "redisNotifier.Notify.Marshal")
	}
	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		return errors.Wrap(err, "redisNotifier.Notify.Publish")
	}
	return nil
}

type nopNotifier struct{}

func NewNopNotifier() slideshow.StatusNotifier {
	return nopNotifier{}
}

func (nopNotifier) Notify(context.Context, models.StatusEvent) error {
	return nil
}
