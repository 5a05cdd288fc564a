// Package notifications provides real-time vote notification delivery.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"runtime/debug"

	"ripple/internal/models"
	"ripple/internal/observability"

	"github.com/redis/go-redis/v9"
)

// VoteEvent is the payload fanned out to a post owner when a vote lands.
type VoteEvent struct {
	Type    string          `json:"type"`
	PostID  uint            `json:"post_id"`
	VoterID uint            `json:"voter_id"`
	Kind    models.VoteKind `json:"kind"`
}

// Notifier publishes notifications into per-user Redis channels.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// NotifyVote publishes a vote event to the post owner's channel. A nil Redis
// client or a publish failure drops the event; voting never depends on it.
func (n *Notifier) NotifyVote(ctx context.Context, ownerID, postID, voterID uint, kind models.VoteKind) {
	if n == nil || n.rdb == nil {
		return
	}

	payload, err := json.Marshal(VoteEvent{
		Type:    "vote",
		PostID:  postID,
		VoterID: voterID,
		Kind:    kind,
	})
	if err != nil {
		return
	}

	if err := n.PublishUser(ctx, ownerID, string(payload)); err != nil {
		log.Printf("vote notification dropped for user %d: %v", ownerID, err)
		return
	}
	observability.NotificationsPublishedTotal.Inc()
}

// UserChannel returns the Redis channel name for a user's notifications.
func UserChannel(userID uint) string {
	return fmt.Sprintf("notifications:user:%d", userID)
}

// PublishUser sends a notification payload to a user's channel.
func (n *Notifier) PublishUser(ctx context.Context, userID uint, payload string) error {
	if n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, UserChannel(userID), payload).Err()
}

// StartPatternSubscriber subscribes to pattern `notifications:user:*` and calls
// onMessage for each incoming message. onMessage receives channel and payload.
func (n *Notifier) StartPatternSubscriber(
	ctx context.Context, onMessage func(channel string, payload string),
) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, "notifications:user:*")
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							log.Printf("PANIC in PatternSubscriber: %v\n%s", r, debug.Stack())
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}
