// Package notifier fans claim mutations out to realtime subscribers: a
// durable Kafka stream for downstream consumers, Redis pub/sub channels for
// connected clients, and invalidation of the Redis-cached views those clients
// hold. Reconnection and backoff belong to the underlying transports.
package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/akunmarket/platform/claims-service/internal/models"
	"github.com/akunmarket/platform/claims-service/internal/telemetry"
)

// AdminChannel carries every claim event, unfiltered.
const AdminChannel = "claims.admin"

// UserChannel is the per-member channel; members only ever see their own
// claims.
func UserChannel(userID string) string {
	return fmt.Sprintf("claims.user.%s", userID)
}

func CacheKeyClaims(userID string) string   { return "cache:claims:list:" + userID }
func CacheKeyEligible(userID string) string { return "cache:claims:eligible:" + userID }

// CacheKeyStats with an empty userID addresses the global (admin) aggregate.
func CacheKeyStats(userID string) string {
	if userID == "" {
		return "cache:claims:stats:all"
	}
	return "cache:claims:stats:" + userID
}

// invalidationKeys are the cached views a mutation on the user's claims makes
// stale: their claim list, their stats, their eligible accounts, and the
// global stats the admin dashboard reads.
func invalidationKeys(userID string) []string {
	return []string{
		CacheKeyClaims(userID),
		CacheKeyStats(userID),
		CacheKeyEligible(userID),
		CacheKeyStats(""),
	}
}

// BuildEvent assembles the typed payload for a claim mutation. A status
// notification rides along only when an update actually changed the status.
func BuildEvent(eventType models.ClaimEventType, claim *models.WarrantyClaim, oldStatus, newStatus models.ClaimStatus) models.ClaimEvent {
	event := models.ClaimEvent{
		Type:  eventType,
		Claim: claim,
		At:    time.Now(),
	}
	if eventType == models.ClaimUpdated && oldStatus != newStatus {
		event.Notification = &models.StatusNotification{
			ClaimID:   claim.ID,
			OldStatus: oldStatus,
			NewStatus: newStatus,
		}
	}
	return event
}

type RealtimeNotifier struct {
	redisClient *redis.Client
	kafkaWriter *kafka.Writer
}

func NewRealtimeNotifier(redisClient *redis.Client, kafkaWriter *kafka.Writer) *RealtimeNotifier {
	return &RealtimeNotifier{redisClient: redisClient, kafkaWriter: kafkaWriter}
}

func (n *RealtimeNotifier) ClaimInserted(ctx context.Context, claim *models.WarrantyClaim) {
	n.publish(ctx, BuildEvent(models.ClaimInserted, claim, "", ""))
}

func (n *RealtimeNotifier) ClaimUpdated(ctx context.Context, claim *models.WarrantyClaim, oldStatus, newStatus models.ClaimStatus) {
	n.publish(ctx, BuildEvent(models.ClaimUpdated, claim, oldStatus, newStatus))
}

func (n *RealtimeNotifier) ClaimDeleted(ctx context.Context, claim *models.WarrantyClaim) {
	n.publish(ctx, BuildEvent(models.ClaimDeleted, claim, "", ""))
}

// publish fans one event out to every sink. Fan-out is best effort: a broker
// hiccup must not fail the mutation that already committed, so errors are
// logged and swallowed here.
func (n *RealtimeNotifier) publish(ctx context.Context, event models.ClaimEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		telemetry.Logger.Error("Failed to encode claim event", zap.Error(err))
		return
	}

	if n.kafkaWriter != nil {
		if err := n.kafkaWriter.WriteMessages(ctx, kafka.Message{
			Key:   []byte(event.Claim.ID),
			Value: payload,
		}); err != nil {
			telemetry.Logger.Error("Failed to write claim event to Kafka",
				zap.String("claim_id", event.Claim.ID),
				zap.Error(err),
			)
		}
	}

	if n.redisClient != nil {
		for _, channel := range []string{UserChannel(event.Claim.UserID), AdminChannel} {
			if err := n.redisClient.Publish(ctx, channel, payload).Err(); err != nil {
				telemetry.Logger.Error("Failed to publish claim event",
					zap.String("channel", channel),
					zap.Error(err),
				)
			}
		}
		if err := n.redisClient.Del(ctx, invalidationKeys(event.Claim.UserID)...).Err(); err != nil {
			telemetry.Logger.Error("Failed to invalidate claim caches",
				zap.String("user_id", event.Claim.UserID),
				zap.Error(err),
			)
		}
	}

	telemetry.Logger.Info("Claim event published",
		zap.String("type", string(event.Type)),
		zap.String("claim_id", event.Claim.ID),
		zap.String("status", string(event.Claim.Status)),
	)
}
