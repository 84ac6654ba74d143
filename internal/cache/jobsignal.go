// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// jobsignal.go provides a Valkey-backed cancellation and progress bus for
// render jobs. The supervisor polls IsCancelRequested at its checkpoint
// schedule instead of holding an in-process channel, so cancellation works
// the same whether the job is being driven by the process that queued it
// or by a separate worker that picked it up later.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	cancelKeyPrefix     = "job:cancel:"
	progressChannelFmt  = "job:progress:%s"
	cancelFlagTTL       = 30 * time.Minute
)

// ProgressEvent is published on a job's progress channel each time its
// status advances, so anything subscribed (an admin dashboard view, a CLI
// follow command) can observe it without polling the database.
type ProgressEvent struct {
	Status   string `json:"status"`
	Progress int    `json:"progress"`
}

// JobSignal manages cancellation requests and progress notifications for
// render jobs over Valkey.
type JobSignal struct {
	client *redis.Client
}

// NewJobSignal creates a new JobSignal backed by the given Valkey client.
func NewJobSignal(client *redis.Client) *JobSignal {
	return &JobSignal{client: client}
}

// RequestCancel marks a job for cooperative cancellation. The supervisor
// observes this at its next checkpoint poll, not immediately.
func (j *JobSignal) RequestCancel(ctx context.Context, jobID string) error {
	if err := j.client.Set(ctx, cancelKeyPrefix+jobID, "1", cancelFlagTTL).Err(); err != nil {
		return fmt.Errorf("request cancel: %w", err)
	}
	return nil
}

// IsCancelRequested reports whether RequestCancel has been called for jobID
// and not yet cleared.
func (j *JobSignal) IsCancelRequested(ctx context.Context, jobID string) bool {
	n, err := j.client.Exists(ctx, cancelKeyPrefix+jobID).Result()
	if err != nil {
		slog.Warn("job signal cancel check error", "job_id", jobID, "error", err)
		return false
	}
	return n > 0
}

// ClearCancel removes a job's cancellation flag. Called once a job reaches
// a terminal state, whether or not cancellation was ever requested.
func (j *JobSignal) ClearCancel(ctx context.Context, jobID string) {
	if err := j.client.Del(ctx, cancelKeyPrefix+jobID).Err(); err != nil {
		slog.Warn("job signal clear cancel error", "job_id", jobID, "error", err)
	}
}

// PublishProgress broadcasts a progress checkpoint on the job's channel.
// Publishing is best-effort: a failure here must never fail the render.
func (j *JobSignal) PublishProgress(ctx context.Context, jobID string, event ProgressEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		slog.Warn("job signal marshal progress error", "job_id", jobID, "error", err)
		return
	}
	if err := j.client.Publish(ctx, fmt.Sprintf(progressChannelFmt, jobID), payload).Err(); err != nil {
		slog.Warn("job signal publish error", "job_id", jobID, "error", err)
	}
}

// Subscribe returns a PubSub subscribed to a job's progress channel. The
// caller must Close it when done.
func (j *JobSignal) Subscribe(ctx context.Context, jobID string) *redis.PubSub {
	return j.client.Subscribe(ctx, fmt.Sprintf(progressChannelFmt, jobID))
}
