package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ibrahimkeyboad/cardauth/internal/core/notifications"
)

const maxAttempts = 5

// StartWebhookWorker drains the webhook_jobs outbox in the background. Jobs
// are queued in the same database transaction that records a decision, so
// delivery lags the ledger but never disagrees with it.
func StartWebhookWorker(ctx context.Context, db *pgxpool.Pool, secret string) {
	go func() {
		slog.Info("webhook worker started")
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				slog.Info("webhook worker stopped")
				return
			case <-ticker.C:
				processJobs(ctx, db, secret)
			}
		}
	}()
}

func processJobs(ctx context.Context, db *pgxpool.Pool, secret string) {
	// SKIP LOCKED lets multiple workers drain the queue without fighting
	// over the same job.
	query := `
		SELECT id, url, payload, attempts
		FROM webhook_jobs
		WHERE status = 'PENDING' AND next_run_at <= NOW()
		ORDER BY created_at ASC
		LIMIT 1
		FOR UPDATE SKIP LOCKED
	`

	var id string
	var url string
	var payloadBytes []byte
	var attempts int

	err := db.QueryRow(ctx, query).Scan(&id, &url, &payloadBytes, &attempts)
	if err != nil {
		return
	}

	var payload interface{}
	if err := json.Unmarshal(payloadBytes, &payload); err != nil {
		slog.Error("worker: failed to parse payload", "error", err, "job_id", id)
		db.Exec(ctx, "UPDATE webhook_jobs SET status = 'FAILED' WHERE id = $1", id)
		return
	}

	slog.Info("worker: processing job", "url", url, "job_id", id)

	sendErr := notifications.SendWebhook(url, payload, secret)

	if sendErr != nil {
		slog.Error("worker: webhook failed", "error", sendErr, "attempts", attempts)
		nextRun := time.Now().Add(time.Duration(attempts*10+10) * time.Second)

		if attempts >= maxAttempts {
			db.Exec(ctx, "UPDATE webhook_jobs SET status = 'FAILED' WHERE id = $1", id)
			slog.Error("worker: job marked as FAILED, max attempts reached", "job_id", id)
		} else {
			db.Exec(ctx, "UPDATE webhook_jobs SET status = 'PENDING', attempts = attempts + 1, next_run_at = $2 WHERE id = $1", id, nextRun)
			slog.Info("worker: scheduled retry", "job_id", id, "next_run", nextRun)
		}
	} else {
		slog.Info("worker: webhook sent", "job_id", id)
		db.Exec(ctx, "UPDATE webhook_jobs SET status = 'COMPLETED' WHERE id = $1", id)
	}
}
