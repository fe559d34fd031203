package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"carhire/config"
	"carhire/services/availability"

	"github.com/hibiken/asynq"
)

const TypeJobExpire = "availability:expire"

type jobExpirePayload struct {
	RequestID string `json:"request_id"`
}

// ExpiryClient schedules deferred job reclaim through the task queue. It
// implements availability.ExpiryScheduler.
type ExpiryClient struct {
	client *asynq.Client
}

// NewExpiryClient builds the enqueue side against the job-queue Redis DB.
func NewExpiryClient() *ExpiryClient {
	return &ExpiryClient{
		client: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     config.AppConfig.RedisAddr,
			Password: config.AppConfig.RedisPassword,
			DB:       config.AppConfig.RedisJobQueueDB,
		}),
	}
}

// ScheduleExpiry enqueues one reclaim task to fire at the retention deadline.
func (c *ExpiryClient) ScheduleExpiry(jobID string, at time.Time) error {
	payload, err := json.Marshal(jobExpirePayload{RequestID: jobID})
	if err != nil {
		return err
	}
	task := asynq.NewTask(TypeJobExpire, payload)
	_, err = c.client.Enqueue(task, asynq.ProcessAt(at))
	return err
}

// Close releases the underlying queue connection.
func (c *ExpiryClient) Close() error {
	return c.client.Close()
}

// InitExpiryWorker runs the async worker in background.
func InitExpiryWorker(jobs *availability.JobTable) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisJobQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeJobExpire, handleJobExpireTask(jobs))

	go func() {
		log.Println("[ExpiryWorker] Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[ExpiryWorker] Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[ExpiryWorker] Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

func handleJobExpireTask(jobs *availability.JobTable) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p jobExpirePayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[ExpiryHandler] Invalid payload: %v", err)
			return err
		}
		jobs.Expire(p.RequestID)
		return nil
	}
}
