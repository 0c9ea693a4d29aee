package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"venuebook/config"
	"venuebook/services/booking"

	"github.com/hibiken/asynq"
)

const TypeBookingExpire = "booking:expire"

// ExpirePayload identifies the booking to reap.
type ExpirePayload struct {
	BookingID string `json:"bookingId"`
}

// QueueRedisOpt builds the asynq redis connection options from config.
func QueueRedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// ExpiryScheduler enqueues deferred cancellation tasks for pending
// bookings. It implements booking.ExpiryScheduler.
type ExpiryScheduler struct {
	client *asynq.Client
	delay  time.Duration
}

func NewExpiryScheduler(redisOpt asynq.RedisClientOpt, delay time.Duration) *ExpiryScheduler {
	return &ExpiryScheduler{
		client: asynq.NewClient(redisOpt),
		delay:  delay,
	}
}

func (s *ExpiryScheduler) ScheduleExpiry(ctx context.Context, bookingID string) error {
	payload, err := json.Marshal(ExpirePayload{BookingID: bookingID})
	if err != nil {
		return err
	}
	task := asynq.NewTask(TypeBookingExpire, payload)
	_, err = s.client.EnqueueContext(ctx, task, asynq.ProcessIn(s.delay))
	return err
}

// InitExpiryWorker runs the async worker in background. A pending booking
// whose payment never lands is cancelled here, freeing its date.
func InitExpiryWorker(svc booking.Service) {
	srv := asynq.NewServer(
		QueueRedisOpt(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeBookingExpire, handleExpireTask(svc))

	// Start async worker with retry logic
	go func() {
		log.Println("[ExpiryWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[ExpiryWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[ExpiryWorker] max retry attempts reached, exiting")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

func handleExpireTask(svc booking.Service) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p ExpirePayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[ExpiryWorker] invalid payload: %v", err)
			return err
		}
		// Returning an error lets asynq retry transient store failures;
		// ExpirePending itself is idempotent.
		return svc.ExpirePending(ctx, p.BookingID)
	}
}
