package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/suPer8Hu/ai-studio/internal/config"
	"github.com/suPer8Hu/ai-studio/internal/creation"
	"github.com/suPer8Hu/ai-studio/internal/db"
	"github.com/suPer8Hu/ai-studio/internal/events"
	"github.com/suPer8Hu/ai-studio/internal/store/rabbitmq"
	"github.com/suPer8Hu/ai-studio/internal/store/redisstore"
)

const maxAttempts = 5

func workerConcurrency() int {
	v := os.Getenv("WORKER_CONCURRENCY")
	if v == "" {
		return 2
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 2
	}
	if n > 50 {
		return 50
	}
	return n
}

func retryDelay(attempt int) time.Duration {
	return time.Duration(1<<attempt) * time.Second
}

func main() {
	cfg := config.Load()

	rds, err := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer rds.Close()

	// warm an empty feed so the API does not fall back to the database after a flush
	gdb := db.Connect(cfg.DBDriver, cfg.DBDSN)
	if items, err := creation.NewRepo(gdb).ListPublished(context.Background(), 200); err != nil {
		log.Printf("feed warmup: list failed err=%v", err)
	} else if seeded, err := rds.SeedPublished(context.Background(), items); err != nil {
		log.Printf("feed warmup: seed failed err=%v", err)
	} else if seeded {
		log.Printf("feed warmup: seeded %d items", len(items))
	}

	// publisher declares the topology and is reused for retries
	pub, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue)
	if err != nil {
		log.Fatalf("rabbit publisher: %v", err)
	}
	defer pub.Close()

	conn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("rabbit dial: %v", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("rabbit channel: %v", err)
	}
	defer ch.Close()

	if err := rabbitmq.DeclareTopology(ch, cfg.RabbitQueue); err != nil {
		log.Fatalf("queue declare: %v", err)
	}

	//  strict concurrency control
	concurrency := workerConcurrency()

	if err := ch.Qos(concurrency, 0, false); err != nil {
		log.Fatalf("qos: %v", err)
	}

	msgs, err := ch.Consume(cfg.RabbitQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("worker started, queue=%s concurrency=%d", cfg.RabbitQueue, concurrency)

	h := &events.Handler{Feed: rds}

	// worker pool
	jobs := make(chan amqp.Delivery, concurrency*2)

	var wg sync.WaitGroup
	wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func(workerID int) {
			defer wg.Done()
			for d := range jobs {
				handleDelivery(workerID, h, pub, d)
			}
		}(i)
	}

	// dispatcher
	for {
		select {
		case <-ctx.Done():
			log.Printf("worker shutting down")
			close(jobs)
			wg.Wait()
			return

		case d, ok := <-msgs:
			if !ok {
				log.Printf("delivery channel closed")
				close(jobs)
				wg.Wait()
				return
			}
			jobs <- d
		}
	}
}

// handleDelivery runs detached from the shutdown signal so buffered deliveries drain
// instead of being dead-lettered.
func handleDelivery(workerID int, h *events.Handler, pub *rabbitmq.Publisher, d amqp.Delivery) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	start := time.Now()
	err := h.Handle(ctx, d.Body)
	if err == nil {
		if err := d.Ack(false); err != nil {
			log.Printf("worker=%d ack failed err=%v", workerID, err)
		}
		return
	}

	attempt := rabbitmq.Attempt(d)
	if errors.Is(err, events.ErrMalformed) || attempt+1 >= maxAttempts {
		log.Printf("worker=%d dead-letter attempt=%d cost=%s err=%v", workerID, attempt, time.Since(start), err)
		_ = d.Nack(false, false)
		return
	}

	log.Printf("worker=%d retry attempt=%d cost=%s err=%v", workerID, attempt, time.Since(start), err)
	if rerr := pub.Retry(ctx, d, retryDelay(attempt)); rerr != nil {
		log.Printf("worker=%d retry publish failed err=%v", workerID, rerr)
		_ = d.Nack(false, false)
		return
	}
	_ = d.Ack(false)
}
