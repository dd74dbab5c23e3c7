package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	kgo "github.com/segmentio/kafka-go"

	"github.com/taehun/board/internal/repository/kafka"
)

// One-shot topic provisioning for the local stack. Creates every topic
// in KAFKA_TOPICS and blocks until each partition has a leader.
func main() {
	brokers := strings.Split(env("KAFKA_BROKERS", "kafka:9092"), ",")
	topics := strings.Split(env("KAFKA_TOPICS", "board.mail.verification"), ",")
	partitions := envInt("KAFKA_PARTITIONS", 1)
	rf := envInt("KAFKA_RF", 1)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	for _, t := range topics {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if err := kafka.EnsureTopic(ctx, brokers, kafka.TopicSpec{
			Name:              t,
			NumPartitions:     partitions,
			ReplicationFactor: rf,
			MaxWait:           30 * time.Second,
		}, nil); err != nil {
			log.Fatalf("ensure topic %q: %v", t, err)
		}
		if err := waitLeaders(ctx, brokers[0], t); err != nil {
			log.Fatalf("wait topic %q: %v", t, err)
		}
		log.Printf("topic %q ready", t)
	}
	log.Println("kafka-init ok")
}

func waitLeaders(ctx context.Context, broker, topic string) error {
	backoff := 200 * time.Millisecond
	deadline := time.Now().Add(30 * time.Second)
	for time.Now().Before(deadline) {
		conn, err := kgo.Dial("tcp", broker)
		if err == nil {
			parts, perr := conn.ReadPartitions(topic)
			conn.Close()
			if perr == nil && len(parts) > 0 && allHaveLeader(parts) {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		if backoff < 5*time.Second {
			backoff *= 2
		}
	}
	return fmt.Errorf("topic %s has no leader in time", topic)
}

func allHaveLeader(parts []kgo.Partition) bool {
	for _, p := range parts {
		if p.Leader.ID == -1 {
			return false
		}
	}
	return true
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, _ := strconv.Atoi(v); n > 0 {
			return n
		}
	}
	return def
}
