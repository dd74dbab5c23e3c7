package kafka

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type TopicSpec struct {
	Name              string
	NumPartitions     int
	ReplicationFactor int
	MaxWait           time.Duration
}

func (s *TopicSpec) applyDefaults() {
	if s.NumPartitions <= 0 {
		s.NumPartitions = 1
	}
	if s.ReplicationFactor <= 0 {
		s.ReplicationFactor = 1
	}
	if s.MaxWait <= 0 {
		s.MaxWait = 5 * time.Second
	}
}

// EnsureTopic creates the topic on the cluster controller if it does not
// exist yet and waits until partition metadata shows up. A topic that is
// slow to materialize is logged but not treated as an error, the first
// produce will retry anyway.
func EnsureTopic(ctx context.Context, brokers []string, spec TopicSpec, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	spec.applyDefaults()

	conn, err := kafka.DialContext(ctx, "tcp", brokers[0])
	if err != nil {
		log.Warn("kafka dial failed", zap.Error(err))
		return err
	}
	defer conn.Close()

	if err := createOnController(ctx, conn, spec, log); err != nil {
		return err
	}

	deadline := time.Now().Add(spec.MaxWait)
	for time.Now().Before(deadline) {
		if ps, err := conn.ReadPartitions(spec.Name); err == nil && len(ps) > 0 {
			log.Info("topic ready", zap.String("topic", spec.Name))
			return nil
		}
		time.Sleep(200 * time.Millisecond)
	}
	log.Warn("topic not confirmed ready in time", zap.String("topic", spec.Name))
	return nil
}

func createOnController(ctx context.Context, conn *kafka.Conn, spec TopicSpec, log *zap.Logger) error {
	controller, err := conn.Controller()
	if err != nil {
		log.Warn("kafka controller", zap.Error(err))
		return err
	}

	addr := net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port))
	cc, err := kafka.DialContext(ctx, "tcp", addr)
	if err != nil {
		log.Warn("kafka dial controller", zap.Error(err))
		return err
	}
	defer cc.Close()

	err = cc.CreateTopics(kafka.TopicConfig{
		Topic:             spec.Name,
		NumPartitions:     spec.NumPartitions,
		ReplicationFactor: spec.ReplicationFactor,
	})
	if err != nil {
		log.Debug("create topic (maybe exists)", zap.String("topic", spec.Name), zap.Error(err))
	}
	return nil
}
