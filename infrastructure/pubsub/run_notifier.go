package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"auto-post/domain/model"
	"auto-post/domain/repository"

	"cloud.google.com/go/pubsub"
	log "github.com/sirupsen/logrus"
)

// RunNotifier publishes a summary of each publication run to a Pub/Sub
// topic so downstream consumers can alert on failures.
type RunNotifier struct {
	client *pubsub.Client
	topic  string
	log    *log.Logger
}

func NewRunNotifier(client *pubsub.Client, topic string, logger *log.Logger) repository.IRunNotifier {
	return &RunNotifier{
		client: client,
		topic:  topic,
		log:    logger,
	}
}

type runSummary struct {
	Date             string `json:"date"`
	Processed        int    `json:"processed"`
	InstagramSuccess int    `json:"ig_success"`
	XSuccess         int    `json:"x_success"`
	Errors           int    `json:"errors"`
}

func (n *RunNotifier) Notify(ctx context.Context, date time.Time, stats model.RunStatistics) error {
	payload, err := json.Marshal(runSummary{
		Date:             date.Format("2006-01-02"),
		Processed:        stats.Processed,
		InstagramSuccess: stats.InstagramSuccess,
		XSuccess:         stats.XSuccess,
		Errors:           stats.Errors,
	})
	if err != nil {
		return err
	}

	topic := n.client.Topic(n.topic)

	// Create the topic if it doesn't exist.
	exists, err := topic.Exists(ctx)
	if err != nil {
		return fmt.Errorf("failed to check topic %s: %w", n.topic, err)
	}
	if !exists {
		n.log.WithField("topic", n.topic).Info("Topic doesn't exist - creating it")
		if _, err := n.client.CreateTopic(ctx, n.topic); err != nil {
			return fmt.Errorf("failed to create topic %s: %w", n.topic, err)
		}
	}

	serverID, err := topic.Publish(ctx, &pubsub.Message{Data: payload}).Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to publish run summary: %w", err)
	}

	n.log.WithField("server ID", serverID).Info("Run summary published")
	return nil
}
