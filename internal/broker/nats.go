package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/sirupsen/logrus"
)

// StreamName is the JetStream stream holding all activities.
const StreamName = "GOPHERRUN_ACTIVITY"

// NatsPublisher publishes activities to a JetStream stream.
type NatsPublisher struct {
	nc *nats.Conn
	js jetstream.JetStream
}

// NewNatsPublisher connects to url and makes sure the stream exists.
func NewNatsPublisher(url string) (*NatsPublisher, error) {
	nc, err := nats.Connect(url, nats.Name("gopherrun-backend"))
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream init: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     StreamName,
		Subjects: []string{SubjectPrefix + ".>"},
		Storage:  jetstream.FileStorage,
		Replicas: 1,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create stream: %w", err)
	}

	return &NatsPublisher{nc: nc, js: js}, nil
}

// Publish waits for the stream acknowledgement.
func (p *NatsPublisher) Publish(ctx context.Context, activity Activity) error {
	if activity.OccurredAt.IsZero() {
		activity.OccurredAt = time.Now().UTC()
	}
	data, err := json.Marshal(activity)
	if err != nil {
		return fmt.Errorf("marshal activity: %w", err)
	}

	ack, err := p.js.Publish(ctx, activity.Subject(), data)
	if err != nil {
		return fmt.Errorf("nats publish: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"subject":  activity.Subject(),
		"sequence": ack.Sequence,
	}).Debug("activity published")
	return nil
}

// Close drains pending messages and closes the connection.
func (p *NatsPublisher) Close() {
	if err := p.nc.Drain(); err != nil {
		logrus.WithError(err).Warn("nats drain failed")
	}
}
