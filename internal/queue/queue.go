// Package queue carries campaign dispatch jobs over a durable RabbitMQ
// queue. The API publishes a job after a campaign is accepted for sending;
// the worker binary consumes it and runs the dispatch. The queue is
// durable so an accepted campaign survives a worker restart; the ledger's
// (campaign_id, member_id) key makes redelivery safe.
package queue

import (
	"encoding/json"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

type DispatchJob struct {
	CampaignID int `json:"campaign_id"`
}

type Publisher interface {
	PublishDispatch(job DispatchJob) error
}

type AMQPQueue struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
	log   *zap.Logger
}

func Dial(url, queueName string, log *zap.Logger) (*AMQPQueue, error) {
	var conn *amqp.Connection

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxElapsedTime = 30 * time.Second

	err := backoff.Retry(func() error {
		var err error
		conn, err = amqp.Dial(url)
		return err
	}, b)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	if _, err := ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	return &AMQPQueue{conn: conn, ch: ch, queue: queueName, log: log}, nil
}

func (q *AMQPQueue) PublishDispatch(job DispatchJob) error {
	body, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return q.ch.Publish(
		"",
		q.queue,
		false,
		false,
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
		},
	)
}

// Consume delivers dispatch jobs to handler until the channel closes.
// Jobs are acked regardless of the handler outcome: a failed dispatch
// marks the campaign failed in the database, there is no redelivery loop.
func (q *AMQPQueue) Consume(handler func(job DispatchJob) error) error {
	msgs, err := q.ch.Consume(
		q.queue,
		"",
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return err
	}

	for d := range msgs {
		var job DispatchJob
		if err := json.Unmarshal(d.Body, &job); err != nil {
			q.log.Warn("dropping malformed dispatch job", zap.Error(err))
			d.Ack(false)
			continue
		}

		if err := handler(job); err != nil {
			q.log.Error("dispatch job failed",
				zap.Int("campaign_id", job.CampaignID),
				zap.Error(err),
			)
		}
		d.Ack(false)
	}

	return nil
}

func (q *AMQPQueue) Close() {
	q.ch.Close()
	q.conn.Close()
}

var _ Publisher = (*AMQPQueue)(nil)
