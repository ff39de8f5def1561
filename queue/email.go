package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/streadway/amqp"
	"github.com/taskmanager-ai/backend/notifications/email"
	storage "github.com/taskmanager-ai/backend/storage/cache"
)

// globalCount is a global variable used in the round robin algorithm to assign producers to each email message.
var globalCount int

// processedTTL is how long a delivered message id stays in the dedupe cache.
const processedTTL = 72 * time.Hour

// EmailProducerFactory is a struct for creating new EmailProducer instances.
type EmailProducerFactory struct{}

// EmailConsumerFactory is a struct for creating new EmailConsumer instances.
// It contains a Cache which is an interface to the cache service.
type EmailConsumerFactory struct {
	Cache storage.CacheInterface
}

// EmailProducer is a struct for managing the connection, channel, and queue of the AMQP message producer for emails.
type EmailProducer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   *amqp.Queue
}

// EmailConsumer is a struct for managing the connection, channel, queue and cache of the AMQP message consumer for emails.
type EmailConsumer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   *amqp.Queue
	cache   storage.CacheInterface
}

// EmailMessage is the wire format of a queued outbound email. Password
// reset codes and reminder notifications both travel in this shape; the Id
// doubles as the dedupe key, so enqueuing the same message twice delivers
// at most one email.
type EmailMessage struct {
	Id      string `json:"id"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// CreateProducer creates a new instance of EmailProducer bound to the given
// connection, channel, and queue.
func (f *EmailProducerFactory) CreateProducer(conn *amqp.Connection, ch *amqp.Channel, queue *amqp.Queue) (Producer, error) {
	return &EmailProducer{
		conn:    conn,
		channel: ch,
		queue:   queue,
	}, nil
}

// CreateConsumer creates a new instance of EmailConsumer bound to the given
// connection, channel, queue, and the factory's dedupe cache.
func (f *EmailConsumerFactory) CreateConsumer(conn *amqp.Connection, ch *amqp.Channel, queue *amqp.Queue) (Consumer, error) {
	return &EmailConsumer{
		conn:    conn,
		channel: ch,
		queue:   queue,
		cache:   f.Cache,
	}, nil
}

// Publish publishes a message body to the AMQP queue.
// The function returns an error if there was a problem with publishing the message.
func (ep *EmailProducer) Publish(body []byte) error {
	err := ep.channel.Publish(
		"",            // exchange
		ep.queue.Name, // routing key
		false,         // mandatory
		false,         // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		})
	if err != nil {
		return fmt.Errorf("failed to publish a message: %w", err)
	}

	return nil
}

// Consume consumes messages from the AMQP queue.
//
// It sets up a consumer on the queue and then launches a goroutine that
// continuously reads from it. Each message is unmarshalled, checked against
// the dedupe cache, and either sent through the email service or discarded.
// Transient failures requeue the message; successful deliveries are marked
// in the cache.
func (ec *EmailConsumer) Consume(ctx context.Context) (<-chan amqp.Delivery, error) {
	msgs, err := ec.channel.Consume(
		ec.queue.Name,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, err
	}

	go func() {
		for {
			select {
			case d, ok := <-msgs:

				if !ok {
					return
				}

				message := &EmailMessage{}
				if err := json.Unmarshal(d.Body, message); err != nil {
					log.Printf("failed to unmarshal email message: %v", err)
					d.Nack(false, true) // requeue the message in case of transient error.
					continue
				}

				processed, err := ec.cache.Get(ctx, "email_"+message.Id)
				if err != nil && !errors.Is(err, storage.ErrCacheMiss) {
					log.Printf("error checking cache: %v", err)
					d.Nack(false, true) // requeue the message in case of transient error.
					continue
				}

				if processed != nil {
					d.Ack(false)
					continue
				}

				if err := email.Send(message.To, message.Subject, message.Body); err != nil {
					log.Printf("failed to send email: %v", err)
					d.Nack(false, true) // requeue the message in case of transient error.
				} else {
					d.Ack(false)
					if err := ec.cache.Set(ctx, "email_"+message.Id, true, processedTTL); err != nil {
						log.Printf("failed to set key in cache: %v", err)
					}
				}

			case <-ctx.Done():
				return
			}
		}
	}()

	return msgs, nil
}

// BuildEmailQueue initializes a new Queue for handling outbound email.
// It creates the requested number of EmailProducer and EmailConsumer
// instances through their factories and binds them to the "emailQueue"
// broker queue. The dedupe cache is shared across all consumers.
func BuildEmailQueue(rabbitMQURL string, numProducers int, numConsumers int, emailCache storage.CacheInterface) *Queue {

	prodFactories := make([]ProducerFactory, numProducers)
	for i := 0; i < numProducers; i++ {
		prodFactories[i] = &EmailProducerFactory{}
	}

	consFactories := make([]ConsumerFactory, numConsumers)
	for i := 0; i < numConsumers; i++ {
		consFactories[i] = &EmailConsumerFactory{Cache: emailCache}
	}

	return InitQueue(rabbitMQURL, "emailQueue", prodFactories, consFactories)
}

// InitEmailCache initializes the dedupe cache used by email consumers.
// The function returns a CacheInterface object that can be used to
// communicate with the cache in the backend.
func InitEmailCache(url string) storage.CacheInterface {
	c, err := storage.NewCache(url)
	if err != nil {
		log.Fatalf("Error connecting to cache: %v", err)
	}
	return c
}

// ProcessEmail serializes an EmailMessage to JSON and publishes it onto the
// queue using one of the producers in a round-robin manner.
// The function returns an error if there was a problem with any step of the process.
func ProcessEmail(emailMsg *EmailMessage, emailQueue *Queue) error {

	body, err := json.Marshal(emailMsg)
	if err != nil {
		return errors.New("failed to marshal email message: " + err.Error())
	}

	producerCount := len(emailQueue.Producers)
	if producerCount == 0 {
		return errors.New("no producers available")
	}

	producer := emailQueue.Producers[globalCount%producerCount]
	globalCount++

	if err := producer.Publish(body); err != nil {
		return errors.New("failed to publish email message: " + err.Error())
	}

	return nil
}
