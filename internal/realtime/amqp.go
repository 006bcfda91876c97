package realtime

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
)

const exchangeName = "realtime_topic"

// AMQPStream is the RabbitMQ-backed Stream. Each subscription gets its own
// exclusive auto-delete queue bound to the topic exchange with the topic as
// routing key, so per-order fan-out is handled by the broker.
type AMQPStream struct {
	conn *amqp.Connection
}

func ConnectAMQP(url string) (*AMQPStream, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	// Declare the exchange once on a throwaway channel.
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	defer ch.Close()

	err = ch.ExchangeDeclare(
		exchangeName, // name
		"topic",      // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		conn.Close()
		return nil, err
	}

	return &AMQPStream{conn: conn}, nil
}

func (s *AMQPStream) Subscribe(ctx context.Context, topic string) (<-chan []byte, error) {
	ch, err := s.conn.Channel()
	if err != nil {
		return nil, err
	}

	q, err := ch.QueueDeclare(
		"",    // name, broker-generated
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		ch.Close()
		return nil, err
	}

	err = ch.QueueBind(q.Name, topic, exchangeName, false, nil)
	if err != nil {
		ch.Close()
		return nil, err
	}

	deliveries, err := ch.Consume(
		q.Name, // queue
		"",     // consumer tag
		true,   // auto-ack
		true,   // exclusive
		false,  // no-local
		false,  // no-wait
		nil,    // arguments
	)
	if err != nil {
		ch.Close()
		return nil, err
	}

	out := make(chan []byte)
	go func() {
		defer close(out)
		defer ch.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				select {
				case out <- d.Body:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

func (s *AMQPStream) Close() error {
	return s.conn.Close()
}
