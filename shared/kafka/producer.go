// shared/kafka/producer.go
package kafka

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/IBM/sarama"
)

// Producer publishes fire-and-forget audit events. Delivery errors are
// logged by a background loop and never fail the caller.
type Producer struct {
	producer sarama.AsyncProducer
}

func NewProducer(brokers string) *Producer {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForLocal       // Balance speed and reliability
	config.Producer.Compression = sarama.CompressionSnappy   // Better throughput
	config.Producer.Flush.Frequency = 500 * time.Millisecond // Batch messages
	config.Producer.Retry.Max = 5

	producer, err := sarama.NewAsyncProducer([]string{brokers}, config)
	if err != nil {
		panic("failed to start Kafka producer: " + err.Error())
	}

	// Handle errors in separate goroutine
	go func() {
		for err := range producer.Errors() {
			log.Printf("Failed to send Kafka message: %v", err)
		}
	}()

	return &Producer{producer: producer}
}

func (p *Producer) Publish(topic string, message map[string]interface{}) {
	bytes, _ := json.Marshal(message)
	p.producer.Input() <- &sarama.ProducerMessage{
		Topic: topic,
		Value: sarama.ByteEncoder(bytes),
	}
}

func (p *Producer) Close() error {
	return p.producer.Close()
}

// SyncProducer publishes with acknowledgement. Used where a transport
// failure must fail the calling operation, e.g. payment-link dispatch.
type SyncProducer struct {
	producer sarama.SyncProducer
}

func NewSyncProducer(brokers string) (*SyncProducer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 3
	config.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer([]string{brokers}, config)
	if err != nil {
		return nil, fmt.Errorf("start sync Kafka producer: %w", err)
	}
	return &SyncProducer{producer: producer}, nil
}

func (p *SyncProducer) Publish(topic string, message map[string]interface{}) error {
	bytes, err := json.Marshal(message)
	if err != nil {
		return err
	}
	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: topic,
		Value: sarama.ByteEncoder(bytes),
	})
	return err
}

func (p *SyncProducer) Close() error {
	return p.producer.Close()
}
