package kafka

import (
	"github.com/IBM/sarama"
)

// Producer wraps a synchronous sarama producer behind the narrow publish
// surface the services consume.
type Producer struct {
	producer sarama.SyncProducer
}

func NewProducer(brokers []string, clientID string) (*Producer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Partitioner = sarama.NewHashPartitioner
	config.Producer.MaxMessageBytes = 1000000
	config.Version = sarama.V2_0_0_0
	config.ClientID = clientID

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, err
	}
	return &Producer{producer: producer}, nil
}

// Publish sends one event. Keying by contract id keeps a conversation's
// events in partition order.
func (p *Producer) Publish(topic, key string, value []byte) error {
	_, _, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(value),
	})
	return err
}

func (p *Producer) Close() error {
	return p.producer.Close()
}
