package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go-snortalert/pkg/logger"
	"go-snortalert/pkg/models"

	"github.com/IBM/sarama"
)

// Publisher 将告警记录逐条发布到Kafka，消息key为源IP
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
}

// NewConfig 返回发布器使用的sarama配置
func NewConfig() (*sarama.Config, error) {
	config := sarama.NewConfig()
	version, err := sarama.ParseKafkaVersion("2.1.0")
	if err != nil {
		return nil, err
	}
	config.Version = version
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 3
	config.Producer.Return.Successes = true
	config.Producer.Return.Errors = true
	config.Net.DialTimeout = 30 * time.Second
	config.Net.ReadTimeout = 30 * time.Second
	config.Net.WriteTimeout = 30 * time.Second
	return config, nil
}

func NewPublisher(brokers []string, topic string) (*Publisher, error) {
	config, err := NewConfig()
	if err != nil {
		return nil, err
	}

	logger.Log.Infof("正在连接 Kafka brokers: %v", brokers)
	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, err
	}
	return NewPublisherWithProducer(producer, topic), nil
}

// NewPublisherWithProducer 使用已有的producer
func NewPublisherWithProducer(producer sarama.SyncProducer, topic string) *Publisher {
	return &Publisher{producer: producer, topic: topic}
}

func (p *Publisher) Name() string { return "kafka" }

func (p *Publisher) Write(ctx context.Context, records []models.AlertRecord) error {
	if len(records) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msgs := make([]*sarama.ProducerMessage, 0, len(records))
	for _, rec := range records {
		value, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("序列化告警记录失败: sequence_id=%d, %w", rec.SequenceID, err)
		}
		msgs = append(msgs, &sarama.ProducerMessage{
			Topic: p.topic,
			Key:   sarama.StringEncoder(rec.SourceIP),
			Value: sarama.ByteEncoder(value),
		})
	}

	if err := p.producer.SendMessages(msgs); err != nil {
		logger.Log.Errorf("发布消息失败: topic=%s, %v", p.topic, err)
		return err
	}
	logger.Log.Infof("成功发布 %d 条消息到 topic: %s", len(msgs), p.topic)
	return nil
}

func (p *Publisher) Close() error {
	return p.producer.Close()
}
