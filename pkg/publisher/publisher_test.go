package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-snortalert/pkg/models"
)

func records() []models.AlertRecord {
	first := models.NewAlertRecord()
	first.SequenceID = 1
	first.SourceIP = "192.168.1.100"
	first.Severity = models.SeverityCritical

	second := models.NewAlertRecord()
	second.SequenceID = 2
	second.SourceIP = "10.0.1.50"
	return []models.AlertRecord{first, second}
}

func expectRecord(seq int) mocks.ValueChecker {
	return func(val []byte) error {
		var rec models.AlertRecord
		if err := json.Unmarshal(val, &rec); err != nil {
			return err
		}
		if rec.SequenceID != seq {
			return fmt.Errorf("expected sequence_id %d, got %d", seq, rec.SequenceID)
		}
		return nil
	}
}

func TestPublisher_Write(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(expectRecord(1))
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(expectRecord(2))

	pub := NewPublisherWithProducer(producer, "snort-alerts")
	require.NoError(t, pub.Write(context.Background(), records()))
	require.NoError(t, pub.Close())
}

func TestPublisher_WriteError(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)
	producer.ExpectSendMessageAndSucceed()

	pub := NewPublisherWithProducer(producer, "snort-alerts")
	err := pub.Write(context.Background(), records())

	require.Error(t, err)
	assert.True(t, errors.Is(err, sarama.ErrOutOfBrokers))
	require.NoError(t, pub.Close())
}

func TestPublisher_EmptyAndCancelled(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	pub := NewPublisherWithProducer(producer, "snort-alerts")

	assert.NoError(t, pub.Write(context.Background(), nil))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, pub.Write(ctx, records()), context.Canceled)

	require.NoError(t, pub.Close())
}

func TestNewConfig(t *testing.T) {
	config, err := NewConfig()
	require.NoError(t, err)

	assert.True(t, config.Producer.Return.Successes)
	assert.Equal(t, sarama.WaitForAll, config.Producer.RequiredAcks)
	assert.NoError(t, config.Validate())
}

func TestPublisher_Name(t *testing.T) {
	assert.Equal(t, "kafka", (&Publisher{}).Name())
}
