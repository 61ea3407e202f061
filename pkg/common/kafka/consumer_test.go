package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"reflect"
	"testing"

	"github.com/riskwatch/platform/pkg/common/logger"
	"github.com/riskwatch/platform/pkg/common/models"
	"github.com/segmentio/kafka-go"
)

func TestMain(m *testing.M) {
	logger.Silence()
	os.Exit(m.Run())
}

// queueReader serves queued messages, then cancels the consume loop.
type queueReader struct {
	messages  []kafka.Message
	cancel    context.CancelFunc
	committed []int64
}

func (q *queueReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	if len(q.messages) == 0 {
		q.cancel()
		<-ctx.Done()
		return kafka.Message{}, ctx.Err()
	}
	msg := q.messages[0]
	q.messages = q.messages[1:]
	return msg, nil
}

func (q *queueReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	for _, m := range msgs {
		q.committed = append(q.committed, m.Offset)
	}
	return nil
}

func (q *queueReader) Close() error { return nil }

func eventMessage(t *testing.T, offset int64, eventType string) kafka.Message {
	t.Helper()
	value, err := json.Marshal(NewEvent(eventType, "test", nil))
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return kafka.Message{Offset: offset, Value: value}
}

func TestConsumeCommitPolicy(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &queueReader{
		cancel: cancel,
		messages: []kafka.Message{
			eventMessage(t, 0, "ok"),
			eventMessage(t, 1, "permanent"),
			{Offset: 2, Value: []byte("not json")},
			eventMessage(t, 3, "transient"),
			eventMessage(t, 4, "ok"),
		},
	}
	consumer := &Consumer{reader: reader}

	var handled []string
	err := consumer.Consume(ctx, func(ctx context.Context, event models.Event) error {
		handled = append(handled, event.Type)
		switch event.Type {
		case "permanent":
			return Permanent(errors.New("bad request"))
		case "transient":
			return errors.New("database unavailable")
		}
		return nil
	})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if want := []int64{0, 1, 2, 4}; !reflect.DeepEqual(reader.committed, want) {
		t.Errorf("committed offsets %v, want %v", reader.committed, want)
	}
	if want := []string{"ok", "permanent", "transient", "ok"}; !reflect.DeepEqual(handled, want) {
		t.Errorf("handled %v, want %v", handled, want)
	}
}

func TestPermanent(t *testing.T) {
	if Permanent(nil) != nil {
		t.Error("Permanent(nil) should be nil")
	}
	base := errors.New("boom")
	err := Permanent(base)
	if !IsPermanent(err) || !errors.Is(err, base) {
		t.Errorf("expected permanent wrapper around base, got %v", err)
	}
	if IsPermanent(base) {
		t.Error("plain error must not be permanent")
	}
}
