// Package chatbackend forwards utterances the scheduling interview does not
// own to the general-purpose chat service.
package chatbackend

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// Utterance is one patient message handed to the fallback backend.
type Utterance struct {
	SessionID  string    `json:"session_id"`
	Locale     string    `json:"locale"`
	Text       string    `json:"text"`
	ReceivedAt time.Time `json:"received_at"`
}

// Backend answers or enqueues utterances. An empty reply means the answer
// arrives out of band.
type Backend interface {
	Forward(ctx context.Context, u Utterance) (string, error)
}

// SQSAPI is the slice of the SQS client the backend uses.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSBackend enqueues utterances for the chat worker.
type SQSBackend struct {
	client   SQSAPI
	queueURL string
}

// NewSQSBackend creates a queue wrapper around the provided SQS client.
func NewSQSBackend(client SQSAPI, queueURL string) *SQSBackend {
	if client == nil {
		panic("chatbackend: SQS client cannot be nil")
	}
	if queueURL == "" {
		panic("chatbackend: SQS queueURL cannot be empty")
	}
	return &SQSBackend{client: client, queueURL: queueURL}
}

func (b *SQSBackend) Forward(ctx context.Context, u Utterance) (string, error) {
	if u.ReceivedAt.IsZero() {
		u.ReceivedAt = time.Now().UTC()
	}
	body, err := json.Marshal(u)
	if err != nil {
		return "", fmt.Errorf("chatbackend: marshal utterance: %w", err)
	}
	_, err = b.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(b.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"session_id": {DataType: aws.String("String"), StringValue: aws.String(u.SessionID)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chatbackend: failed to send SQS message: %w", err)
	}
	return "", nil
}

// StaticBackend answers every utterance with the same reply.
type StaticBackend struct {
	Reply string
}

func (b StaticBackend) Forward(ctx context.Context, u Utterance) (string, error) {
	return b.Reply, nil
}

var (
	_ Backend = (*SQSBackend)(nil)
	_ Backend = StaticBackend{}
)
