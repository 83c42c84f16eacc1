package iot

import (
	"context"
	"time"

	"github.com/deaffx/mottu-yard-devops/internal/config"
	"github.com/deaffx/mottu-yard-devops/internal/service"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"go.uber.org/zap"
)

type SQSConsumer struct {
	sqsClient   *sqs.Client
	queueURL    string
	gateService *service.GateService
	log         *zap.SugaredLogger
}

func NewSQSConsumer(client *sqs.Client, cfg *config.Config, gateService *service.GateService, log *zap.SugaredLogger) *SQSConsumer {
	return &SQSConsumer{
		sqsClient:   client,
		queueURL:    cfg.SQSGateQueueURL,
		gateService: gateService,
		log:         log,
	}
}

// Start long-polls the gate event queue until the context is cancelled.
// Messages are deleted only after successful processing; failures are left
// for redelivery after the visibility timeout.
func (c *SQSConsumer) Start(ctx context.Context) {
	c.log.Infow("sqs consumer listening", "queue", c.queueURL)
	for {
		select {
		case <-ctx.Done():
			c.log.Info("sqs consumer stopping: context cancelled")
			return
		default:
			receiveInput := &sqs.ReceiveMessageInput{
				QueueUrl:            &c.queueURL,
				MaxNumberOfMessages: 10,
				WaitTimeSeconds:     20,
				VisibilityTimeout:   60,
			}

			result, err := c.sqsClient.ReceiveMessage(ctx, receiveInput)
			if err != nil {
				c.log.Errorw("receiving sqs messages", "error", err)
				select {
				case <-time.After(5 * time.Second):
				case <-ctx.Done():
					return
				}
				continue
			}

			for _, message := range result.Messages {
				if message.Body == nil {
					c.deleteMessage(ctx, message.ReceiptHandle)
					continue
				}

				if err := c.gateService.HandleGateEvent(ctx, *message.Body); err != nil {
					c.log.Errorw("processing gate event, leaving for redelivery",
						"message_id", awsString(message.MessageId), "error", err)
					continue
				}
				c.deleteMessage(ctx, message.ReceiptHandle)
			}
		}
	}
}

func (c *SQSConsumer) deleteMessage(ctx context.Context, receiptHandle *string) {
	if receiptHandle == nil {
		return
	}
	_, err := c.sqsClient.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      &c.queueURL,
		ReceiptHandle: receiptHandle,
	})
	if err != nil {
		c.log.Errorw("deleting sqs message", "error", err)
	}
}

func awsString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
