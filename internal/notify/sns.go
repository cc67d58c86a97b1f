package notify

import (
	"context"
	"errors"
	"fmt"

	"bachatlist/internal/lib/text"
	"bachatlist/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// SNSPublisher is the part of the SNS client the sender uses.
type SNSPublisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNS publishes notifications to the topic ARN stored in the channel target.
type SNS struct {
	client SNSPublisher
}

func NewSNS(client SNSPublisher) *SNS {
	return &SNS{client: client}
}

// NewSNSFromRegion loads the default AWS configuration for region.
func NewSNSFromRegion(ctx context.Context, region string) (*SNS, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return NewSNS(sns.NewFromConfig(cfg)), nil
}

// Send publishes msg to the channel's topic ARN.
func (s *SNS) Send(ctx context.Context, ch models.Channel, msg Message) error {
	const op = "notify.SNS.Send"

	if ch.Target == "" {
		return fmt.Errorf("%s: %w", op, errors.New("topic arn is not configured"))
	}

	input := &sns.PublishInput{
		TopicArn: aws.String(ch.Target),
		Message:  aws.String(msg.Text),
	}
	if msg.Subject != "" {
		input.Subject = aws.String(text.Truncate(msg.Subject, 100))
	}

	if _, err := s.client.Publish(ctx, input); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
