package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// SES emails terminal order notifications to a configured recipient (the
// operations inbox). Per-customer delivery happens through the Kafka sink;
// this one exists so payment failures are seen even when the push pipeline
// is down.
type SES struct {
	client    *sesv2.Client
	sender    string
	recipient string
}

func NewSES(client *sesv2.Client, sender, recipient string) *SES {
	return &SES{client: client, sender: sender, recipient: recipient}
}

func (s *SES) Notify(ctx context.Context, n Notification) error {
	subject := fmt.Sprintf("[order %s] %s", n.OrderID, n.Title)
	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.sender),
		Destination: &types.Destination{
			ToAddresses: []string{s.recipient},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject)},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(n.Message)},
				},
			},
		},
	})
	return err
}
