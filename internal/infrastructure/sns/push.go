package sns

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/event-reminder-api/internal/config"
	"github.com/event-reminder-api/internal/domain"
)

// PushSender is the messaging-gateway contract: one multicast request in,
// per-token results out. No retries happen at this layer.
type PushSender interface {
	SendMulticast(ctx context.Context, tokens []string, title, body string, data map[string]string) (*domain.PushResult, error)
}

type sender struct {
	client      *sns.Client
	platformARN string
}

// NewSender creates the SNS-backed push gateway. Device tokens are resolved
// to platform endpoints under cfg.SNSPlatformARN at send time.
func NewSender(cfg *config.Config) (PushSender, error) {
	if cfg.SNSPlatformARN == "" {
		return nil, fmt.Errorf("SNS_PLATFORM_APPLICATION_ARN is not set")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AWSRegion),
	}
	if cfg.AWSAccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, err
	}

	clientOpts := []func(*sns.Options){}
	if cfg.AWSEndpointURL != "" {
		clientOpts = append(clientOpts, func(o *sns.Options) {
			o.BaseEndpoint = aws.String(cfg.AWSEndpointURL)
		})
	}

	return &sender{
		client:      sns.NewFromConfig(awsCfg, clientOpts...),
		platformARN: cfg.SNSPlatformARN,
	}, nil
}

// SendMulticast publishes the message to every token's platform endpoint and
// aggregates per-token outcomes. A token that fails does not stop the rest.
func (s *sender) SendMulticast(ctx context.Context, tokens []string, title, body string, data map[string]string) (*domain.PushResult, error) {
	result := &domain.PushResult{Responses: make([]domain.TokenResult, 0, len(tokens))}
	if len(tokens) == 0 {
		return result, nil
	}

	message, err := buildMessage(title, body, data)
	if err != nil {
		return nil, fmt.Errorf("build push message: %w", err)
	}

	for _, token := range tokens {
		if err := s.publishToToken(ctx, token, message); err != nil {
			result.FailureCount++
			result.Responses = append(result.Responses, domain.TokenResult{
				Token: token, Success: false, Error: err.Error(),
			})
			continue
		}
		result.SuccessCount++
		result.Responses = append(result.Responses, domain.TokenResult{
			Token: token, Success: true,
		})
	}
	return result, nil
}

func (s *sender) publishToToken(ctx context.Context, token, message string) error {
	// CreatePlatformEndpoint is idempotent for an unchanged token: SNS
	// returns the existing endpoint ARN.
	ep, err := s.client.CreatePlatformEndpoint(ctx, &sns.CreatePlatformEndpointInput{
		PlatformApplicationArn: aws.String(s.platformARN),
		Token:                  aws.String(token),
	})
	if err != nil {
		return fmt.Errorf("create platform endpoint: %w", err)
	}
	_, err = s.client.Publish(ctx, &sns.PublishInput{
		TargetArn:        ep.EndpointArn,
		Message:          aws.String(message),
		MessageStructure: aws.String("json"),
	})
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// buildMessage renders the platform-specific JSON envelope SNS expects for
// MessageStructure=json. GCM and APNS both receive title/body plus the
// string-typed metadata.
func buildMessage(title, body string, data map[string]string) (string, error) {
	gcm, err := json.Marshal(map[string]interface{}{
		"notification": map[string]string{"title": title, "body": body},
		"data":         data,
	})
	if err != nil {
		return "", err
	}
	apns, err := json.Marshal(map[string]interface{}{
		"aps": map[string]interface{}{
			"alert": map[string]string{"title": title, "body": body},
		},
		"data": data,
	})
	if err != nil {
		return "", err
	}
	envelope, err := json.Marshal(map[string]string{
		"default": body,
		"GCM":     string(gcm),
		"APNS":    string(apns),
	})
	if err != nil {
		return "", err
	}
	return string(envelope), nil
}
