// Package mainconfig loads the AWS configuration shared by the scheduler
// binaries.
package mainconfig

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	appconfig "github.com/wolfman30/patient-scheduler/internal/config"
)

// OverriddenServices are the AWS services sent to AWS_ENDPOINT_OVERRIDE:
// the fallback chat queue and the confirmation email sender.
var OverriddenServices = []string{sqs.ServiceID, sesv2.ServiceID}

// LoadAWSConfig builds the SDK config for the SQS chat fallback and SES
// email. Static keys are used only when both halves are set.
func LoadAWSConfig(ctx context.Context, cfg *appconfig.Config) (aws.Config, error) {
	if cfg == nil {
		return aws.Config{}, errors.New("mainconfig: config is required")
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.AWSRegion)}
	if key, secret := strings.TrimSpace(cfg.AWSAccessKeyID), strings.TrimSpace(cfg.AWSSecretAccessKey); key != "" && secret != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(key, secret, "")))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("mainconfig: load aws config: %w", err)
	}
	if endpoint := strings.TrimSpace(cfg.AWSEndpointOverride); endpoint != "" {
		awsCfg.EndpointResolverWithOptions = overrideResolver(endpoint, cfg.AWSRegion)
	}
	return awsCfg, nil
}

// overrideResolver points OverriddenServices at endpoint, usually LocalStack.
// Anything else reports EndpointNotFoundError so the SDK default applies.
func overrideResolver(endpoint, region string) aws.EndpointResolverWithOptions {
	return aws.EndpointResolverWithOptionsFunc(func(service, _ string, _ ...interface{}) (aws.Endpoint, error) {
		for _, id := range OverriddenServices {
			if service == id {
				return aws.Endpoint{URL: endpoint, PartitionID: "aws", SigningRegion: region}, nil
			}
		}
		return aws.Endpoint{}, &aws.EndpointNotFoundError{}
	})
}
