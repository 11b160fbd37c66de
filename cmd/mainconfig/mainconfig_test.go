package mainconfig

import (
	"context"
	"testing"

	appconfig "github.com/wolfman30/patient-scheduler/internal/config"
)

func TestLoadAWSConfigStaticCredentialsAndEndpoint(t *testing.T) {
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")
	cfg := &appconfig.Config{
		AWSRegion:           "ca-central-1",
		AWSAccessKeyID:      "test",
		AWSSecretAccessKey:  "secret",
		AWSEndpointOverride: "http://localhost:4566",
	}

	awsCfg, err := LoadAWSConfig(context.Background(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if awsCfg.Region != "ca-central-1" {
		t.Fatalf("unexpected region %q", awsCfg.Region)
	}
	creds, err := awsCfg.Credentials.Retrieve(context.Background())
	if err != nil {
		t.Fatalf("retrieve credentials: %v", err)
	}
	if creds.AccessKeyID != "test" {
		t.Fatalf("expected static credentials, got %q", creds.AccessKeyID)
	}

	for _, service := range OverriddenServices {
		endpoint, err := awsCfg.EndpointResolverWithOptions.ResolveEndpoint(service, "ca-central-1")
		if err != nil {
			t.Fatalf("%s: resolve endpoint: %v", service, err)
		}
		if endpoint.URL != "http://localhost:4566" {
			t.Fatalf("%s: unexpected endpoint %q", service, endpoint.URL)
		}
	}
	if _, err := awsCfg.EndpointResolverWithOptions.ResolveEndpoint("S3", "ca-central-1"); err == nil {
		t.Fatalf("expected other services to use the default resolver")
	}
}

func TestLoadAWSConfigWithoutOverrideKeepsDefaultResolver(t *testing.T) {
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")
	awsCfg, err := LoadAWSConfig(context.Background(), &appconfig.Config{AWSRegion: "us-east-1", AWSAccessKeyID: "only-key"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if awsCfg.EndpointResolverWithOptions != nil {
		t.Fatalf("expected no endpoint override")
	}

	if _, err := LoadAWSConfig(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil config")
	}
}
