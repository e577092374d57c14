package mainconfig

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	appconfig "github.com/wolfman30/coparent-mediator/internal/config"
)

func TestLoadAWSConfigStaticCredentials(t *testing.T) {
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")
	cfg := &appconfig.Config{
		AWSRegion:          "us-west-2",
		AWSAccessKeyID:     "test",
		AWSSecretAccessKey: "secret",
	}

	awsCfg, err := LoadAWSConfig(context.Background(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if awsCfg.Region != "us-west-2" {
		t.Fatalf("expected region us-west-2, got %s", awsCfg.Region)
	}
	creds, err := awsCfg.Credentials.Retrieve(context.Background())
	if err != nil {
		t.Fatalf("unexpected credentials error: %v", err)
	}
	if creds.AccessKeyID != "test" {
		t.Fatalf("expected static credentials, got %q", creds.AccessKeyID)
	}
}

func TestNewBedrockClientEndpointOverride(t *testing.T) {
	cfg := &appconfig.Config{AWSRegion: "us-east-1", AWSEndpointOverride: "http://localhost:4566"}
	client := NewBedrockClient(aws.Config{Region: "us-east-1"}, cfg)
	if client == nil {
		t.Fatalf("expected client")
	}
	if got := client.Options().BaseEndpoint; got == nil || *got != "http://localhost:4566" {
		t.Fatalf("expected endpoint override, got %v", got)
	}
}
