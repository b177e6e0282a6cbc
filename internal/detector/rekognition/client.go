package rekognition

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
)

// Client wraps the AWS Rekognition client
type Client struct {
	rekognition *rekognition.Client
	config      Config
}

// NewClient creates a new Rekognition client with the provided
// configuration. It uses the AWS default credential chain to authenticate.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &Client{
		rekognition: rekognition.NewFromConfig(awsCfg),
		config:      cfg,
	}, nil
}

// DetectLabels calls the Rekognition DetectLabels API and returns the raw
// labels. The confidence floor is passed through as MinConfidence (AWS
// works in percent).
func (c *Client) DetectLabels(ctx context.Context, image []byte) ([]types.Label, error) {
	input := &rekognition.DetectLabelsInput{
		Image: &types.Image{
			Bytes: image,
		},
		MinConfidence: aws.Float32(float32(c.config.MinConfidence * 100)),
	}

	out, err := c.rekognition.DetectLabels(ctx, input)
	if err != nil {
		return nil, mapAPIError(err)
	}

	return out.Labels, nil
}
