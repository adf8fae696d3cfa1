package kv

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/billforge/billforge/internal/config"
)

// Client wraps the DynamoDB connection backing the document store.
type Client struct {
	db *dynamodb.Client
}

func NewClient(cfg *config.Configuration) (*Client, error) {
	awsCfg, err := awsConfig.LoadDefaultConfig(context.Background(),
		awsConfig.WithRegion(cfg.DynamoDB.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}

	var opts []func(*dynamodb.Options)
	if cfg.DynamoDB.Endpoint != "" {
		// Local development against dynamodb-local
		opts = append(opts, func(o *dynamodb.Options) {
			o.BaseEndpoint = aws.String(cfg.DynamoDB.Endpoint)
		})
	}

	return &Client{
		db: dynamodb.NewFromConfig(awsCfg, opts...),
	}, nil
}

func (c *Client) DB() *dynamodb.Client {
	return c.db
}
