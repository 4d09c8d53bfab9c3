package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/hupe1980/kcluster/codec"
	"github.com/hupe1980/kcluster/registry"
)

const (
	attrKey       = "run_key"
	attrObjective = "objective"
	attrRecord    = "record"

	conditionBetter = "attribute_not_exists(" + attrKey + ") OR " + attrObjective + " > :objective"
)

// Client is the subset of the DynamoDB API used by the registry.
type Client interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

// Registry implements registry.Registry backed by a DynamoDB table.
type Registry struct {
	client Client
	table  string
	codec  codec.Codec
}

// Option configures a Registry.
type Option func(*Registry)

// WithCodec sets the codec used for the stored record document.
func WithCodec(c codec.Codec) Option {
	return func(r *Registry) { r.codec = c }
}

// New loads the default AWS configuration and returns a registry on table.
func New(ctx context.Context, table string, optFns ...Option) (*Registry, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return NewRegistry(dynamodb.NewFromConfig(cfg), table, optFns...), nil
}

// NewRegistry returns a registry using client.
func NewRegistry(client Client, table string, optFns ...Option) *Registry {
	r := &Registry{client: client, table: table, codec: codec.Default}
	for _, fn := range optFns {
		fn(r)
	}
	return r
}

// Best implements registry.Registry.
func (r *Registry) Best(ctx context.Context, key registry.Key) (*registry.Record, error) {
	resp, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			attrKey: &types.AttributeValueMemberS{Value: key.String()},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get run from DynamoDB: %w", err)
	}
	if len(resp.Item) == 0 {
		return nil, registry.ErrNotFound
	}

	doc, ok := resp.Item[attrRecord].(*types.AttributeValueMemberB)
	if !ok {
		return nil, fmt.Errorf("%w: invalid %s attribute in DynamoDB", registry.ErrInvalidRecord, attrRecord)
	}
	return registry.Decode(doc.Value)
}

// Submit implements registry.Registry. A failed condition means the stored
// run is at least as good and is not an error.
func (r *Registry) Submit(ctx context.Context, rec *registry.Record) (bool, error) {
	if err := rec.Validate(); err != nil {
		return false, err
	}

	doc, err := registry.Encode(r.codec, rec)
	if err != nil {
		return false, err
	}
	objective := formatNumber(rec.Objective)

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item: map[string]types.AttributeValue{
			attrKey:       &types.AttributeValueMemberS{Value: rec.Key.String()},
			attrObjective: &types.AttributeValueMemberN{Value: objective},
			attrRecord:    &types.AttributeValueMemberB{Value: doc},
		},
		ConditionExpression: aws.String(conditionBetter),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":objective": &types.AttributeValueMemberN{Value: objective},
		},
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return false, nil
		}
		return false, fmt.Errorf("failed to put run to DynamoDB: %w", err)
	}
	return true, nil
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
