package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"product-inventory-api/internal/config"
	"product-inventory-api/internal/models"
)

// The update expression never changes shape: the attribute name and value are
// always bound through these placeholders.
const (
	updateExpression    = "SET #attr = :value"
	conditionExpression = "attribute_exists(#pk)"
)

// DynamoDBAPI is the subset of the DynamoDB client used by DynamoDBStore
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// DynamoDBStore implements ItemStore on a DynamoDB table keyed by productId
type DynamoDBStore struct {
	client         DynamoDBAPI
	table          string
	consistentRead bool
}

// NewDynamoDBClient builds a DynamoDB client from the default AWS credential chain
func NewDynamoDBClient(ctx context.Context, cfg *config.StoreConfig) (*dynamodb.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}

// NewDynamoDBStore creates a store on table using client
func NewDynamoDBStore(client DynamoDBAPI, table string, consistentRead bool) *DynamoDBStore {
	return &DynamoDBStore{
		client:         client,
		table:          table,
		consistentRead: consistentRead,
	}
}

func keyOf(productID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		models.KeyAttribute: &types.AttributeValueMemberS{Value: productID},
	}
}

// GetItem implements ItemStore.GetItem
func (s *DynamoDBStore) GetItem(ctx context.Context, productID string) (models.Item, error) {
	if productID == "" {
		return nil, NewStorageError("GetItem", productID, ErrInvalidKey)
	}

	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.table),
		Key:            keyOf(productID),
		ConsistentRead: aws.Bool(s.consistentRead),
	})
	if err != nil {
		return nil, NewStorageError("GetItem", productID, err)
	}
	if len(out.Item) == 0 {
		return nil, NewStorageError("GetItem", productID, ErrItemNotFound)
	}

	item, err := unmarshalItem(out.Item)
	if err != nil {
		return nil, NewStorageError("GetItem", productID, err)
	}
	return item, nil
}

// PutItem implements ItemStore.PutItem
func (s *DynamoDBStore) PutItem(ctx context.Context, item models.Item) error {
	productID, ok := item.ProductID()
	if !ok {
		return NewStorageError("PutItem", productID, ErrInvalidKey)
	}

	av, err := marshalItem(item)
	if err != nil {
		return NewStorageError("PutItem", productID, err)
	}

	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      av,
	}); err != nil {
		return NewStorageError("PutItem", productID, err)
	}
	return nil
}

// UpdateAttribute implements ItemStore.UpdateAttribute
func (s *DynamoDBStore) UpdateAttribute(ctx context.Context, productID string, update models.AttributeUpdate) (models.Item, error) {
	if productID == "" {
		return nil, NewStorageError("UpdateAttribute", productID, ErrInvalidKey)
	}
	if err := update.Validate(); err != nil {
		return nil, NewStorageError("UpdateAttribute", productID, ErrInvalidAttribute)
	}

	value, err := marshalValue(update.Value)
	if err != nil {
		return nil, NewStorageError("UpdateAttribute", productID, err)
	}

	out, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(s.table),
		Key:                 keyOf(productID),
		UpdateExpression:    aws.String(updateExpression),
		ConditionExpression: aws.String(conditionExpression),
		ExpressionAttributeNames: map[string]string{
			"#attr": update.Name,
			"#pk":   models.KeyAttribute,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":value": value,
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return nil, NewStorageError("UpdateAttribute", productID, ErrItemNotFound)
		}
		return nil, NewStorageError("UpdateAttribute", productID, err)
	}

	attrs, err := unmarshalItem(out.Attributes)
	if err != nil {
		return nil, NewStorageError("UpdateAttribute", productID, err)
	}
	return attrs, nil
}

// DeleteItem implements ItemStore.DeleteItem
func (s *DynamoDBStore) DeleteItem(ctx context.Context, productID string) (models.Item, error) {
	if productID == "" {
		return nil, NewStorageError("DeleteItem", productID, ErrInvalidKey)
	}

	out, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:    aws.String(s.table),
		Key:          keyOf(productID),
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return nil, NewStorageError("DeleteItem", productID, err)
	}

	old, err := unmarshalItem(out.Attributes)
	if err != nil {
		return nil, NewStorageError("DeleteItem", productID, err)
	}
	return old, nil
}

// Scan implements ItemStore.Scan. The cursor carries the productId of the
// table's LastEvaluatedKey.
func (s *DynamoDBStore) Scan(ctx context.Context, opts *ScanOptions) (*ScanPage, error) {
	input := &dynamodb.ScanInput{
		TableName: aws.String(s.table),
	}
	if opts != nil {
		if opts.Limit > 0 {
			input.Limit = aws.Int32(int32(opts.Limit))
		}
		if opts.StartAfter != "" {
			input.ExclusiveStartKey = keyOf(string(opts.StartAfter))
		}
	}

	out, err := s.client.Scan(ctx, input)
	if err != nil {
		return nil, NewStorageError("Scan", "", err)
	}

	page := &ScanPage{Items: make([]models.Item, 0, len(out.Items))}
	for _, raw := range out.Items {
		item, err := unmarshalItem(raw)
		if err != nil {
			return nil, NewStorageError("Scan", "", err)
		}
		page.Items = append(page.Items, item)
	}

	if len(out.LastEvaluatedKey) > 0 {
		key, ok := out.LastEvaluatedKey[models.KeyAttribute].(*types.AttributeValueMemberS)
		if !ok || key.Value == "" {
			return nil, NewStorageError("Scan", "", ErrInvalidCursor)
		}
		page.Next = Cursor(key.Value)
	}

	return page, nil
}

// Close implements ItemStore.Close. The SDK client holds no resources to release.
func (s *DynamoDBStore) Close() error {
	return nil
}
