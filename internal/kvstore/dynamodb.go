package kvstore

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/Patrick-Hull/MySQLWrapper/internal/core"
)

// DynamoDBAPI is the subset of the DynamoDB client used by the store.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// DynamoDBKVStore implements the core.KVStore interface using AWS DynamoDB.
// Items are stored as {key: S, value: B, ttl: N, created_at: S}; expired
// items are treated as missing even before DynamoDB's TTL sweeper removes them.
type DynamoDBKVStore struct {
	client    DynamoDBAPI
	tableName string
	closed    bool
	now       func() time.Time
}

// NewDynamoDBKVStore creates a new DynamoDB KV store and verifies the table exists.
func NewDynamoDBKVStore(region, tableName, endpoint, accessKeyID, secretAccessKey string) (*DynamoDBKVStore, error) {
	if region == "" {
		return nil, fmt.Errorf("region is required")
	}
	if tableName == "" {
		return nil, fmt.Errorf("table name is required")
	}

	cfg, err := config.LoadDefaultConfig(context.Background(), config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	if accessKeyID != "" && secretAccessKey != "" {
		cfg.Credentials = credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, "")
	}

	var clientOptions []func(*dynamodb.Options)
	if endpoint != "" {
		clientOptions = append(clientOptions, func(o *dynamodb.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		})
	}

	client := dynamodb.NewFromConfig(cfg, clientOptions...)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(tableName)}); err != nil {
		return nil, fmt.Errorf("failed to connect to DynamoDB table %s: %w", tableName, err)
	}

	log.Printf("[DYNAMODB] Connected to table %s in %s", tableName, region)
	return NewDynamoDBKVStoreFromClient(client, tableName), nil
}

// NewDynamoDBKVStoreFromClient wraps an existing client.
func NewDynamoDBKVStoreFromClient(client DynamoDBAPI, tableName string) *DynamoDBKVStore {
	return &DynamoDBKVStore{client: client, tableName: tableName, now: time.Now}
}

func (d *DynamoDBKVStore) itemKey(key string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"key": &types.AttributeValueMemberS{Value: key},
	}
}

func (d *DynamoDBKVStore) expired(item map[string]types.AttributeValue) bool {
	ttlAttr, ok := item["ttl"].(*types.AttributeValueMemberN)
	if !ok {
		return false
	}
	ttl, err := strconv.ParseInt(ttlAttr.Value, 10, 64)
	if err != nil {
		return false
	}
	return d.now().Unix() > ttl
}

// Get retrieves a value by key from the store.
func (d *DynamoDBKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if d.closed {
		return nil, fmt.Errorf("KV store is closed")
	}

	result, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(d.tableName),
		Key:            d.itemKey(key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		log.Printf("[DYNAMODB] ERROR: Failed to get key %s: %v", key, err)
		return nil, fmt.Errorf("failed to get key %s: %w", key, err)
	}

	if result.Item == nil || d.expired(result.Item) {
		log.Printf("[DYNAMODB] Key not found: %s", key)
		return nil, fmt.Errorf("%w: %s", core.ErrKeyNotFound, key)
	}

	valueMember, ok := result.Item["value"].(*types.AttributeValueMemberB)
	if !ok {
		log.Printf("[DYNAMODB] Key %s found but value is not binary", key)
		return nil, fmt.Errorf("invalid value format for key %s", key)
	}

	log.Printf("[DYNAMODB] Retrieved key %s (value size: %d bytes)", key, len(valueMember.Value))
	return valueMember.Value, nil
}

// Set stores a key-value pair with an optional TTL.
func (d *DynamoDBKVStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if d.closed {
		return fmt.Errorf("KV store is closed")
	}

	now := d.now()
	item := d.itemKey(key)
	item["value"] = &types.AttributeValueMemberB{Value: value}
	item["created_at"] = &types.AttributeValueMemberS{Value: now.UTC().Format(time.RFC3339)}
	if ttl > 0 {
		item["ttl"] = &types.AttributeValueMemberN{Value: strconv.FormatInt(now.Add(ttl).Unix(), 10)}
	}

	if _, err := d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.tableName),
		Item:      item,
	}); err != nil {
		log.Printf("[DYNAMODB] ERROR: Failed to set key %s: %v", key, err)
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}

	log.Printf("[DYNAMODB] Stored key %s (value size: %d bytes, TTL: %v)", key, len(value), ttl)
	return nil
}

// Delete removes a key from the store.
func (d *DynamoDBKVStore) Delete(ctx context.Context, key string) error {
	if d.closed {
		return fmt.Errorf("KV store is closed")
	}

	if _, err := d.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(d.tableName),
		Key:       d.itemKey(key),
	}); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

// Exists checks if a live (non-expired) item exists for key.
func (d *DynamoDBKVStore) Exists(ctx context.Context, key string) (bool, error) {
	if d.closed {
		return false, fmt.Errorf("KV store is closed")
	}

	result, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:                aws.String(d.tableName),
		Key:                      d.itemKey(key),
		ProjectionExpression:     aws.String("#k, #t"),
		ExpressionAttributeNames: map[string]string{"#k": "key", "#t": "ttl"},
		ConsistentRead:           aws.Bool(true),
	})
	if err != nil {
		return false, fmt.Errorf("failed to check existence of key %s: %w", key, err)
	}

	return result.Item != nil && !d.expired(result.Item), nil
}

// Close marks the store closed. The DynamoDB client holds no connection to release.
func (d *DynamoDBKVStore) Close() error {
	d.closed = true
	return nil
}

// DynamoDBKVStoreFactory implements the KVStoreFactory interface for DynamoDB.
type DynamoDBKVStoreFactory struct{}

// Type returns the type identifier for this factory.
func (f *DynamoDBKVStoreFactory) Type() string {
	return "dynamodb"
}

// Validate validates the DynamoDB-specific configuration.
func (f *DynamoDBKVStoreFactory) Validate(config KVStoreConfig) error {
	if config.Type != "dynamodb" {
		return fmt.Errorf("invalid type for DynamoDB factory: %s", config.Type)
	}
	if config.Region == "" {
		return fmt.Errorf("region is required for DynamoDB")
	}
	if config.TableName == "" {
		return fmt.Errorf("table_name is required for DynamoDB")
	}
	if (config.AccessKeyID == "") != (config.SecretAccessKey == "") {
		return fmt.Errorf("access_key_id and secret_access_key must be set together")
	}
	return nil
}

// Create creates a new DynamoDB KV store instance based on the provided configuration.
func (f *DynamoDBKVStoreFactory) Create(config KVStoreConfig) (core.KVStore, error) {
	dynamoStore, err := NewDynamoDBKVStore(
		config.Region,
		config.TableName,
		config.Endpoint,
		config.AccessKeyID,
		config.SecretAccessKey,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create DynamoDB KV store: %w", err)
	}
	return dynamoStore, nil
}

func init() {
	RegisterFactory(&DynamoDBKVStoreFactory{})
}
