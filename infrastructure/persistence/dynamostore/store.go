// Package dynamostore keeps the tree document as one DynamoDB item, for
// deployments without a writable disk such as Lambda.
package dynamostore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/stoat/Mewton-family-tree/application/ports"
	"github.com/stoat/Mewton-family-tree/domain/tree"
	"github.com/stoat/Mewton-family-tree/infrastructure/persistence"
	apperrors "github.com/stoat/Mewton-family-tree/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"
)

// Backend names this store in logs and metrics.
const Backend = "dynamodb"

// API is the subset of the DynamoDB client the store uses.
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// treeItem represents the DynamoDB item structure for a tree
type treeItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`
	Document   string `dynamodbav:"Document"`
	UpdatedAt  string `dynamodbav:"UpdatedAt"`
}

// Store implements ports.TreeStore using DynamoDB.
type Store struct {
	client    API
	tableName string
	treeName  string
	seed      []byte
	logger    *zap.Logger
	bg        *persistence.Background
	now       func() time.Time

	// latest is served by Load while a write of it is still pending.
	mu     sync.Mutex
	latest []byte
}

var _ ports.TreeStore = (*Store)(nil)

// Options configures the item the document is kept in.
type Options struct {
	TableName string
	TreeName  string
	// Seed is stored when the item does not exist yet. Nil means the empty tree.
	Seed []byte
}

// Open checks that the table is reachable and initializes the item.
func Open(ctx context.Context, client API, opts Options, logger *zap.Logger, observer ports.StoreObserver) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.TreeName == "" {
		opts.TreeName = "default"
	}
	s := &Store{
		client:    client,
		tableName: opts.TableName,
		treeName:  opts.TreeName,
		seed:      opts.Seed,
		logger:    logger,
		now:       time.Now,
	}
	s.bg = persistence.NewBackground(Backend, s.put, logger, observer)

	if _, err := s.Load(ctx); err != nil {
		return nil, apperrors.NewStorageUnavailableError(s.tableName, err)
	}
	logger.Info("DynamoDB store ready",
		zap.String("table", s.tableName),
		zap.String("PK", s.pk()),
	)
	return s, nil
}

func (s *Store) pk() string {
	return fmt.Sprintf("TREE#%s", s.treeName)
}

func (s *Store) key() map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: s.pk()},
		"SK": &types.AttributeValueMemberS{Value: "DOCUMENT"},
	}
}

// Load implements ports.TreeStore.
func (s *Store) Load(ctx context.Context) (json.RawMessage, error) {
	if s.bg.Pending() > 0 {
		s.mu.Lock()
		latest := s.latest
		s.mu.Unlock()
		if latest != nil {
			return json.RawMessage(append([]byte(nil), latest...)), nil
		}
	}

	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.tableName),
		Key:            s.key(),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get tree: %w", err)
	}

	if result.Item == nil {
		return s.initialize(ctx)
	}

	var item treeItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tree: %w", err)
	}
	return json.RawMessage(item.Document), nil
}

func (s *Store) initialize(ctx context.Context) (json.RawMessage, error) {
	doc := s.seed
	if doc == nil {
		var err error
		if doc, err = tree.Encode(tree.Empty()); err != nil {
			return nil, err
		}
	}

	// Another instance may be initializing the same item; the first one wins.
	cond, err := expression.NewBuilder().
		WithCondition(expression.Name("PK").AttributeNotExists()).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build expression: %w", err)
	}
	err = s.putItem(ctx, doc, func(in *dynamodb.PutItemInput) {
		in.ConditionExpression = cond.Condition()
		in.ExpressionAttributeNames = cond.Names()
	})
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		s.logger.Debug("Tree item created concurrently", zap.String("PK", s.pk()))
		return s.Load(ctx)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("Initialized tree item", zap.String("PK", s.pk()))
	return json.RawMessage(doc), nil
}

// put is the background write: an unconditional replace.
func (s *Store) put(ctx context.Context, doc []byte) error {
	return s.putItem(ctx, doc, nil)
}

func (s *Store) putItem(ctx context.Context, doc []byte, configure func(*dynamodb.PutItemInput)) error {
	item := treeItem{
		PK:         s.pk(),
		SK:         "DOCUMENT",
		EntityType: "TREE",
		Document:   string(doc),
		UpdatedAt:  s.now().UTC().Format(time.RFC3339),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal tree: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      av,
	}
	if configure != nil {
		configure(input)
	}

	if _, err := s.client.PutItem(ctx, input); err != nil {
		var ae smithy.APIError
		if errors.As(err, &ae) {
			return fmt.Errorf("failed to save tree (%s): %w", ae.ErrorCode(), err)
		}
		return fmt.Errorf("failed to save tree: %w", err)
	}
	return nil
}

// Save implements ports.TreeStore.
func (s *Store) Save(ctx context.Context, doc json.RawMessage) error {
	s.mu.Lock()
	s.latest = append([]byte(nil), doc...)
	s.mu.Unlock()
	return s.bg.Submit(doc)
}

// Flush implements ports.TreeStore.
func (s *Store) Flush(ctx context.Context) error {
	return s.bg.Wait(ctx)
}

// Close implements ports.TreeStore.
func (s *Store) Close(ctx context.Context) error {
	return s.bg.Close(ctx)
}
