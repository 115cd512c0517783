package dynamostore

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	apperrors "github.com/stoat/Mewton-family-tree/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// fakeDynamo keeps items in memory, keyed by PK.
type fakeDynamo struct {
	mu     sync.Mutex
	items  map[string]map[string]types.AttributeValue
	puts   int
	getErr error

	// putGate, when set, holds every PutItem until it is closed.
	putGate chan struct{}
	// racer, when set, is stored right after the next GetItem misses, as if
	// another instance created the item in between.
	racer   map[string]types.AttributeValue
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{items: make(map[string]map[string]types.AttributeValue)}
}

func pkOf(item map[string]types.AttributeValue) string {
	return item["PK"].(*types.AttributeValueMemberS).Value
}

func (f *fakeDynamo) GetItem(ctx context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	item := f.items[pkOf(in.Key)]
	if item == nil && f.racer != nil {
		f.items[pkOf(f.racer)] = f.racer
		f.racer = nil
	}
	return &dynamodb.GetItemOutput{Item: item}, nil
}

func (f *fakeDynamo) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	gate := f.putGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if in.ConditionExpression != nil && f.items[pkOf(in.Item)] != nil {
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
	}
	f.items[pkOf(in.Item)] = in.Item
	f.puts++
	return &dynamodb.PutItemOutput{}, nil
}

func TestOpenInitializesEmptyTree(t *testing.T) {
	fake := newFakeDynamo()
	s, err := Open(context.Background(), fake, Options{TableName: "trees"}, zaptest.NewLogger(t), nil)
	require.NoError(t, err)

	doc, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `{"people":[],"relationships":[],"meta":{"title":"Family Tree"}}`, string(doc))
	assert.Equal(t, 1, fake.puts)
	assert.Contains(t, fake.items, "TREE#default")
}

func TestOpenUsesSeed(t *testing.T) {
	fake := newFakeDynamo()
	seed := []byte(`{"people":[],"relationships":[],"meta":{"title":"Seeded"}}`)
	s, err := Open(context.Background(), fake, Options{TableName: "trees", TreeName: "smith", Seed: seed}, zaptest.NewLogger(t), nil)
	require.NoError(t, err)

	doc, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, string(seed), string(doc))
	assert.Contains(t, fake.items, "TREE#smith")
}

func TestOpenUnavailable(t *testing.T) {
	fake := newFakeDynamo()
	fake.getErr = errors.New("no route to host")

	_, err := Open(context.Background(), fake, Options{TableName: "trees"}, zaptest.NewLogger(t), nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsStorageUnavailable(err))
}

func TestSaveReplacesDocument(t *testing.T) {
	fake := newFakeDynamo()
	ctx := context.Background()
	s, err := Open(ctx, fake, Options{TableName: "trees"}, zaptest.NewLogger(t), nil)
	require.NoError(t, err)

	doc := json.RawMessage(`{"people":[{"id":"p1"}],"relationships":[],"meta":{"title":"T"}}`)
	require.NoError(t, s.Save(ctx, doc))
	require.NoError(t, s.Save(ctx, doc))
	require.NoError(t, s.Close(ctx))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, string(doc), string(got))
	assert.Len(t, fake.items, 1)
}

func TestLoadSeesPendingSave(t *testing.T) {
	fake := newFakeDynamo()
	ctx := context.Background()
	s, err := Open(ctx, fake, Options{TableName: "trees"}, zaptest.NewLogger(t), nil)
	require.NoError(t, err)

	gate := make(chan struct{})
	fake.mu.Lock()
	fake.putGate = gate
	fake.mu.Unlock()

	doc := json.RawMessage(`{"people":[],"relationships":[],"meta":{"title":"Pending"}}`)
	require.NoError(t, s.Save(ctx, doc))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, string(doc), string(got))

	close(gate)
	require.NoError(t, s.Flush(ctx))
	assert.Equal(t, 2, fake.puts)
	require.NoError(t, s.Close(ctx))
}

func TestOpenKeepsConcurrentlyCreatedItem(t *testing.T) {
	fake := newFakeDynamo()
	fake.racer = map[string]types.AttributeValue{
		"PK":       &types.AttributeValueMemberS{Value: "TREE#default"},
		"SK":       &types.AttributeValueMemberS{Value: "DOCUMENT"},
		"Document": &types.AttributeValueMemberS{Value: `{"people":[],"relationships":[],"meta":{"title":"First"}}`},
	}

	s, err := Open(context.Background(), fake, Options{TableName: "trees"}, zaptest.NewLogger(t), nil)
	require.NoError(t, err)

	doc, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `{"people":[],"relationships":[],"meta":{"title":"First"}}`, string(doc))
	assert.Equal(t, 0, fake.puts)
}
