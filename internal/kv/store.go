// Package kv implements a generic key-value document store over DynamoDB.
// Every entity is one item keyed by (kind, id) with the entity serialized as a
// JSON document, so the table needs no per-entity schema.
package kv

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dynamotypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	jsoniter "github.com/json-iterator/go"

	"github.com/billforge/billforge/internal/config"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// EntityKind partitions the table. One kind per entity type.
type EntityKind string

const (
	KindCustomer     EntityKind = "customer"
	KindPlan         EntityKind = "subscription_plan"
	KindSubscription EntityKind = "customer_subscription_plan"
	KindInvoice      EntityKind = "invoice"
	KindPayment      EntityKind = "payment"
)

// document is the DynamoDB item layout: partition key = entity kind, sort
// key = entity id, value = the entity as a JSON document.
type document struct {
	PK        string    `dynamodbav:"pk"`
	SK        string    `dynamodbav:"sk"`
	Value     string    `dynamodbav:"value"`
	UpdatedAt time.Time `dynamodbav:"updated_at"`
}

// Store is the generic document store shared by all entity repositories.
type Store struct {
	client    *Client
	tableName string
	logger    *logger.Logger
}

func NewStore(client *Client, cfg *config.Configuration, logger *logger.Logger) *Store {
	return &Store{
		client:    client,
		tableName: cfg.DynamoDB.TableName,
		logger:    logger,
	}
}

// Put upserts the entity under (kind, id).
func (s *Store) Put(ctx context.Context, kind EntityKind, id string, v any) error {
	value, err := json.MarshalToString(v)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to serialize entity").
			Mark(ierr.ErrSystem)
	}

	item, err := attributevalue.MarshalMap(document{
		PK:        string(kind),
		SK:        id,
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to serialize entity").
			Mark(ierr.ErrSystem)
	}

	_, err = s.client.db.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		s.logger.Errorw("failed to put item", "kind", kind, "id", id, "error", err)
		return ierr.WithError(err).
			WithHint("Failed to write entity").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

// Get loads the entity under (kind, id) into out. Returns ErrNotFound when no
// item exists.
func (s *Store) Get(ctx context.Context, kind EntityKind, id string, out any) error {
	resp, err := s.client.db.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key:       keyOf(kind, id),
	})
	if err != nil {
		s.logger.Errorw("failed to get item", "kind", kind, "id", id, "error", err)
		return ierr.WithError(err).
			WithHint("Failed to read entity").
			Mark(ierr.ErrDatabase)
	}
	if resp.Item == nil {
		return ierr.NewErrorf("%s %s not found", kind, id).
			Mark(ierr.ErrNotFound)
	}

	var doc document
	if err := attributevalue.UnmarshalMap(resp.Item, &doc); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to deserialize entity").
			Mark(ierr.ErrSystem)
	}
	if err := json.UnmarshalFromString(doc.Value, out); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to deserialize entity").
			Mark(ierr.ErrSystem)
	}
	return nil
}

// Delete removes the entity under (kind, id). Deleting a missing item is not
// an error.
func (s *Store) Delete(ctx context.Context, kind EntityKind, id string) error {
	_, err := s.client.db.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key:       keyOf(kind, id),
	})
	if err != nil {
		s.logger.Errorw("failed to delete item", "kind", kind, "id", id, "error", err)
		return ierr.WithError(err).
			WithHint("Failed to delete entity").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

// GetAll returns the raw JSON documents of every entity of the given kind,
// following query pagination to the end.
func (s *Store) GetAll(ctx context.Context, kind EntityKind) ([]string, error) {
	var values []string
	var lastKey map[string]dynamotypes.AttributeValue

	for {
		resp, err := s.client.db.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(s.tableName),
			KeyConditionExpression: aws.String("pk = :pk"),
			ExpressionAttributeValues: map[string]dynamotypes.AttributeValue{
				":pk": &dynamotypes.AttributeValueMemberS{Value: string(kind)},
			},
			ExclusiveStartKey: lastKey,
		})
		if err != nil {
			s.logger.Errorw("failed to query items", "kind", kind, "error", err)
			return nil, ierr.WithError(err).
				WithHint("Failed to list entities").
				Mark(ierr.ErrDatabase)
		}

		for _, item := range resp.Items {
			var doc document
			if err := attributevalue.UnmarshalMap(item, &doc); err != nil {
				return nil, ierr.WithError(err).
					WithHint("Failed to deserialize entity").
					Mark(ierr.ErrSystem)
			}
			values = append(values, doc.Value)
		}

		if resp.LastEvaluatedKey == nil {
			break
		}
		lastKey = resp.LastEvaluatedKey
	}

	return values, nil
}

func keyOf(kind EntityKind, id string) map[string]dynamotypes.AttributeValue {
	return map[string]dynamotypes.AttributeValue{
		"pk": &dynamotypes.AttributeValueMemberS{Value: string(kind)},
		"sk": &dynamotypes.AttributeValueMemberS{Value: id},
	}
}

// GetItem is a typed convenience wrapper over Store.Get.
func GetItem[T any](ctx context.Context, s *Store, kind EntityKind, id string) (*T, error) {
	var out T
	if err := s.Get(ctx, kind, id, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetAllItems decodes every document of the given kind.
func GetAllItems[T any](ctx context.Context, s *Store, kind EntityKind) ([]*T, error) {
	values, err := s.GetAll(ctx, kind)
	if err != nil {
		return nil, err
	}

	items := make([]*T, 0, len(values))
	for _, value := range values {
		var item T
		if err := json.UnmarshalFromString(value, &item); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to deserialize entity").
				Mark(ierr.ErrSystem)
		}
		items = append(items, &item)
	}
	return items, nil
}
