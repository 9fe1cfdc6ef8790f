package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-insurance-api/internal/domain"
)

// PurchaseRepo provides typed DynamoDB operations for the purchases table.
type PurchaseRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewPurchaseRepo(client *dynamodb.Client, tableName string) *PurchaseRepo {
	return &PurchaseRepo{client: client, tableName: tableName}
}

func (r *PurchaseRepo) Put(ctx context.Context, p *domain.Purchase) error {
	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		return fmt.Errorf("marshal purchase: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *PurchaseRepo) Get(ctx context.Context, purchaseID string) (*domain.Purchase, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("purchase_id", purchaseID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("purchase not found: %w", domain.ErrNotFound)
	}
	var p domain.Purchase
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByUser queries the user_id GSI for a consumer's purchase history.
func (r *PurchaseRepo) ListByUser(ctx context.Context, userID string) ([]domain.Purchase, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("user_id-index"),
		KeyConditionExpression: aws.String("user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
	})
	if err != nil {
		return nil, err
	}
	var purchases []domain.Purchase
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &purchases); err != nil {
		return nil, err
	}
	return purchases, nil
}
