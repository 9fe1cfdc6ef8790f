package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-insurance-api/internal/domain"
)

// PolicyRepo provides typed DynamoDB operations for the policies table.
type PolicyRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewPolicyRepo(client *dynamodb.Client, tableName string) *PolicyRepo {
	return &PolicyRepo{client: client, tableName: tableName}
}

func (r *PolicyRepo) Put(ctx context.Context, p *domain.Policy) error {
	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		return fmt.Errorf("marshal policy: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *PolicyRepo) Get(ctx context.Context, policyID string) (*domain.Policy, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("policy_id", policyID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("policy not found: %w", domain.ErrNotFound)
	}
	var p domain.Policy
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns all enabled policies.
func (r *PolicyRepo) List(ctx context.Context) ([]domain.Policy, error) {
	out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
		TableName:        aws.String(r.tableName),
		FilterExpression: aws.String("#e = :t"),
		ExpressionAttributeNames: map[string]string{
			"#e": fieldEnable,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t": &types.AttributeValueMemberBOOL{Value: true},
		},
	})
	if err != nil {
		return nil, err
	}
	var policies []domain.Policy
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &policies); err != nil {
		return nil, err
	}
	return policies, nil
}

// ListByCreator queries the created_by GSI for a producer's own policies.
func (r *PolicyRepo) ListByCreator(ctx context.Context, userID string) ([]domain.Policy, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("created_by-index"),
		KeyConditionExpression: aws.String("created_by = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
	})
	if err != nil {
		return nil, err
	}
	var policies []domain.Policy
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &policies); err != nil {
		return nil, err
	}
	return policies, nil
}

func (r *PolicyRepo) Update(ctx context.Context, policyID string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("policy_id", policyID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

func (r *PolicyRepo) SoftDelete(ctx context.Context, policyID string) error {
	return r.Update(ctx, policyID, map[string]interface{}{fieldEnable: false})
}
