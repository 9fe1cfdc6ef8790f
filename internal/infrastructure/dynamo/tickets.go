package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-insurance-api/internal/domain"
)

// TicketRepo provides typed DynamoDB operations for the tickets table.
type TicketRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewTicketRepo(client *dynamodb.Client, tableName string) *TicketRepo {
	return &TicketRepo{client: client, tableName: tableName}
}

// PutIfAbsent writes the ticket only when no ticket with the same id exists.
// Ticket ids equal the pending-ticket id they were promoted from, so two
// concurrent verifications of the same pending ticket race on this condition
// and exactly one wins; the loser gets domain.ErrConflict.
func (r *TicketRepo) PutIfAbsent(ctx context.Context, t *domain.Ticket) error {
	item, err := attributevalue.MarshalMap(t)
	if err != nil {
		return fmt.Errorf("marshal ticket: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(ticket_id)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("ticket already exists: %w", domain.ErrConflict)
		}
		return err
	}
	return nil
}

func (r *TicketRepo) Get(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("ticket_id", ticketID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("ticket not found: %w", domain.ErrNotFound)
	}
	var t domain.Ticket
	if err := attributevalue.UnmarshalMap(out.Item, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// ListByStatus queries the status GSI. An empty status scans the whole table.
func (r *TicketRepo) ListByStatus(ctx context.Context, status string) ([]domain.Ticket, error) {
	if status == "" {
		out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName: aws.String(r.tableName),
		})
		if err != nil {
			return nil, err
		}
		return unmarshalTickets(out.Items)
	}
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("status-index"),
		KeyConditionExpression: aws.String("#s = :s"),
		ExpressionAttributeNames: map[string]string{
			"#s": fieldStatus,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":s": &types.AttributeValueMemberS{Value: status},
		},
	})
	if err != nil {
		return nil, err
	}
	return unmarshalTickets(out.Items)
}

func (r *TicketRepo) ListByCreator(ctx context.Context, userID string) ([]domain.Ticket, error) {
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
	return unmarshalTickets(out.Items)
}

func (r *TicketRepo) Update(ctx context.Context, ticketID string, updates map[string]interface{}) error {
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("ticket_id", ticketID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

func unmarshalTickets(items []map[string]types.AttributeValue) ([]domain.Ticket, error) {
	var tickets []domain.Ticket
	if err := attributevalue.UnmarshalListOfMaps(items, &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}
