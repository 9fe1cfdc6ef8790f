package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/go-insurance-api/internal/domain"
)

// PendingTicketRepo is the staging store for tickets awaiting email
// confirmation. Records are write-once: there is no update operation, only
// Put, Get and Delete. The table carries a TTL index on expires_at.
type PendingTicketRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewPendingTicketRepo(client *dynamodb.Client, tableName string) *PendingTicketRepo {
	return &PendingTicketRepo{client: client, tableName: tableName}
}

func (r *PendingTicketRepo) Put(ctx context.Context, p *domain.PendingTicket) error {
	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		return fmt.Errorf("marshal pending ticket: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// Get returns domain.ErrNotFound (wrapped) when no record exists, so callers
// can tell an unknown id apart from a storage failure.
func (r *PendingTicketRepo) Get(ctx context.Context, pendingTicketID string) (*domain.PendingTicket, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("pending_ticket_id", pendingTicketID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("pending ticket not found: %w", domain.ErrNotFound)
	}
	var p domain.PendingTicket
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Delete is idempotent: deleting a record that no longer exists is not an error.
func (r *PendingTicketRepo) Delete(ctx context.Context, pendingTicketID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("pending_ticket_id", pendingTicketID),
	})
	return err
}
