package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/nebula-forge-api/internal/domain"
)

const (
	attrEmail     = "email"
	attrVersion   = "version"
	attrExpiresAt = "expires_at_ms"
	attrPurgeAt   = "purge_at"
)

// API is the subset of *dynamodb.Client used by PendingRepo.
type API interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// pendingItem is the stored shape. PurgeAt is the DynamoDB TTL attribute
// (Unix seconds); ExpiresAtMs (Unix millis) backs the sweep filter.
type pendingItem struct {
	Email        string `dynamodbav:"email"`
	Name         string `dynamodbav:"name"`
	PasswordHash string `dynamodbav:"password_hash"`
	Code         string `dynamodbav:"code"`
	Version      string `dynamodbav:"version"`
	CreatedAt    int64  `dynamodbav:"created_at"`
	ExpiresAtMs  int64  `dynamodbav:"expires_at_ms"`
	PurgeAt      int64  `dynamodbav:"purge_at"`
}

// PendingRepo manages pending registrations.
// PK: email
type PendingRepo struct {
	client    API
	tableName string
	retention time.Duration
}

func NewPendingRepo(client API, tableName string, retention time.Duration) *PendingRepo {
	return &PendingRepo{client: client, tableName: tableName, retention: retention}
}

func (r *PendingRepo) Put(ctx context.Context, p *domain.PendingRegistration) error {
	item, err := attributevalue.MarshalMap(pendingItem{
		Email:        p.Email,
		Name:         p.Name,
		PasswordHash: p.PasswordHash,
		Code:         p.Code,
		Version:      p.Version,
		CreatedAt:    p.CreatedAt.UnixMilli(),
		ExpiresAtMs:  p.ExpiresAt.UnixMilli(),
		PurgeAt:      p.ExpiresAt.Add(r.retention).Unix(),
	})
	if err != nil {
		return fmt.Errorf("marshal pending registration: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *PendingRepo) Get(ctx context.Context, email string) (*domain.PendingRegistration, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey(attrEmail, email),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("pending registration not found: %w", domain.ErrNotFound)
	}
	var it pendingItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, fmt.Errorf("unmarshal pending registration: %w", err)
	}
	return &domain.PendingRegistration{
		Email:        it.Email,
		Name:         it.Name,
		PasswordHash: it.PasswordHash,
		Code:         it.Code,
		Version:      it.Version,
		CreatedAt:    time.UnixMilli(it.CreatedAt).UTC(),
		ExpiresAt:    time.UnixMilli(it.ExpiresAtMs).UTC(),
	}, nil
}

// Delete removes the item only if its version still matches.
func (r *PendingRepo) Delete(ctx context.Context, email, version string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                           aws.String(r.tableName),
		Key:                                 strKey(attrEmail, email),
		ConditionExpression:                 aws.String("#v = :v"),
		ExpressionAttributeNames:            map[string]string{"#v": attrVersion},
		ExpressionAttributeValues:           map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: version}},
		ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
	})
	if failed, existed := conditionFailed(err); failed {
		if existed {
			return fmt.Errorf("pending registration superseded: %w", domain.ErrConflict)
		}
		return fmt.Errorf("pending registration not found: %w", domain.ErrNotFound)
	}
	return err
}

// SweepExpired scans for items past expiry and deletes each one by version.
// DynamoDB TTL eventually removes them too; the sweep makes it prompt.
func (r *PendingRepo) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	p := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName:                aws.String(r.tableName),
		FilterExpression:         aws.String("#x < :now"),
		ProjectionExpression:     aws.String("#e, #v"),
		ExpressionAttributeNames: map[string]string{"#x": attrExpiresAt, "#e": attrEmail, "#v": attrVersion},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":now": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", now.UnixMilli())},
		},
	})
	n := 0
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return n, fmt.Errorf("scan pending registrations: %w", err)
		}
		var items []pendingItem
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return n, fmt.Errorf("unmarshal scan page: %w", err)
		}
		for _, it := range items {
			if err := r.Delete(ctx, it.Email, it.Version); err == nil {
				n++
			}
		}
	}
	return n, nil
}
