package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/event-reminder-api/internal/domain"
)

// transactLimit is the DynamoDB TransactWriteItems hard cap.
const transactLimit = 100

// ReminderRepo provides typed DynamoDB operations for the reminders table.
type ReminderRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewReminderRepo(client *dynamodb.Client, tableName string) *ReminderRepo {
	return &ReminderRepo{client: client, tableName: tableName}
}

// BulkPut writes all reminders in a single transaction so a seeding call is
// all-or-nothing. A batch larger than the transact cap is rejected rather
// than silently split, to keep that guarantee.
func (r *ReminderRepo) BulkPut(ctx context.Context, reminders []domain.ReminderRecord) error {
	if len(reminders) == 0 {
		return nil
	}
	if len(reminders) > transactLimit {
		return fmt.Errorf("reminder batch of %d exceeds transact limit of %d: %w",
			len(reminders), transactLimit, domain.ErrBadRequest)
	}
	items := make([]types.TransactWriteItem, 0, len(reminders))
	for i := range reminders {
		// send_at participates in a string range condition, so it is stored
		// second-truncated UTC.
		reminders[i].SendAt = storeTime(reminders[i].SendAt)
		reminders[i].CreatedAt = storeTime(reminders[i].CreatedAt)
		item, err := attributevalue.MarshalMap(&reminders[i])
		if err != nil {
			return fmt.Errorf("marshal reminder: %w", err)
		}
		items = append(items, types.TransactWriteItem{
			Put: &types.Put{
				TableName: aws.String(r.tableName),
				Item:      item,
			},
		})
	}
	_, err := r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})
	return err
}

func (r *ReminderRepo) Get(ctx context.Context, reminderID string) (*domain.ReminderRecord, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("reminder_id", reminderID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("reminder not found: %w", domain.ErrNotFound)
	}
	var rec domain.ReminderRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// QueryDue returns up to limit pending reminders with send_at <= now,
// via the status-send_at GSI. No ordering guarantee beyond eligibility.
func (r *ReminderRepo) QueryDue(ctx context.Context, now time.Time, limit int32) ([]domain.ReminderRecord, error) {
	return r.queryByStatus(ctx, domain.ReminderPending, now, limit)
}

func (r *ReminderRepo) queryByStatus(ctx context.Context, status string, before time.Time, limit int32) ([]domain.ReminderRecord, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("status-send_at-index"),
		KeyConditionExpression: aws.String("#st = :status AND send_at <= :before"),
		ExpressionAttributeNames: map[string]string{
			"#st": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status": &types.AttributeValueMemberS{Value: status},
			":before": &types.AttributeValueMemberS{Value: tsString(before)},
		},
		Limit: aws.Int32(limit),
	})
	if err != nil {
		return nil, err
	}
	var reminders []domain.ReminderRecord
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &reminders); err != nil {
		return nil, err
	}
	return reminders, nil
}

// Claim atomically moves a reminder from pending to processing. Exactly one
// of any number of concurrent callers succeeds; the rest get (false, nil) and
// must skip the record.
func (r *ReminderRepo) Claim(ctx context.Context, reminderID string) (bool, error) {
	ue, err := buildUpdateExpr(map[string]interface{}{
		"status":     domain.ReminderProcessing,
		"updated_at": storeTime(time.Now()),
	})
	if err != nil {
		return false, err
	}
	ue.Names["#st"] = "status"
	ue.Values[":pending"] = &types.AttributeValueMemberS{Value: domain.ReminderPending}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("reminder_id", reminderID),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("#st = :pending"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *ReminderRepo) MarkSent(ctx context.Context, reminderID string, at time.Time) error {
	return r.update(ctx, reminderID, map[string]interface{}{
		"status":  domain.ReminderSent,
		"sent_at": storeTime(at),
	})
}

func (r *ReminderRepo) MarkFailed(ctx context.Context, reminderID, errMsg string, at time.Time) error {
	return r.update(ctx, reminderID, map[string]interface{}{
		"status":     domain.ReminderFailed,
		"error":      errMsg,
		"updated_at": storeTime(at),
	})
}

func (r *ReminderRepo) update(ctx context.Context, reminderID string, updates map[string]interface{}) error {
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("reminder_id", reminderID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

// QueryFinishedBefore returns terminal-status reminders (sent and failed)
// whose send_at is older than cutoff, for the archive export. Reminders are
// never deleted by this service, so the export is copy-only.
func (r *ReminderRepo) QueryFinishedBefore(ctx context.Context, cutoff time.Time, limit int32) ([]domain.ReminderRecord, error) {
	sent, err := r.queryByStatus(ctx, domain.ReminderSent, cutoff, limit)
	if err != nil {
		return nil, err
	}
	failed, err := r.queryByStatus(ctx, domain.ReminderFailed, cutoff, limit)
	if err != nil {
		return nil, err
	}
	return append(sent, failed...), nil
}
