package dynamo

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/event-reminder-api/internal/domain"
)

// AttendanceRepo is a read-only view of the attendances join table.
type AttendanceRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewAttendanceRepo(client *dynamodb.Client, tableName string) *AttendanceRepo {
	return &AttendanceRepo{client: client, tableName: tableName}
}

// ListUIDs returns the uids of every user registered to the event.
// Zero rows is an empty slice, not an error.
func (r *AttendanceRepo) ListUIDs(ctx context.Context, eventID string) ([]string, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("event_id-index"),
		KeyConditionExpression: aws.String("event_id = :eid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":eid": &types.AttributeValueMemberS{Value: eventID},
		},
	})
	if err != nil {
		return nil, err
	}
	var rows []domain.Attendance
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &rows); err != nil {
		return nil, err
	}
	uids := make([]string, 0, len(rows))
	for _, a := range rows {
		if a.UID != "" {
			uids = append(uids, a.UID)
		}
	}
	return uids, nil
}
