package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/event-reminder-api/internal/domain"
)

// batchGetLimit is the DynamoDB BatchGetItem per-request cap.
const batchGetLimit = 100

// UserRepo reads and writes the push-token fields of the users table. The
// rest of the user document is owned by other services, so token writes are
// field-level updates rather than full puts.
type UserRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewUserRepo(client *dynamodb.Client, tableName string) *UserRepo {
	return &UserRepo{client: client, tableName: tableName}
}

func (r *UserRepo) Get(ctx context.Context, uid string) (*domain.User, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("uid", uid),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	var u domain.User
	if err := attributevalue.UnmarshalMap(out.Item, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// PutToken upserts the push token on the user document, creating the document
// if the uid has never been seen.
func (r *UserRepo) PutToken(ctx context.Context, uid, token string) error {
	ue, err := buildUpdateExpr(map[string]interface{}{
		"push_token":       token,
		"token_updated_at": storeTime(time.Now()),
	})
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("uid", uid),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

// TokensFor batch-reads the users for the given uids and returns their push
// tokens in input order. Uids without a stored token are silently skipped;
// duplicate uids yield duplicate tokens, no dedup is applied.
func (r *UserRepo) TokensFor(ctx context.Context, uids []string) ([]string, error) {
	if len(uids) == 0 {
		return nil, nil
	}

	unique := make([]string, 0, len(uids))
	seen := make(map[string]struct{}, len(uids))
	for _, uid := range uids {
		if _, ok := seen[uid]; ok {
			continue
		}
		seen[uid] = struct{}{}
		unique = append(unique, uid)
	}

	byUID := make(map[string]string, len(unique))
	for start := 0; start < len(unique); start += batchGetLimit {
		end := start + batchGetLimit
		if end > len(unique) {
			end = len(unique)
		}
		keys := make([]map[string]types.AttributeValue, 0, end-start)
		for _, uid := range unique[start:end] {
			keys = append(keys, strKey("uid", uid))
		}
		out, err := r.client.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{
			RequestItems: map[string]types.KeysAndAttributes{
				r.tableName: {Keys: keys},
			},
		})
		if err != nil {
			return nil, err
		}
		var users []domain.User
		if err := attributevalue.UnmarshalListOfMaps(out.Responses[r.tableName], &users); err != nil {
			return nil, err
		}
		for _, u := range users {
			if u.PushToken != "" {
				byUID[u.UID] = u.PushToken
			}
		}
	}

	tokens := make([]string, 0, len(uids))
	for _, uid := range uids {
		if tok, ok := byUID[uid]; ok {
			tokens = append(tokens, tok)
		}
	}
	return tokens, nil
}
