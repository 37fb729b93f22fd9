package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Redwolfc4/nusantarago-backend/internal/domain"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// API is the subset of the DynamoDB client the account repo uses.
type API interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// AccountRepo provides typed DynamoDB operations for the accounts table.
// PK: email. GSI username-index: username (not unique; a verified and a
// stale pending record may briefly share a username).
type AccountRepo struct {
	client    API
	tableName string
	now       func() time.Time
}

func NewAccountRepo(client API, tableName string) *AccountRepo {
	return &AccountRepo{client: client, tableName: tableName, now: time.Now}
}

// Insert writes a new account. The conditional put enforces one record per email.
func (r *AccountRepo) Insert(ctx context.Context, a *domain.Account) error {
	item, err := attributevalue.MarshalMap(a)
	if err != nil {
		return fmt.Errorf("marshal account: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(r.tableName),
		Item:                     item,
		ConditionExpression:      aws.String("attribute_not_exists(#pk)"),
		ExpressionAttributeNames: map[string]string{"#pk": attrEmail},
	})
	if isConditionFailed(err) {
		return fmt.Errorf("email %s: %w", a.Email, domain.ErrConflict)
	}
	return err
}

func (r *AccountRepo) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey(attrEmail, email),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("account not found: %w", domain.ErrNotFound)
	}
	var a domain.Account
	if err := attributevalue.UnmarshalMap(out.Item, &a); err != nil {
		return nil, fmt.Errorf("unmarshal account: %w", err)
	}
	return &a, nil
}

// FindByUsername returns the verified owner of username if there is one,
// otherwise any pending record holding it.
func (r *AccountRepo) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(indexUsername),
		KeyConditionExpression:    aws.String("#a = :v"),
		ExpressionAttributeNames:  map[string]string{"#a": attrUsername},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: username}},
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("account not found: %w", domain.ErrNotFound)
	}
	var accounts []domain.Account
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &accounts); err != nil {
		return nil, fmt.Errorf("unmarshal accounts: %w", err)
	}
	for i := range accounts {
		if accounts[i].Verified {
			return &accounts[i], nil
		}
	}
	return &accounts[0], nil
}

func (r *AccountRepo) CountByUsername(ctx context.Context, username string) (int64, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(indexUsername),
		KeyConditionExpression:    aws.String("#a = :v"),
		ExpressionAttributeNames:  map[string]string{"#a": attrUsername},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: username}},
		Select:                    types.SelectCount,
	})
	if err != nil {
		return 0, err
	}
	return int64(out.Count), nil
}

// UpdateFields applies fields to the record selected by match and reports how
// many records were modified (0 or 1). Nil field values remove the attribute.
func (r *AccountRepo) UpdateFields(ctx context.Context, match domain.AccountMatch, fields map[string]interface{}) (int64, error) {
	updates := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		updates[k] = v
	}
	updates[attrUpdatedAt] = r.now().UTC()

	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return 0, err
	}
	ue.Names["#pk"] = attrEmail
	cond := "attribute_exists(#pk)"
	if match.Verified != nil {
		ue.Names["#mv"] = attrVerified
		ue.Values[":mv"] = &types.AttributeValueMemberBOOL{Value: *match.Verified}
		cond += " AND #mv = :mv"
	}

	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(attrEmail, match.Email),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String(cond),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: nonEmpty(ue.Values),
	})
	if isConditionFailed(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return 1, nil
}

func (r *AccountRepo) Delete(ctx context.Context, email string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey(attrEmail, email),
	})
	return err
}

func isConditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

// nonEmpty returns nil for an empty map; DynamoDB rejects empty
// ExpressionAttributeValues.
func nonEmpty(m map[string]types.AttributeValue) map[string]types.AttributeValue {
	if len(m) == 0 {
		return nil
	}
	return m
}
