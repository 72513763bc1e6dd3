package dynamodb

import (
	"context"

	"users-backend/application/ports"
	"users-backend/domain/core/entities"
	pkgerrors "users-backend/pkg/errors"
	"users-backend/pkg/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// Attribute names of a user item
const (
	attrUserID      = "userId"
	attrUserName    = "userName"
	attrUserEmail   = "userEmail"
	attrUserAddress = "userAddress"
	attrUserImage   = "userImage"
	attrUserFile    = "userFile"
)

// DBClient defines the DynamoDB operations the repository needs, making it testable.
type DBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// UserRepository implements ports.UserRepository on a single DynamoDB table
// keyed by userId, with a GSI keyed by userEmail.
type UserRepository struct {
	client     DBClient
	tableName  string
	emailIndex string
	logger     *zap.Logger
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(client DBClient, tableName, emailIndex string, logger *zap.Logger) *UserRepository {
	return &UserRepository{
		client:     client,
		tableName:  tableName,
		emailIndex: emailIndex,
		logger:     logger,
	}
}

var _ ports.UserRepository = (*UserRepository)(nil)

// userItem represents the DynamoDB item structure for a user
type userItem struct {
	UserID           string `dynamodbav:"userId"`
	UserName         string `dynamodbav:"userName"`
	UserEmail        string `dynamodbav:"userEmail"`
	UserAddress      string `dynamodbav:"userAddress"`
	UserPhone        string `dynamodbav:"userPhone"`
	UserPasswordHash string `dynamodbav:"userPasswordHash"`
	UserImage        string `dynamodbav:"userImage,omitempty"`
	UserFile         string `dynamodbav:"userFile,omitempty"`
	CreatedAt        string `dynamodbav:"createdAt,omitempty"`
}

func toItem(u *entities.User) userItem {
	item := userItem{
		UserID:           u.ID,
		UserName:         u.Name,
		UserEmail:        u.Email,
		UserAddress:      u.Address,
		UserPhone:        u.Phone,
		UserPasswordHash: u.PasswordHash,
		UserImage:        u.Image,
		UserFile:         u.File,
	}
	if !u.CreatedAt.IsZero() {
		item.CreatedAt = utils.FormatRFC3339(u.CreatedAt)
	}
	return item
}

func (i userItem) toEntity() *entities.User {
	u := &entities.User{
		ID:           i.UserID,
		Name:         i.UserName,
		Email:        i.UserEmail,
		Address:      i.UserAddress,
		Phone:        i.UserPhone,
		PasswordHash: i.UserPasswordHash,
		Image:        i.UserImage,
		File:         i.UserFile,
	}
	if i.CreatedAt != "" {
		if t, err := utils.ParseRFC3339(i.CreatedAt); err == nil {
			u.CreatedAt = t
		}
	}
	return u
}

func unmarshalUsers(items []map[string]types.AttributeValue) ([]*entities.User, error) {
	var rows []userItem
	if err := attributevalue.UnmarshalListOfMaps(items, &rows); err != nil {
		return nil, err
	}
	users := make([]*entities.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.toEntity())
	}
	return users, nil
}

func (r *UserRepository) key(userID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrUserID: &types.AttributeValueMemberS{Value: userID},
	}
}

// Insert writes a new user item
func (r *UserRepository) Insert(ctx context.Context, user *entities.User) error {
	av, err := attributevalue.MarshalMap(toItem(user))
	if err != nil {
		return pkgerrors.NewInternalError("failed to marshal user").WithCause(err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}

	if _, err := r.client.PutItem(ctx, input); err != nil {
		r.logger.Error("Failed to insert user",
			zap.Error(err),
			zap.String("userID", user.ID),
		)
		return classifyError("PutItem", err)
	}

	r.logger.Debug("Inserted user", zap.String("userID", user.ID))
	return nil
}

// Get retrieves a user by primary key
func (r *UserRepository) Get(ctx context.Context, userID string) (*entities.User, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       r.key(userID),
	}

	result, err := r.client.GetItem(ctx, input)
	if err != nil {
		return nil, classifyError("GetItem", err)
	}
	if len(result.Item) == 0 {
		return nil, pkgerrors.NewNotFoundError("user").
			WithDetails(map[string]interface{}{"userId": userID})
	}

	var item userItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal user %s", userID)
	}
	return item.toEntity(), nil
}

// ScanAll reads every page of the table, in the order the store returns them
func (r *UserRepository) ScanAll(ctx context.Context, filter ports.ScanFilter) ([]*entities.User, error) {
	input := &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
	}

	if !filter.IsEmpty() {
		cond := expression.Name(attrUserEmail).Equal(expression.Value(filter.Email))
		expr, err := expression.NewBuilder().WithFilter(cond).Build()
		if err != nil {
			return nil, pkgerrors.NewInternalError("failed to build scan filter").WithCause(err)
		}
		input.FilterExpression = expr.Filter()
		input.ExpressionAttributeNames = expr.Names()
		input.ExpressionAttributeValues = expr.Values()
	}

	var items []map[string]types.AttributeValue
	paginator := dynamodb.NewScanPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			r.logger.Error("Failed to scan users", zap.Error(err))
			return nil, classifyError("Scan", err)
		}
		items = append(items, page.Items...)
	}

	users, err := unmarshalUsers(items)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to unmarshal users")
	}
	return users, nil
}

// QueryByEmail queries the email index with a single equality key condition
func (r *UserRepository) QueryByEmail(ctx context.Context, email string) ([]*entities.User, error) {
	keyCond := expression.Key(attrUserEmail).Equal(expression.Value(email))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to build key condition").WithCause(err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(r.emailIndex),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}

	var items []map[string]types.AttributeValue
	paginator := dynamodb.NewQueryPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			r.logger.Error("Failed to query users by email",
				zap.Error(err),
				zap.String("index", r.emailIndex),
			)
			return nil, classifyError("Query", err)
		}
		items = append(items, page.Items...)
	}

	users, err := unmarshalUsers(items)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to unmarshal users")
	}
	return users, nil
}

// Update applies a partial update to an existing user. Only the attributes
// named in update appear in the expression.
func (r *UserRepository) Update(ctx context.Context, userID string, update ports.UserUpdate) (*entities.User, error) {
	if update.IsEmpty() {
		return nil, pkgerrors.NewValidationError("update must change at least one attribute")
	}

	var ub expression.UpdateBuilder
	if update.Name != nil {
		ub = ub.Set(expression.Name(attrUserName), expression.Value(*update.Name))
	}
	if update.Address != nil {
		ub = ub.Set(expression.Name(attrUserAddress), expression.Value(*update.Address))
	}
	if update.Image != nil {
		ub = ub.Set(expression.Name(attrUserImage), expression.Value(*update.Image))
	}
	if update.File != nil {
		ub = ub.Set(expression.Name(attrUserFile), expression.Value(*update.File))
	}
	if update.RemoveFile {
		ub = ub.Remove(expression.Name(attrUserFile))
	}

	// Updates never create records.
	cond := expression.AttributeExists(expression.Name(attrUserID))

	expr, err := expression.NewBuilder().WithUpdate(ub).WithCondition(cond).Build()
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to build update expression").WithCause(err)
	}

	input := &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       r.key(userID),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	}

	result, err := r.client.UpdateItem(ctx, input)
	if err != nil {
		r.logger.Error("Failed to update user",
			zap.Error(err),
			zap.String("userID", userID),
		)
		return nil, classifyError("UpdateItem", err)
	}

	var item userItem
	if err := attributevalue.UnmarshalMap(result.Attributes, &item); err != nil {
		return nil, pkgerrors.NewInternalError("failed to unmarshal user").WithCause(err)
	}
	return item.toEntity(), nil
}

// DeleteByKey deletes a user by primary key. The result reports whether an
// item existed.
func (r *UserRepository) DeleteByKey(ctx context.Context, userID string) (ports.DeleteResult, error) {
	input := &dynamodb.DeleteItemInput{
		TableName:    aws.String(r.tableName),
		Key:          r.key(userID),
		ReturnValues: types.ReturnValueAllOld,
	}

	result, err := r.client.DeleteItem(ctx, input)
	if err != nil {
		r.logger.Error("Failed to delete user",
			zap.Error(err),
			zap.String("userID", userID),
		)
		return ports.DeleteResult{}, classifyError("DeleteItem", err)
	}

	deleted := len(result.Attributes) > 0
	r.logger.Debug("Deleted user",
		zap.String("userID", userID),
		zap.Bool("existed", deleted),
	)
	return ports.DeleteResult{UserID: userID, Deleted: deleted}, nil
}
