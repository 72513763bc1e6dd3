package dynamodb

import (
	"errors"

	pkgerrors "users-backend/pkg/errors"

	"github.com/aws/smithy-go"
)

// classifyError maps a DynamoDB API failure onto the application error taxonomy
func classifyError(operation string, err error) error {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return pkgerrors.NewDatabaseError(operation, err)
	}

	switch apiErr.ErrorCode() {
	case "ConditionalCheckFailedException":
		// Only conditional writes are updates guarded by attribute_exists.
		return pkgerrors.NewNotFoundError("user").WithCause(err)
	case "ResourceNotFoundException":
		return pkgerrors.NewDatabaseError(operation, err).WithCode(pkgerrors.CodeTableNotFound)
	case "ProvisionedThroughputExceededException", "ThrottlingException", "RequestLimitExceeded":
		return pkgerrors.NewDatabaseError(operation, err).WithCode(pkgerrors.CodeThrottled)
	default:
		return pkgerrors.NewDatabaseError(operation, err).WithCode(apiErr.ErrorCode())
	}
}
