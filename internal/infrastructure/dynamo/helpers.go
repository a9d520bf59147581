package dynamo

import (
	"errors"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// strKey builds a DynamoDB primary key map with a single string attribute.
func strKey(name, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		name: &types.AttributeValueMemberS{Value: value},
	}
}

// conditionFailed reports whether err is a failed ConditionExpression and,
// if so, whether an item existed at the time of the check.
func conditionFailed(err error) (failed, itemExisted bool) {
	var ccf *types.ConditionalCheckFailedException
	if !errors.As(err, &ccf) {
		return false, false
	}
	return true, len(ccf.Item) > 0
}
