// Package dynamodb implements a best-run registry on Amazon DynamoDB.
//
// Submit is a single conditional PutItem, so concurrent writers in different
// processes can never replace a better run with a worse one.
//
// Table schema:
//   - Partition key: run_key (string) - "dataset/algorithm/k"
//
// Create table with:
//
//	aws dynamodb create-table \
//	  --table-name kcluster-runs \
//	  --attribute-definitions AttributeName=run_key,AttributeType=S \
//	  --key-schema AttributeName=run_key,KeyType=HASH \
//	  --billing-mode PAY_PER_REQUEST
package dynamodb
