package dynamo

// DynamoDB attribute names used in key, index and condition expressions.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	attrEmail     = "email"
	attrUsername  = "username"
	attrVerified  = "verified"
	attrUpdatedAt = "updated_at"

	indexUsername = "username-index"
)
