package domain

// Role names stored on users and carried in JWT claims.
const (
	RoleConsumer = "consumer"
	RoleProducer = "producer"
	RoleAdmin    = "admin"
)
