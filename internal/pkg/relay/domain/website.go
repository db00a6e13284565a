package relay

// Website is the tenant a widget is embedded on. The relay treats it as
// immutable; ownership and AI enablement are managed by the account service.
type Website struct {
	ID        int64 `db:"id"`
	AccountID int64 `db:"account_id"`
	AIEnabled bool  `db:"ai_enabled"`
}
