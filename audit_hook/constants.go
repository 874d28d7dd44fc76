package audithook

// Action constants for audit events.
const (
	// Tier actions
	ActionTierAdded    = "tier.added"
	ActionTierArchived = "tier.archived"

	// Key actions
	ActionKeyActivated   = "key.activated"
	ActionKeyExtended    = "key.extended"
	ActionKeyReactivated = "key.reactivated"
	ActionKeyDeactivated = "key.deactivated"

	// Revenue actions
	ActionProfitRealized = "profit.realized"
	ActionWithdrawal     = "profit.withdrawn"
)

// Resource constants for audit events.
const (
	ResourceTier    = "tier"
	ResourceKey     = "key"
	ResourceRevenue = "revenue"
)

// Category constants for audit events.
const (
	CategoryPricing    = "pricing"
	CategoryAccess     = "access"
	CategoryAccounting = "accounting"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)
