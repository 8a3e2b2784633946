package repositories

// RepositoryProvider groups the repositories the service layer depends on.
type RepositoryProvider struct {
	AccountRepo AccountRepositoryFacade
	LedgerRepo  LedgerRepositoryFacade
}
