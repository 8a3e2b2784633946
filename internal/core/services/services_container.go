package services

import (
	portsrepo "github.com/openbooks/ledger-backend/internal/core/ports/repositories"
	portssvc "github.com/openbooks/ledger-backend/internal/core/ports/services"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}
	container.Account = NewAccountService(repos.AccountRepo)
	container.Ledger = NewLedgerService(repos.LedgerRepo, repos.AccountRepo)
	return container
}
