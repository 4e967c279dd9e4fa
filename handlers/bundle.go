package handlers

import (
	userRepo "hive/database/repository/user"
)

// HandlerBundle groups all endpoint handlers into one struct so route
// registration takes a single dependency.
type HandlerBundle struct {
	// UserRepo backs the auth middleware.
	UserRepo userRepo.UserRepository

	Auth         *AuthHandler
	Users        *UserHandler
	Services     *ServiceHandler
	Transactions *TransactionHandler
	JoinRequests *JoinRequestHandler
	TimeBank     *TimeBankHandler
	Admin        *AdminHandler
	WikiData     *WikiDataHandler
}
