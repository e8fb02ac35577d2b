package engine

import "errors"

// Error definitions for zero-tolerance error handling. Every validation
// failure aborts the whole operation before any mutation or external call.
var (
	ErrPoolDisabled         = errors.New("pool is disabled")
	ErrInvalidPoolID        = errors.New("pool id is invalid")
	ErrInvalidDepositID     = errors.New("deposit id is invalid")
	ErrInvalidOwner         = errors.New("caller does not own this deposit")
	ErrEndedDeposit         = errors.New("deposit has already ended")
	ErrCantUnstakeNow       = errors.New("deposit has not matured yet")
	ErrCantCompound         = errors.New("compounding is not available")
	ErrCantStakeThatMuch    = errors.New("balance is insufficient for the requested stake")
	ErrTokenTransferFailed  = errors.New("token transfer failed")
	ErrContractPaused       = errors.New("staking engine is paused")
	ErrNativeTransferFailed = errors.New("native currency transfer failed")
	ErrUnauthorized         = errors.New("caller is not the engine owner")
)
